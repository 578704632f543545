// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zetup/zetup/internal/config"
	"github.com/zetup/zetup/internal/issue"
	"github.com/zetup/zetup/internal/pyenv"
	"github.com/zetup/zetup/pkg/modules"
	"github.com/zetup/zetup/pkg/requires"
	"github.com/zetup/zetup/pkg/zetup"
)

// classifyError maps a command failure to an issue catalog entry. Errors
// that already name one keep it.
func classifyError(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}
	switch {
	case errors.Is(err, requires.ErrVersionConflict):
		return issue.VersionConflictId
	case errors.Is(err, requires.ErrDistributionNotFound):
		return issue.DependencyMissingId
	case errors.Is(err, modules.ErrPackageMissing):
		return issue.PackageMissingId
	case errors.Is(err, zetup.ErrConfigNotFound):
		return issue.ConfigNotFoundId
	case errors.Is(err, zetup.ErrInvalidConfig):
		return issue.ConfigParseErrorId
	case errors.Is(err, pyenv.ErrInterpreterNotFound), errors.Is(err, pyenv.ErrProbeFailed):
		return issue.InterpreterNotFoundId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.AppConfigLoadFailedId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	default:
		return 0
	}
}

// displayError carries the user-facing rendition of a command failure up
// to fang, which prints it.
type displayError struct {
	err     error
	verbose bool
}

func (e *displayError) Error() string { return formatErrorForDisplay(e.err, e.verbose) }

func (e *displayError) Unwrap() error { return e.err }

// renderIssue prints the catalog entry of err, if it has one.
func (a *App) renderIssue(w io.Writer, err error, style config.ColorScheme) {
	id := classifyError(err)
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(style.String())
	if renderErr != nil {
		a.logger.Warn("failed to render issue catalog entry", "issueID", id, "err", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their own format, which includes the cause chain in verbose mode.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
