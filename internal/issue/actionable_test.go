// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load project config"},
			expected: "failed to load project config",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load project config", Resource: "./zetup.cue"},
			expected: "failed to load project config: ./zetup.cue",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load project config",
				Resource:  "./zetup.cue",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to load project config: ./zetup.cue: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying error")
	wrapped := fmt.Errorf("outer: %w", &ActionableError{Operation: "check requirements", Cause: cause})
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var ae *ActionableError
	if !errors.As(wrapped, &ae) || ae.Operation != "check requirements" {
		t.Errorf("errors.As() = %v", ae)
	}
	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil without a cause")
	}
}

func TestActionableErrorFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions",
			err: &ActionableError{
				Operation:   "load project config",
				Resource:    "./zetup.cue",
				Suggestions: []string{"Run 'zetup config init'", "Check file permissions"},
			},
			contains: []string{"failed to load project config", "• Run 'zetup config init'", "• Check file permissions"},
		},
		{
			name: "chain in verbose mode",
			err: &ActionableError{
				Operation: "check requirements",
				Cause:     fmt.Errorf("version conflict: %w", errors.New("six 1.9 installed")),
			},
			verbose:  true,
			contains: []string{"Error chain:", "1. version conflict: six 1.9 installed", "2. six 1.9 installed"},
		},
		{
			name: "no chain in quiet mode",
			err: &ActionableError{
				Operation: "check requirements",
				Cause:     errors.New("version conflict"),
			},
			excludes: []string{"Error chain:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.err.Format(tt.verbose)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Format() = %q, missing %q", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("Format() = %q, must not contain %q", got, unwanted)
				}
			}
		})
	}
}

func TestErrorContextBuilder(t *testing.T) {
	t.Parallel()

	cause := errors.New("no zetup config found")
	err := NewErrorContext().
		WithOperation("load project config").
		WithResource("/src/demo").
		WithSuggestion("Pass --project").
		WithSuggestions("Create zetup.cue", "Create zetup.ini").
		WithIssue(ConfigNotFoundId).
		Wrap(cause).
		Build()

	if err.Operation != "load project config" || err.Resource != "/src/demo" {
		t.Errorf("Build() = %+v", err)
	}
	if len(err.Suggestions) != 3 || !err.HasSuggestions() {
		t.Errorf("Suggestions = %v", err.Suggestions)
	}
	if err.CatalogIssue() != Get(ConfigNotFoundId) {
		t.Errorf("CatalogIssue() = %v", err.CatalogIssue())
	}
	if !errors.Is(err, cause) {
		t.Error("built error does not wrap its cause")
	}

	if NewErrorContext().Wrap(cause).Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return an untyped nil")
	}
	if (&ActionableError{Operation: "x"}).CatalogIssue() != nil {
		t.Error("CatalogIssue() without issue should be nil")
	}
}

func TestWrapHelpers(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "x") != nil || WrapWithContext(nil, "x", "y") != nil {
		t.Error("wrapping nil should return nil")
	}
	cause := errors.New("boom")
	if got := WrapWithContext(cause, "write tox.ini", "./tox.ini").Error(); got != "failed to write tox.ini: ./tox.ini: boom" {
		t.Errorf("WrapWithContext() = %q", got)
	}
	if got := NewActionableError("probe interpreter").Error(); got != "failed to probe interpreter" {
		t.Errorf("NewActionableError() = %q", got)
	}
	if got := WrapWithOperation(cause, "probe interpreter").Error(); got != "failed to probe interpreter: boom" {
		t.Errorf("WrapWithOperation() = %q", got)
	}
}
