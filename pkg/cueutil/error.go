// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

var (
	// ErrFileTooLarge is returned when a document exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidDocument is wrapped by every ValidationError.
	ErrInvalidDocument = errors.New("invalid document")
)

// ValidationError is one problem found while compiling, validating or
// decoding a document.
type ValidationError struct {
	FilePath string
	CUEPath  CUEPath
	Message  string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.CUEPath != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns ErrInvalidDocument.
func (e *ValidationError) Unwrap() error { return ErrInvalidDocument }

// FormatError converts a CUE error into ValidationErrors, one per reported
// problem, joined into a single error. Errors that do not come from CUE are
// prefixed with filePath.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	errs := make([]error, 0, len(list))
	for _, e := range list {
		path := pathOf(cueerrors.Path(e))
		msg := e.Error()
		if path != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path.String()), ":"))
		}
		errs = append(errs, &ValidationError{FilePath: filePath, CUEPath: path, Message: msg})
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// CheckFileSize fails with ErrFileTooLarge when data is larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d bytes", ErrFileTooLarge, filename, len(data), maxSize)
	}
	return nil
}
