// SPDX-License-Identifier: MPL-2.0

package zetup

import (
	"errors"
	"fmt"

	"github.com/zetup/zetup/pkg/requires"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid project version")

type (
	// Version is a project version as written in the VERSION file.
	// The zero value means the version is unknown.
	Version string

	// InvalidVersionError is returned when a Version cannot be parsed.
	InvalidVersionError struct {
		Value Version
		Err   error
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid project version %q: %v", string(e.Value), e.Err)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is for programmatic detection.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// String returns the version text.
func (v Version) String() string { return string(v) }

// IsZero reports whether the version is unknown.
func (v Version) IsZero() bool { return v == "" }

// IsValid returns whether the version parses, and the validation errors if not.
// The zero value is valid.
func (v Version) IsValid() (bool, []error) {
	if v.IsZero() {
		return true, nil
	}
	if _, err := requires.ParseVersion(string(v)); err != nil {
		return false, []error{&InvalidVersionError{Value: v, Err: err}}
	}
	return true, nil
}

// Parsed returns the comparable form of the version.
func (v Version) Parsed() (*requires.Version, error) {
	parsed, err := requires.ParseVersion(string(v))
	if err != nil {
		return nil, &InvalidVersionError{Value: v, Err: err}
	}
	return parsed, nil
}

// Equal compares two versions semantically, so "1.0" equals "1.0.0".
// Unparseable versions are compared as text.
func (v Version) Equal(other string) bool {
	a, errA := requires.ParseVersion(string(v))
	b, errB := requires.ParseVersion(other)
	if errA != nil || errB != nil {
		return string(v) == other
	}
	return a.Equal(b)
}
