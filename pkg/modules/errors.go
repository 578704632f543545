// SPDX-License-Identifier: MPL-2.0

package modules

import (
	"errors"
	"fmt"
)

var (
	// ErrAttributeNotFound is the sentinel error wrapped by AttributeError.
	ErrAttributeNotFound = errors.New("attribute not found")
	// ErrImportFailure is the sentinel error wrapped by ImportError.
	ErrImportFailure = errors.New("import failed")
	// ErrModuleNotFound is returned when no module code is defined for a name.
	ErrModuleNotFound = errors.New("no module named")
	// ErrAlreadyRegistered is returned when a facade would replace another facade.
	ErrAlreadyRegistered = errors.New("facade already registered")
	// ErrModuleNotLoaded is returned when wrapping a module that was never imported.
	ErrModuleNotLoaded = errors.New("module not loaded")
	// ErrPackageMissing is returned by the package check of Annotate.
	ErrPackageMissing = errors.New("package missing")
)

type (
	// AttributeError is returned when a name cannot be resolved on a namespace.
	// Listed is set when the name is part of the declared API but nothing
	// defines it.
	AttributeError struct {
		Module string
		Name   string
		Listed bool
		Cause  error
	}

	// ImportError is returned when a module cannot be imported, or a member
	// module of a class package lacks its member.
	ImportError struct {
		Name  string
		Cause error
	}
)

// Error implements the error interface.
func (e *AttributeError) Error() string {
	if e.Listed {
		return fmt.Sprintf("module %q has no attribute %q although it is listed in its API", e.Module, e.Name)
	}
	return fmt.Sprintf("module %q has no attribute %q", e.Module, e.Name)
}

// Unwrap returns ErrAttributeNotFound and the underlying cause, if any.
func (e *AttributeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrAttributeNotFound}
	}
	return []error{ErrAttributeNotFound, e.Cause}
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("cannot import %s", e.Name)
	}
	return fmt.Sprintf("cannot import %s: %v", e.Name, e.Cause)
}

// Unwrap returns ErrImportFailure and the underlying cause, if any.
func (e *ImportError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrImportFailure}
	}
	return []error{ErrImportFailure, e.Cause}
}
