// SPDX-License-Identifier: MPL-2.0

package requires

import (
	"errors"
	"fmt"
)

var (
	// ErrDistributionNotFound is the sentinel error wrapped by DistributionNotFoundError.
	ErrDistributionNotFound = errors.New("distribution not found")
	// ErrVersionConflict is the sentinel error wrapped by VersionConflictError.
	ErrVersionConflict = errors.New("version conflict")
	// ErrUnknownDistribution is returned by a DistributionFinder that has no
	// metadata for the requested name.
	ErrUnknownDistribution = errors.New("unknown distribution")
	// ErrMissingVersion is the cause recorded when an imported module does not
	// report a version of its own.
	ErrMissingVersion = errors.New("module has no version attribute")
	// ErrRequirementNotFound is returned by Requirements.Get for unknown names.
	ErrRequirementNotFound = errors.New("requirement not found")
	// ErrReservedExtra is returned when trying to store the synthesized "all" extra.
	ErrReservedExtra = errors.New("reserved extra name")
	// ErrExtraNotFound is returned by Extras.Get for unknown extras.
	ErrExtraNotFound = errors.New("extra not found")
)

type (
	// Requirer identifies the project that declared a set of requirements.
	// It only feeds error messages.
	Requirer struct {
		Name    string `json:"name"`
		Version string `json:"version,omitempty"`
	}

	// DistributionNotFoundError is returned by a strict check when the import
	// name of a requirement cannot be imported at all.
	DistributionNotFoundError struct {
		Requirement *Requirement
		Requirer    *Requirer
		Cause       error
	}

	// VersionConflictError is returned by a strict check when the installed
	// version does not satisfy the requirement, or cannot be determined.
	// Found is empty in the latter case.
	VersionConflictError struct {
		Requirement *Requirement
		Found       string
		Requirer    *Requirer
		Cause       error
	}
)

// String renders the requirer as "name version".
func (r *Requirer) String() string {
	if r == nil {
		return ""
	}
	if r.Version == "" {
		return r.Name
	}
	return r.Name + " " + r.Version
}

// Error implements the error interface.
func (e *DistributionNotFoundError) Error() string {
	msg := fmt.Sprintf("distribution %q not found", e.Requirement.String())
	if e.Requirer != nil {
		msg += fmt.Sprintf(", required by %s", e.Requirer)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrDistributionNotFound and the import failure.
func (e *DistributionNotFoundError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDistributionNotFound}
	}
	return []error{ErrDistributionNotFound, e.Cause}
}

// Error implements the error interface.
func (e *VersionConflictError) Error() string {
	found := e.Found
	if found == "" {
		found = "unknown version"
	}
	msg := fmt.Sprintf("version conflict: %s installed, %q required", found, e.Requirement.String())
	if e.Requirer != nil {
		msg += fmt.Sprintf(" by %s", e.Requirer)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrVersionConflict and the lookup failure chain.
func (e *VersionConflictError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrVersionConflict}
	}
	return []error{ErrVersionConflict, e.Cause}
}
