// SPDX-License-Identifier: MPL-2.0

package requires

import (
	"errors"
	"fmt"
)

type (
	// Module is an imported module as seen by the checker.
	Module interface {
		// Version returns the module's own version attribute. The second result
		// is false when the attribute is absent or explicitly null.
		Version() (string, bool)
	}

	// Importer imports modules by their dotted import name.
	Importer interface {
		Import(name string) (Module, error)
	}

	// Distribution is installed distribution metadata.
	Distribution struct {
		Name     string `json:"name"`
		Version  string `json:"version"`
		Location string `json:"location,omitempty"`
	}

	// DistributionFinder looks up installed distribution metadata by project
	// name. Lookups that find nothing return an error wrapping ErrUnknownDistribution.
	DistributionFinder interface {
		FindDistribution(name string) (*Distribution, error)
	}

	// Environment is what a check runs against.
	Environment struct {
		Importer      Importer
		Distributions DistributionFinder
	}
)

// Check verifies every record in declaration order and stops at the first
// failure. In non-strict mode a failure is reported as false with a nil error;
// in strict mode it is a *DistributionNotFoundError or *VersionConflictError.
func (r *Requirements) Check(env Environment, strict bool) (bool, error) {
	if env.Importer == nil {
		return false, errors.New("requires: environment has no importer")
	}
	for _, req := range r.records {
		if err := r.checkOne(env, req); err != nil {
			if strict {
				return false, err
			}
			return false, nil
		}
	}
	return true, nil
}

// Checked runs a strict check and returns the receiver when it passes.
func (r *Requirements) Checked(env Environment) (*Requirements, error) {
	if _, err := r.Check(env, true); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Requirements) checkOne(env Environment, req *Requirement) error {
	mod, err := env.Importer.Import(req.ImportName)
	if err != nil {
		return &DistributionNotFoundError{Requirement: req, Requirer: r.opts.requirer, Cause: err}
	}
	if len(req.Specs) == 0 {
		return nil
	}

	found, err := installedVersion(env, req, mod)
	if err != nil {
		return &VersionConflictError{Requirement: req, Requirer: r.opts.requirer, Cause: err}
	}

	ok, err := req.Contains(found)
	if err != nil || !ok {
		return &VersionConflictError{Requirement: req, Found: found, Requirer: r.opts.requirer, Cause: err}
	}
	return nil
}

// installedVersion prefers the module's own version and falls back to the
// distribution metadata of the requirement's project name.
func installedVersion(env Environment, req *Requirement, mod Module) (string, error) {
	if mod != nil {
		if v, ok := mod.Version(); ok {
			return v, nil
		}
	}
	missing := fmt.Errorf("%w: %s", ErrMissingVersion, req.ImportName)
	if env.Distributions == nil {
		return "", errors.Join(missing, ErrUnknownDistribution)
	}
	dist, err := env.Distributions.FindDistribution(req.Name)
	if err != nil {
		return "", errors.Join(missing, err)
	}
	if dist == nil || dist.Version == "" {
		return "", errors.Join(missing, fmt.Errorf("%w: %s has no version", ErrUnknownDistribution, req.Name))
	}
	return dist.Version, nil
}
