// SPDX-License-Identifier: MPL-2.0

package zetup

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zetup/zetup/pkg/requires"
)

// Distribution names the installable distribution of a project together with
// its root package and the version the config declares.
type Distribution struct {
	Name    string  `json:"name"`
	Package string  `json:"package"`
	Version Version `json:"version"`
}

// Find looks up the installed distribution that provides the package at
// pkgDir. It returns nil without error when the config declares no version,
// nothing is installed under the name, or the installed distribution lives
// somewhere else than pkgDir's parent. An installed distribution at that
// location with a different version is a *requires.VersionConflictError in
// strict mode and nil otherwise.
func (d Distribution) Find(finder requires.DistributionFinder, pkgDir string, strict bool) (*requires.Distribution, error) {
	if d.Version.IsZero() || finder == nil {
		return nil, nil
	}
	dist, err := finder.FindDistribution(d.Name)
	if errors.Is(err, requires.ErrUnknownDistribution) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !samePath(dist.Location, filepath.Dir(pkgDir)) {
		return nil, nil
	}
	if !d.Version.Equal(dist.Version) {
		if !strict {
			return nil, nil
		}
		req, _ := requires.ParseSpecifier(d.Name + "==" + d.Version.String())
		return nil, &requires.VersionConflictError{
			Requirement: req,
			Found:       dist.Version,
			Cause:       fmt.Errorf("version of distribution %s does not match %s.__version__ %s", d.Name, d.Package, d.Version),
		}
	}
	return dist, nil
}

// String returns the distribution name.
func (d Distribution) String() string { return d.Name }

func samePath(a, b string) bool {
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		ra = a
	}
	rb, err := filepath.EvalSymlinks(b)
	if err != nil {
		rb = b
	}
	ra, rb = filepath.Clean(ra), filepath.Clean(rb)
	if filepath.Separator == '\\' {
		return strings.EqualFold(ra, rb)
	}
	return ra == rb
}
