// SPDX-License-Identifier: MPL-2.0

package zetup

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zetup/zetup/pkg/modules"
	"github.com/zetup/zetup/pkg/requires"
)

// installedConfigDirs are the package data directories a config is installed
// into, relative to the root package.
var installedConfigDirs = []string{"zetup_config", "zetup"}

// Finder locates the config of an importable package. Each root is searched
// as a project checkout first and as a directory of installed packages second.
type Finder struct {
	Roots         []string
	Distributions requires.DistributionFinder
	Options       []LoadOption
}

// FindConfig returns the config of the project providing pkgname. A
// ErrConfigNotFound error means no root has one; other errors come from
// configs that exist but fail to load.
func (f *Finder) FindConfig(pkgname string) (*Config, error) {
	top, _, _ := strings.Cut(pkgname, ".")
	for _, root := range f.Roots {
		cfg, err := Load(root, f.Options...)
		switch {
		case err == nil && cfg.owns(top):
			return cfg, nil
		case err != nil && !errors.Is(err, ErrConfigNotFound):
			return nil, err
		}

		for _, sub := range installedConfigDirs {
			cfg, err := Load(filepath.Join(root, top, sub), f.Options...)
			if err == nil {
				return cfg, nil
			}
			if !errors.Is(err, ErrConfigNotFound) {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%w for package %s", ErrConfigNotFound, pkgname)
}

// FindMetadata implements modules.MetadataFinder.
func (f *Finder) FindMetadata(pkgname string) (*modules.Metadata, error) {
	cfg, err := f.FindConfig(pkgname)
	if err != nil {
		return nil, err
	}
	return cfg.Metadata(f.Distributions)
}

// Metadata returns what a top-level package facade is annotated with. The
// distribution is looked up in dists when given.
func (c *Config) Metadata(dists requires.DistributionFinder) (*modules.Metadata, error) {
	meta := &modules.Metadata{
		Version:     c.Version.String(),
		Description: c.Description,
		Requires:    c.Requires,
		Extras:      c.Extras,
		Packages:    c.Packages,
		PackageRoot: c.Dir,
	}
	if root := c.RootPackage(); root != "" {
		dist, err := c.Distribution.Find(dists, filepath.Join(c.Dir, root), true)
		if err != nil {
			return nil, err
		}
		meta.Distribution = dist
	}
	return meta, nil
}
