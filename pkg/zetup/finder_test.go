// SPDX-License-Identifier: MPL-2.0

package zetup

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/zetup/zetup/pkg/modules"
	"github.com/zetup/zetup/pkg/requires"
)

type distMap map[string]*requires.Distribution

func (m distMap) FindDistribution(name string) (*requires.Distribution, error) {
	if d, ok := m[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", requires.ErrUnknownDistribution, name)
}

func TestDistributionFind(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pkgDir := filepath.Join(root, "demo")
	dist := Distribution{Name: "demo", Package: "demo", Version: "1.0"}

	tests := []struct {
		name     string
		dist     Distribution
		finder   requires.DistributionFinder
		strict   bool
		wantDist bool
		wantErr  error
	}{
		{
			name:     "match",
			dist:     dist,
			finder:   distMap{"demo": {Name: "demo", Version: "1.0.0", Location: root}},
			wantDist: true,
		},
		{
			name:   "not installed",
			dist:   dist,
			finder: distMap{},
		},
		{
			name:   "installed elsewhere",
			dist:   dist,
			finder: distMap{"demo": {Name: "demo", Version: "1.0", Location: t.TempDir()}},
		},
		{
			name:   "no version",
			dist:   Distribution{Name: "demo", Package: "demo"},
			finder: distMap{"demo": {Name: "demo", Version: "1.0", Location: root}},
		},
		{
			name:   "mismatch lenient",
			dist:   dist,
			finder: distMap{"demo": {Name: "demo", Version: "0.9", Location: root}},
		},
		{
			name:    "mismatch strict",
			dist:    dist,
			finder:  distMap{"demo": {Name: "demo", Version: "0.9", Location: root}},
			strict:  true,
			wantErr: requires.ErrVersionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.dist.Find(tt.finder, pkgDir, tt.strict)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Find() error = %v, want %v", err, tt.wantErr)
			}
			if (got != nil) != tt.wantDist {
				t.Errorf("Find() = %+v, want distribution: %v", got, tt.wantDist)
			}
		})
	}
}

func TestFinderLocatesProjectAndInstalledConfigs(t *testing.T) {
	t.Parallel()

	checkout := writeProject(t, demoFiles(demoINI, "zetup.ini"))

	installed := map[string]string{
		"other/__init__.py":            "",
		"other/zetup_config/zetup.ini": "[other]\ndescription = Other\nauthor = A <a@b.c>\nurl = u\nlicense = MIT\npython = 3.12\n",
		"other/zetup_config/VERSION":   "2.0",
		"plain/__init__.py":            "",
	}
	site := writeProject(t, installed)

	f := &Finder{Roots: []string{checkout, site}}

	tests := []struct {
		pkg     string
		want    string
		wantErr error
	}{
		{pkg: "demo", want: "demo"},
		{pkg: "demo.sub", want: "demo"},
		{pkg: "other", want: "other"},
		{pkg: "plain", wantErr: ErrConfigNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			t.Parallel()

			cfg, err := f.FindConfig(tt.pkg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FindConfig(%s) error = %v, want %v", tt.pkg, err, tt.wantErr)
			}
			if err == nil && cfg.Name != tt.want {
				t.Errorf("FindConfig(%s) = %s, want %s", tt.pkg, cfg.Name, tt.want)
			}
		})
	}
}

func TestFinderServesToplevelMetadata(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, demoFiles(demoINI, "zetup.ini"))
	f := &Finder{Roots: []string{dir}}

	var finder modules.MetadataFinder = f
	meta, err := finder.FindMetadata("demo")
	if err != nil {
		t.Fatalf("FindMetadata() error: %v", err)
	}
	if meta.Version != "0.3.1" || meta.Description != "A demo project spanning two lines" {
		t.Errorf("FindMetadata() = %+v", meta)
	}
	if meta.PackageRoot != dir || meta.Requires.Len() != 2 || meta.Extras.Len() != 2 {
		t.Errorf("FindMetadata() root/requires/extras = %s/%d/%d", meta.PackageRoot, meta.Requires.Len(), meta.Extras.Len())
	}
	if meta.Distribution != nil {
		t.Errorf("Distribution = %+v, want nil without a distribution finder", meta.Distribution)
	}

	reg := modules.NewRegistry()
	reg.SetWarningHandler(nil)
	reg.Define("demo", func(r *modules.Registry, _ *modules.Object) error {
		_, err := modules.NewToplevel(r, "demo", nil,
			modules.WithMetadataFinder(f), modules.WithCheckRequirements(false))
		return err
	})
	ns, err := reg.Import("demo")
	if err != nil {
		t.Fatalf("Import(demo) error: %v", err)
	}
	if v, ok := ns.Version(); !ok || v != "0.3.1" {
		t.Errorf("toplevel Version() = %q, %v", v, ok)
	}
}
