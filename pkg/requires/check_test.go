// SPDX-License-Identifier: MPL-2.0

package requires

import (
	"errors"
	"fmt"
	"testing"
)

var errNoModule = errors.New("no module named")

type (
	stubModule struct {
		version string
		hasVer  bool
	}

	stubImporter struct {
		modules map[string]stubModule
		calls   map[string]int
	}

	stubFinder struct {
		dists map[string]string
		calls map[string]int
	}
)

func (m stubModule) Version() (string, bool) { return m.version, m.hasVer }

func (i *stubImporter) Import(name string) (Module, error) {
	i.calls[name]++
	mod, ok := i.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", errNoModule, name)
	}
	return mod, nil
}

func (f *stubFinder) FindDistribution(name string) (*Distribution, error) {
	f.calls[name]++
	v, ok := f.dists[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDistribution, name)
	}
	return &Distribution{Name: name, Version: v}, nil
}

func newEnv(modules map[string]stubModule, dists map[string]string) (Environment, *stubImporter, *stubFinder) {
	imp := &stubImporter{modules: modules, calls: map[string]int{}}
	fin := &stubFinder{dists: dists, calls: map[string]int{}}
	return Environment{Importer: imp, Distributions: fin}, imp, fin
}

func TestCheckPasses(t *testing.T) {
	t.Parallel()

	env, _, fin := newEnv(map[string]stubModule{
		"six":  {version: "1.16.0", hasVer: true},
		"yaml": {},
		"any":  {},
	}, map[string]string{"PyYAML": "6.0.1"})

	reqs := Parse("six>=1.10\nPyYAML>=5.1 #import yaml\nany")
	ok, err := reqs.Check(env, true)
	if err != nil || !ok {
		t.Fatalf("Check() = %v, %v; want true, nil", ok, err)
	}
	if fin.calls["PyYAML"] != 1 {
		t.Errorf("distribution lookups for PyYAML = %d, want 1", fin.calls["PyYAML"])
	}
	if fin.calls["six"] != 0 {
		t.Errorf("module version should be preferred, got %d lookups for six", fin.calls["six"])
	}
}

func TestCheckShortCircuits(t *testing.T) {
	t.Parallel()

	env, imp, fin := newEnv(map[string]stubModule{
		"b": {},
	}, map[string]string{"b": "1.5"})

	reqs := Parse("missingpkg\nb>=1.0")

	ok, err := reqs.Check(env, false)
	if ok || err != nil {
		t.Fatalf("Check(strict=false) = %v, %v; want false, nil", ok, err)
	}
	if imp.calls["b"] != 0 {
		t.Errorf("b was imported %d times after an earlier failure", imp.calls["b"])
	}
	if fin.calls["b"] != 0 {
		t.Errorf("b's version was looked up %d times after an earlier failure", fin.calls["b"])
	}
}

func TestCheckStrictDistributionNotFound(t *testing.T) {
	t.Parallel()

	env, _, _ := newEnv(nil, nil)
	reqs := Parse("missingpkg>=1.0", WithRequirer("demo", "0.3"))

	ok, err := reqs.Check(env, true)
	if ok {
		t.Fatal("Check() = true for a missing module")
	}

	var notFound *DistributionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Check() error = %T %v, want *DistributionNotFoundError", err, err)
	}
	if !errors.Is(err, ErrDistributionNotFound) || !errors.Is(err, errNoModule) {
		t.Errorf("error chain %v does not carry sentinel and cause", err)
	}
	if notFound.Requirer == nil || notFound.Requirer.String() != "demo 0.3" {
		t.Errorf("Requirer = %v, want demo 0.3", notFound.Requirer)
	}
	if notFound.Requirement.Key != "missingpkg" {
		t.Errorf("Requirement = %v, want missingpkg", notFound.Requirement)
	}
}

func TestCheckVersionConflict(t *testing.T) {
	t.Parallel()

	env, _, _ := newEnv(map[string]stubModule{
		"a": {version: "0.9", hasVer: true},
	}, nil)

	_, err := Parse("a>=1.0").Check(env, true)

	var conflict *VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Check() error = %T %v, want *VersionConflictError", err, err)
	}
	if conflict.Found != "0.9" {
		t.Errorf("Found = %q, want 0.9", conflict.Found)
	}
	if errors.Is(err, ErrDistributionNotFound) {
		t.Error("version conflict must not match ErrDistributionNotFound")
	}
}

func TestCheckVersionFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		module    stubModule
		dists     map[string]string
		wantOK    bool
		wantFound string
	}{
		{name: "no attribute, registry hit", module: stubModule{}, dists: map[string]string{"a": "1.2"}, wantOK: true},
		{name: "null attribute, registry hit", module: stubModule{version: "", hasVer: false}, dists: map[string]string{"a": "1.2"}, wantOK: true},
		{name: "no attribute, registry conflict", module: stubModule{}, dists: map[string]string{"a": "0.5"}, wantFound: "0.5"},
		{name: "no attribute, registry miss", module: stubModule{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, fin := newEnv(map[string]stubModule{"a": tt.module}, tt.dists)
			ok, err := Parse("a>=1.0").Check(env, true)
			if fin.calls["a"] != 1 {
				t.Errorf("registry lookups = %d, want 1", fin.calls["a"])
			}
			if tt.wantOK {
				if !ok || err != nil {
					t.Fatalf("Check() = %v, %v; want true, nil", ok, err)
				}
				return
			}

			var conflict *VersionConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("Check() error = %T %v, want *VersionConflictError", err, err)
			}
			if conflict.Found != tt.wantFound {
				t.Errorf("Found = %q, want %q", conflict.Found, tt.wantFound)
			}
			if errors.Is(err, ErrDistributionNotFound) {
				t.Error("importable module reported as missing distribution")
			}
			if tt.wantFound == "" {
				if !errors.Is(err, ErrMissingVersion) || !errors.Is(err, ErrUnknownDistribution) {
					t.Errorf("cause chain %v lacks missing attribute or registry failure", err)
				}
			}
		})
	}
}

func TestCheckedReturnsReceiver(t *testing.T) {
	t.Parallel()

	env, _, _ := newEnv(map[string]stubModule{"a": {version: "2.0", hasVer: true}}, nil)
	reqs := Parse("a>=1.0")

	got, err := reqs.Checked(env)
	if err != nil {
		t.Fatalf("Checked() error: %v", err)
	}
	if got != reqs {
		t.Error("Checked() did not return the receiver")
	}
}

func TestCheckWithoutImporter(t *testing.T) {
	t.Parallel()

	if _, err := Parse("a").Check(Environment{}, false); err == nil {
		t.Error("Check() without importer should fail")
	}
}
