// SPDX-License-Identifier: MPL-2.0

package sitepkgs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zetup/zetup/pkg/requires"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newEnv(t *testing.T, paths ...string) *Environment {
	t.Helper()

	env, err := New(paths)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return env
}

func TestFindModule(t *testing.T) {
	t.Parallel()

	site := writeTree(t, map[string]string{
		"six.py":                   "\"\"\"Py2/3 compat.\"\"\"\n__version__ = \"1.16.0\"\n",
		"yaml/__init__.py":         "from .error import *\n__version__ = '6.0.1'\n",
		"nover/__init__.py":        "x = 1\n",
		"nulled.py":                "__version__ = None\n",
		"typed.py":                 "__version__: str = \"2.0\"\n",
		"indented.py":              "if True:\n    __version__ = '9.9'\n",
		"pkg/__init__.py":          "",
		"pkg/sub.py":               "__version__ = '0.1'\n",
		"_speedups.cpython-312.so": "",
		"native.pyd":               "",
		"nativex.so":               "",
	})
	env := newEnv(t, site)

	tests := []struct {
		name       string
		kind       ModuleKind
		version    string
		hasVersion bool
	}{
		{name: "six", kind: KindSource, version: "1.16.0", hasVersion: true},
		{name: "yaml", kind: KindPackage, version: "6.0.1", hasVersion: true},
		{name: "nover", kind: KindPackage},
		{name: "nulled", kind: KindSource},
		{name: "typed", kind: KindSource, version: "2.0", hasVersion: true},
		{name: "indented", kind: KindSource},
		{name: "pkg.sub", kind: KindSource, version: "0.1", hasVersion: true},
		{name: "_speedups", kind: KindExtension},
		{name: "native", kind: KindExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mod, err := env.FindModule(tt.name)
			if err != nil {
				t.Fatalf("FindModule(%s) error: %v", tt.name, err)
			}
			if mod.Name != tt.name || mod.Kind != tt.kind {
				t.Errorf("FindModule(%s) = %s %s, want %s", tt.name, mod.Name, mod.Kind, tt.kind)
			}
			v, ok := mod.Version()
			if v != tt.version || ok != tt.hasVersion {
				t.Errorf("Version() = %q, %v; want %q, %v", v, ok, tt.version, tt.hasVersion)
			}
		})
	}
}

func TestFindModuleMissing(t *testing.T) {
	t.Parallel()

	site := writeTree(t, map[string]string{"nativex.so": "", "pkg/__init__.py": ""})
	env := newEnv(t, site, filepath.Join(site, "does-not-exist"))

	for _, name := range []string{"native", "absent", "pkg.absent", "bad..name"} {
		if _, err := env.Import(name); !errors.Is(err, ErrModuleNotFound) {
			t.Errorf("Import(%q) error = %v, want ErrModuleNotFound", name, err)
		}
	}
}

func TestSearchPathOrder(t *testing.T) {
	t.Parallel()

	first := writeTree(t, map[string]string{"mod.py": "__version__ = '1.0'\n"})
	second := writeTree(t, map[string]string{"mod.py": "__version__ = '2.0'\n"})

	mod, err := newEnv(t, "", first, second).FindModule("mod")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := mod.Version(); v != "1.0" {
		t.Errorf("Version() = %q, want first path to win", v)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"PyYAML":            "pyyaml",
		"zope.interface":    "zope-interface",
		"typing_extensions": "typing-extensions",
		"a-_.b":             "a-b",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

const metadata = "Metadata-Version: 2.1\nName: PyYAML\nVersion: 6.0.1\nSummary: YAML parser\n" +
	"Description-Content-Type: text/markdown\n\nLong description: with colon\n"

func TestFindDistribution(t *testing.T) {
	t.Parallel()

	site := writeTree(t, map[string]string{
		"PyYAML-6.0.1.dist-info/METADATA":              metadata,
		"zope.interface-5.4.0-py3.9.egg-info/PKG-INFO": "Metadata-Version: 1.1\nName: zope.interface\nVersion: 5.4.0\n",
		"legacy-0.2-py2.7.egg-info":                    "Metadata-Version: 1.0\nName: legacy\n",
		"broken-1.0.dist-info/RECORD":                  "",
		"typing_extensions-4.9.0.dist-info/METADATA":   "Name: typing_extensions\nVersion: 4.9.0\n",
	})
	env := newEnv(t, site)

	tests := []struct {
		query string
		want  *requires.Distribution
	}{
		{query: "pyyaml", want: &requires.Distribution{Name: "PyYAML", Version: "6.0.1", Location: site}},
		{query: "PyYAML", want: &requires.Distribution{Name: "PyYAML", Version: "6.0.1", Location: site}},
		{query: "zope-interface", want: &requires.Distribution{Name: "zope.interface", Version: "5.4.0", Location: site}},
		{query: "legacy", want: &requires.Distribution{Name: "legacy", Version: "0.2", Location: site}},
		{query: "typing-extensions", want: &requires.Distribution{Name: "typing_extensions", Version: "4.9.0", Location: site}},
	}
	for _, tt := range tests {
		got, err := env.FindDistribution(tt.query)
		if err != nil {
			t.Errorf("FindDistribution(%s) error: %v", tt.query, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("FindDistribution(%s) mismatch (-want +got):\n%s", tt.query, diff)
		}
	}

	for _, name := range []string{"broken", "absent"} {
		if _, err := env.FindDistribution(name); !errors.Is(err, requires.ErrUnknownDistribution) {
			t.Errorf("FindDistribution(%s) error = %v, want ErrUnknownDistribution", name, err)
		}
	}
}

func TestFindDistributionCache(t *testing.T) {
	t.Parallel()

	site := writeTree(t, nil)
	env := newEnv(t, site)

	if _, err := env.FindDistribution("late"); !errors.Is(err, requires.ErrUnknownDistribution) {
		t.Fatalf("FindDistribution(late) error = %v", err)
	}
	dir := filepath.Join(site, "late-1.0.dist-info")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "METADATA"), []byte("Name: late\nVersion: 1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := env.FindDistribution("late"); err == nil {
		t.Error("cached miss not honoured")
	}
	env.Invalidate()
	if dist, err := env.FindDistribution("late"); err != nil || dist.Version != "1.0" {
		t.Errorf("after Invalidate() FindDistribution(late) = %v, %v", dist, err)
	}
}

func TestDistributions(t *testing.T) {
	t.Parallel()

	first := writeTree(t, map[string]string{"six-1.16.0.dist-info/METADATA": "Name: six\nVersion: 1.16.0\n"})
	second := writeTree(t, map[string]string{
		"six-1.15.0.dist-info/METADATA":   "Name: six\nVersion: 1.15.0\n",
		"attrs-23.1.0.dist-info/METADATA": "Name: attrs\nVersion: 23.1.0\n",
	})

	dists, err := newEnv(t, first, second).Distributions()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, d := range dists {
		got = append(got, d.Name+"=="+d.Version)
	}
	if diff := cmp.Diff([]string{"six==1.16.0", "attrs==23.1.0"}, got); diff != "" {
		t.Errorf("Distributions() mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckAgainstEnvironment(t *testing.T) {
	t.Parallel()

	site := writeTree(t, map[string]string{
		"six.py":                          "__version__ = '1.16.0'\n",
		"yaml/__init__.py":                "",
		"PyYAML-6.0.1.dist-info/METADATA": metadata,
	})
	env := newEnv(t, site)
	check := requires.Environment{Importer: env, Distributions: env}

	tests := []struct {
		text string
		want error
	}{
		{text: "six>=1.10\npyyaml>=6 #import yaml"},
		{text: "pyyaml>=7 #import yaml", want: requires.ErrVersionConflict},
		{text: "numpy", want: requires.ErrDistributionNotFound},
	}
	for _, tt := range tests {
		_, err := requires.Parse(tt.text).Check(check, true)
		if !errors.Is(err, tt.want) {
			t.Errorf("Check(%q) error = %v, want %v", tt.text, err, tt.want)
		}
	}
}
