// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/zetup/zetup/internal/issue"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Python.Interpreter != DefaultInterpreter || cfg.Python.Version != "" {
		t.Errorf("Python = %+v", cfg.Python)
	}
	if !cfg.Check.Strict {
		t.Error("expected strict checks by default")
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if !cfg.Python.NeedsProbe() {
		t.Error("defaults should need an interpreter probe")
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("DefaultConfig() invalid: %v", errs)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if path != "" {
		t.Errorf("source = %q, want none", path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCUEFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.cue"), `
python: {
	interpreter: "/opt/py/bin/python3.11"
	version:     "3.11"
	site_paths: ["/opt/py/lib/python3.11/site-packages"]
}
check: strict: false
ui: color_scheme: "dark"
`)

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	want := &Config{
		Python: PythonConfig{
			Interpreter: "/opt/py/bin/python3.11",
			Version:     "3.11",
			SitePaths:   []string{"/opt/py/lib/python3.11/site-packages"},
		},
		Check: CheckConfig{Strict: false},
		UI:    UIConfig{ColorScheme: ColorSchemeDark},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("source = %q", path)
	}
	if cfg.Python.NeedsProbe() {
		t.Error("fully configured python should not need a probe")
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "python: {"},
		{name: "schema", content: `ui: color_scheme: "purple"`},
		{name: "unknown field", content: `editor: "vim"`},
		{name: "bad version", content: `python: version: "three"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "config.cue"), tt.content)

			_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error = %v, want *issue.ActionableError", err)
			}
			if ae.Issue != issue.AppConfigLoadFailedId || !ae.HasSuggestions() {
				t.Errorf("error = %+v, want catalog issue and suggestions", ae)
			}
		})
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load() error = %v, want not found", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

// Not parallel: uses t.Setenv.
func TestEnvironmentOverrides(t *testing.T) {
	cfgDir := t.TempDir()
	writeFile(t, filepath.Join(cfgDir, "config.cue"), `python: interpreter: "from-file"
ui: verbose: false
`)
	project := t.TempDir()
	writeFile(t, filepath.Join(project, DotEnvFile), strings.Join([]string{
		"ZETUP_PYTHON_INTERPRETER=from-dotenv",
		"ZETUP_PYTHON_VERSION=3.9",
		"ZETUP_PYTHON_SITE_PATHS=/a,/b",
		"ZETUP_UI_VERBOSE=true",
		"UNRELATED=1",
	}, "\n"))

	t.Setenv("ZETUP_PYTHON_VERSION", "3.13")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: cfgDir, ProjectDir: project})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Python.Interpreter != "from-dotenv" {
		t.Errorf("Interpreter = %q, want .env over file", cfg.Python.Interpreter)
	}
	if cfg.Python.Version != "3.13" {
		t.Errorf("Version = %q, want process env over .env", cfg.Python.Version)
	}
	if diff := cmp.Diff([]string{"/a", "/b"}, cfg.Python.SitePaths); diff != "" {
		t.Errorf("SitePaths mismatch (-want +got):\n%s", diff)
	}
	if !cfg.UI.Verbose {
		t.Error("Verbose = false, want .env override")
	}
}

func TestEnvName(t *testing.T) {
	t.Parallel()

	if got := EnvName("python.site_paths"); got != "ZETUP_PYTHON_SITE_PATHS" {
		t.Errorf("EnvName() = %q", got)
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	t.Parallel()

	want := &Config{
		Python: PythonConfig{Interpreter: "py", Version: "3.12", SitePaths: []string{"/x", "/y"}},
		Check:  CheckConfig{Strict: true},
		UI:     UIConfig{ColorScheme: ColorSchemeLight, Verbose: true},
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.cue"), GenerateCUE(want))

	got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// Not parallel: uses the package level directory override.
func TestCreateDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "zetup")
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}
	source, err := NewProvider().Source(context.Background(), LoadOptions{})
	if err != nil || source != path {
		t.Errorf("Source() = %q, %v; want %q", source, err, path)
	}

	custom := DefaultConfig()
	custom.Check.Strict = false
	if err := Save(custom); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Check.Strict {
		t.Error("CreateDefaultConfig() overwrote an existing config")
	}
}
