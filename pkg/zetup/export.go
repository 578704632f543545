// SPDX-License-Identifier: MPL-2.0

package zetup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-ini/ini"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/zetup/zetup/pkg/requires"
)

// Conda build directory and file names.
const (
	CondaDir       = ".conda"
	CondaMetaFile  = "meta.yaml"
	CondaBuildFile = "build.sh"
	ToxFile        = "tox.ini"
)

type (
	// SetupKeywords are the setup() keyword arguments a project defaults to.
	SetupKeywords struct {
		Name            string              `json:"name"`
		Version         string              `json:"version"`
		Description     string              `json:"description"`
		Author          string              `json:"author"`
		AuthorEmail     string              `json:"author_email"`
		URL             string              `json:"url"`
		License         string              `json:"license"`
		InstallRequires string              `json:"install_requires"`
		ExtrasRequire   map[string]string   `json:"extras_require"`
		Classifiers     []string            `json:"classifiers"`
		Keywords        []string            `json:"keywords"`
		PackageDir      map[string]string   `json:"package_dir,omitempty"`
		Packages        []string            `json:"packages,omitempty"`
		PackageData     map[string][]string `json:"package_data,omitempty"`
	}

	pyproject struct {
		BuildSystem pyBuildSystem `toml:"build-system"`
		Project     pyProject     `toml:"project"`
	}

	pyBuildSystem struct {
		Requires     []string `toml:"requires"`
		BuildBackend string   `toml:"build-backend"`
	}

	pyProject struct {
		Name                 string              `toml:"name"`
		Version              string              `toml:"version,omitempty"`
		Description          string              `toml:"description"`
		License              pyLicense           `toml:"license"`
		Authors              []pyAuthor          `toml:"authors"`
		Keywords             []string            `toml:"keywords,omitempty"`
		Classifiers          []string            `toml:"classifiers,omitempty"`
		RequiresPython       string              `toml:"requires-python,omitempty"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies,omitempty"`
		URLs                 map[string]string   `toml:"urls,omitempty"`
	}

	pyLicense struct {
		Text string `toml:"text"`
	}

	pyAuthor struct {
		Name  string `toml:"name"`
		Email string `toml:"email"`
	}

	condaMeta struct {
		Package      condaPackage      `yaml:"package"`
		Source       condaSource       `yaml:"source"`
		Requirements condaRequirements `yaml:"requirements"`
		About        condaAbout        `yaml:"about"`
	}

	condaPackage struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	}

	condaSource struct {
		Fn  string `yaml:"fn"`
		URL string `yaml:"url"`
	}

	condaRequirements struct {
		Build []string `yaml:"build"`
		Run   []string `yaml:"run"`
	}

	condaAbout struct {
		Home    string `yaml:"home"`
		Summary string `yaml:"summary"`
	}
)

// SetupKeywords returns the setup() keyword defaults derived from the config.
// Package keys are only set when the project declares packages.
func (c *Config) SetupKeywords() SetupKeywords {
	kw := SetupKeywords{
		Name:            c.Name,
		Version:         c.Version.String(),
		Description:     c.Description,
		Author:          c.Author,
		AuthorEmail:     c.Email,
		URL:             c.URL,
		License:         c.License,
		InstallRequires: c.Requires.String(),
		ExtrasRequire:   map[string]string{},
		Classifiers:     c.Classifiers,
		Keywords:        c.Keywords,
	}
	for _, name := range c.Extras.Names() {
		reqs, _ := c.Extras.Get(name)
		kw.ExtrasRequire[name] = reqs.String()
	}
	if c.SetupPackage != "" {
		kw.PackageDir = map[string]string{c.SetupPackage: "."}
		kw.Packages = append(slices.Clone(c.Packages), c.SetupPackage)
		kw.PackageData = map[string][]string{c.SetupPackage: c.Data}
	}
	return kw
}

// SetupKeywordsJSON renders SetupKeywords as indented JSON.
func (c *Config) SetupKeywordsJSON() ([]byte, error) {
	return json.MarshalIndent(c.SetupKeywords(), "", "  ")
}

// Pyproject renders a PEP 621 pyproject.toml.
func (c *Config) Pyproject() ([]byte, error) {
	doc := pyproject{
		BuildSystem: pyBuildSystem{
			Requires:     []string{"setuptools>=61", "zetup"},
			BuildBackend: "setuptools.build_meta",
		},
		Project: pyProject{
			Name:           c.Name,
			Version:        c.Version.String(),
			Description:    c.Description,
			License:        pyLicense{Text: c.License},
			Authors:        []pyAuthor{{Name: c.Author, Email: c.Email}},
			Keywords:       c.Keywords,
			Classifiers:    c.Classifiers,
			RequiresPython: c.minPython(),
			Dependencies:   requirementLines(c.Requires.String()),
		},
	}
	if c.URL != "" {
		doc.Project.URLs = map[string]string{"Homepage": c.URL}
	}
	if c.Extras.Len() > 0 {
		doc.Project.OptionalDependencies = make(map[string][]string, c.Extras.Len())
		for _, name := range c.Extras.Names() {
			reqs, _ := c.Extras.Get(name)
			doc.Project.OptionalDependencies[name] = requirementLines(reqs.String())
		}
	}
	return toml.Marshal(doc)
}

// minPython returns ">=X.Y" for the lowest declared python version.
func (c *Config) minPython() string {
	var lowest *requires.Version
	for _, py := range c.Python {
		v, err := requires.ParseVersion(py)
		if err != nil {
			continue
		}
		if lowest == nil || v.LessThan(lowest) {
			lowest = v
		}
	}
	if lowest == nil {
		return ""
	}
	return ">=" + lowest.String()
}

// CondaMeta renders the conda recipe meta.yaml. Conda has no extras, so every
// extra's requirements become plain requirements.
func (c *Config) CondaMeta() ([]byte, error) {
	var reqs []string
	for _, r := range c.Requires.Records() {
		reqs = append(reqs, r.CondaSpec())
	}
	for _, name := range c.Extras.Names() {
		extra, _ := c.Extras.Get(name)
		for _, r := range extra.Records() {
			reqs = append(reqs, r.CondaSpec())
		}
	}

	sdist := fmt.Sprintf("%s-%s.tar.gz", c.Name, c.Version)
	meta := condaMeta{
		Package: condaPackage{Name: c.Name, Version: c.Version.String()},
		Source: condaSource{
			Fn:  sdist,
			URL: "file://" + filepath.ToSlash(filepath.Join(c.Dir, "dist", sdist)),
		},
		Requirements: condaRequirements{
			Build: append([]string{"python", "pyyaml"}, reqs...),
			Run:   append([]string{"python"}, reqs...),
		},
		About: condaAbout{Home: c.URL, Summary: c.Description},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildScript returns the conda build.sh.
func BuildScript() []byte {
	return []byte("#!/bin/bash\n\n$PYTHON setup.py install\n")
}

// ToxINI renders a tox.ini with one environment per declared python version.
func (c *Config) ToxINI() ([]byte, error) {
	envs := make([]string, 0, len(c.Python))
	for _, py := range c.Python {
		envs = append(envs, "py"+strings.ReplaceAll(py, ".", ""))
	}

	f := ini.Empty()
	tox, err := f.NewSection("tox")
	if err != nil {
		return nil, err
	}
	if _, err := tox.NewKey("envlist", strings.Join(envs, ",")); err != nil {
		return nil, err
	}
	env, err := f.NewSection("testenv")
	if err != nil {
		return nil, err
	}
	if _, err := env.NewKey("deps", "zetup"); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func requirementLines(text string) []string {
	lines := []string{}
	for line := range strings.SplitSeq(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
