// SPDX-License-Identifier: MPL-2.0

package zetup

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const initFile = "__init__.py"

// derivePackages sets Packages, ConfigPackage and SetupPackage. Without
// declared packages, a directory named like the project is taken as the root
// package. Every declared package is followed by its sub-packages.
func (c *Config) derivePackages(raw *project) error {
	declared := slices.Clone(raw.Packages)
	if len(declared) == 0 {
		if info, err := os.Stat(filepath.Join(c.Dir, c.Name)); err == nil && info.IsDir() {
			declared = []string{c.Name}
		}
	}

	if raw.ConfigPackage != nil {
		c.ConfigPackage = strings.TrimSpace(*raw.ConfigPackage)
		if c.ConfigPackage == "" && len(declared) > 0 {
			c.ConfigPackage = declared[0] + ".zetup_config"
		}
	}
	if len(declared) > 0 {
		c.SetupPackage = declared[0] + ".zetup"
	}

	c.Packages = declared
	for _, pkg := range declared {
		subs, err := FindSubpackages(filepath.Join(c.Dir, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/"))))
		if err != nil {
			return err
		}
		for _, sub := range subs {
			c.Packages = append(c.Packages, pkg+"."+sub)
		}
	}
	if c.ConfigPackage != "" {
		c.Packages = append(c.Packages, c.ConfigPackage)
	}
	return nil
}

// FindSubpackages returns the dotted names, relative to dir, of every
// directory below dir that is a package and whose parents up to dir are
// packages too. A missing dir has no sub-packages.
func FindSubpackages(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "**/"+initFile)
	if err != nil {
		return nil, err
	}

	isPkg := make(map[string]bool, len(matches))
	for _, m := range matches {
		isPkg[path.Dir(m)] = true
	}

	var subs []string
	for _, m := range matches {
		rel := path.Dir(m)
		if rel == "." || hiddenPath(rel) {
			continue
		}
		if !parentsArePackages(rel, isPkg) {
			continue
		}
		subs = append(subs, strings.ReplaceAll(rel, "/", "."))
	}
	slices.Sort(subs)
	return subs, nil
}

func parentsArePackages(rel string, isPkg map[string]bool) bool {
	for parent := path.Dir(rel); parent != "."; parent = path.Dir(parent) {
		if !isPkg[parent] {
			return false
		}
	}
	return true
}

func hiddenPath(rel string) bool {
	for seg := range strings.SplitSeq(rel, "/") {
		if strings.HasPrefix(seg, ".") || seg == "__pycache__" {
			return true
		}
	}
	return false
}
