// SPDX-License-Identifier: MPL-2.0

package zetup

import (
	"fmt"
	"strings"

	"github.com/go-ini/ini"

	"github.com/zetup/zetup/pkg/cueutil"
)

// requiredKeys must be present in the project section of a legacy config.
var requiredKeys = []string{"description", "author", "url", "license", "python"}

func readCUEProject(path string) (*project, error) {
	res, err := cueutil.DecodeFile[project](schemaBytes, path, "#Project")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return res.Value, nil
}

// readINIProject reads a legacy config. The first section names the project;
// its keys may span several indented lines.
func readINIProject(path string) (*project, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	var sec *ini.Section
	for _, s := range f.Sections() {
		if s.Name() != ini.DefaultSection {
			sec = s
			break
		}
	}
	if sec == nil {
		return nil, fmt.Errorf("%w: %s: no project section", ErrInvalidConfig, path)
	}
	for _, key := range requiredKeys {
		if !sec.HasKey(key) {
			return nil, fmt.Errorf("%w: %s: [%s] lacks %q", ErrInvalidConfig, path, sec.Name(), key)
		}
	}

	p := &project{
		Name:        sec.Name(),
		Title:       strings.TrimSpace(sec.Key("title").String()),
		Description: foldLines(sec.Key("description").String()),
		Author:      strings.TrimSpace(sec.Key("author").String()),
		URL:         strings.TrimSpace(sec.Key("url").String()),
		License:     strings.TrimSpace(sec.Key("license").String()),
		Python:      strings.Fields(sec.Key("python").String()),
		Packages:    strings.Fields(sec.Key("packages").String()),
		Classifiers: classifierLines(sec.Key("classifiers").String()),
		Keywords:    strings.Fields(sec.Key("keywords").String()),
	}
	if sec.HasKey("zetup_config_package") {
		pkg := strings.TrimSpace(sec.Key("zetup_config_package").String())
		p.ConfigPackage = &pkg
	}
	return p, nil
}

// classifierLines splits a multi-line classifiers value into one classifier
// per line. Lines starting with "::" continue the previous classifier.
func classifierLines(value string) []string {
	var out []string
	for line := range strings.SplitSeq(value, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "::") && len(out) > 0:
			out[len(out)-1] += " " + line
		default:
			out = append(out, line)
		}
	}
	return out
}

// foldLines joins the trimmed lines of a multi-line value with single spaces.
func foldLines(value string) string {
	var lines []string
	for line := range strings.SplitSeq(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
