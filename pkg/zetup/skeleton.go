// SPDX-License-Identifier: MPL-2.0

package zetup

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-ini/ini"
)

// Skeleton config formats.
const (
	FormatCUE SkeletonFormat = "cue"
	FormatINI SkeletonFormat = "ini"

	// SkeletonINIFile is the legacy config name written by FormatINI.
	SkeletonINIFile = "zetuprc"
)

var (
	// ErrConfigExists is returned when a directory already holds a zetup config.
	ErrConfigExists = errors.New("zetup config already exists")
	// ErrInvalidSkeleton is returned for skeleton values the loader would reject.
	ErrInvalidSkeleton = errors.New("invalid project skeleton")

	projectNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	pythonRegex      = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)
)

type (
	// SkeletonFormat selects the file WriteSkeleton creates.
	SkeletonFormat string

	// Skeleton holds the initial values of a new project config.
	Skeleton struct {
		Name        string
		Description string
		Author      string
		URL         string
		License     string
		Python      []string
	}
)

// String returns the format name.
func (f SkeletonFormat) String() string { return string(f) }

// IsValid returns whether the format is known, and the validation errors if not.
func (f SkeletonFormat) IsValid() (bool, []error) {
	switch f {
	case FormatCUE, FormatINI:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: unknown format %q (want cue or ini)", ErrInvalidSkeleton, string(f))}
	}
}

// IsValid returns whether the skeleton would load back, and the validation
// errors if not.
func (s Skeleton) IsValid() (bool, []error) {
	var errs []error
	if !projectNameRegex.MatchString(s.Name) {
		errs = append(errs, fmt.Errorf("%w: project name %q", ErrInvalidSkeleton, s.Name))
	}
	if !authorRegex.MatchString(s.Author) {
		errs = append(errs, fmt.Errorf("%w: author %q is not of the form 'Name <email>'", ErrInvalidSkeleton, s.Author))
	}
	for _, py := range s.Python {
		if !pythonRegex.MatchString(py) {
			errs = append(errs, fmt.Errorf("%w: python version %q", ErrInvalidSkeleton, py))
		}
	}
	return len(errs) == 0, errs
}

// CUE renders the skeleton as a zetup.cue file.
func (s Skeleton) CUE() []byte {
	var sb strings.Builder

	sb.WriteString("// zetup project configuration\n")
	sb.WriteString("// Requirements go to requirements.txt and requirements.<extra>.txt.\n\n")
	fmt.Fprintf(&sb, "name:        %q\n", s.Name)
	fmt.Fprintf(&sb, "description: %q\n", s.Description)
	fmt.Fprintf(&sb, "author:      %q\n", s.Author)
	fmt.Fprintf(&sb, "url:         %q\n", s.URL)
	fmt.Fprintf(&sb, "license:     %q\n", s.License)
	sb.WriteString("python: [")
	for i, py := range s.Python {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", py)
	}
	sb.WriteString("]\n")
	sb.WriteString("classifiers: []\n")
	sb.WriteString("keywords: []\n")
	return []byte(sb.String())
}

// INI renders the skeleton as a legacy zetuprc file.
func (s Skeleton) INI() ([]byte, error) {
	f := ini.Empty()
	sec, err := f.NewSection(s.Name)
	if err != nil {
		return nil, err
	}
	for _, kv := range [][2]string{
		{"description", s.Description},
		{"author", s.Author},
		{"url", s.URL},
		{"license", s.License},
		{"python", strings.Join(s.Python, " ")},
		{"classifiers", ""},
		{"keywords", ""},
	} {
		if _, err := sec.NewKey(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSkeleton creates a new project config in dir and returns its path.
// It refuses to touch a directory that already has a config.
func WriteSkeleton(dir string, s Skeleton, format SkeletonFormat) (string, error) {
	if ok, errs := format.IsValid(); !ok {
		return "", errors.Join(errs...)
	}
	if ok, errs := s.IsValid(); !ok {
		return "", errors.Join(errs...)
	}
	if existing, err := ConfigFile(dir); err == nil {
		return "", fmt.Errorf("%w: %s", ErrConfigExists, existing)
	}

	var (
		path = filepath.Join(dir, CUEFile)
		data = s.CUE()
		err  error
	)
	if format == FormatINI {
		path = filepath.Join(dir, SkeletonINIFile)
		if data, err = s.INI(); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
