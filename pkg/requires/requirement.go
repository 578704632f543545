// SPDX-License-Identifier: MPL-2.0

package requires

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// importMarker separates a specifier from its explicit import name.
	importMarker = "#import"
)

var (
	// ErrInvalidSpecifier is returned by ParseSpecifier for text that is not a
	// dependency specifier.
	ErrInvalidSpecifier = errors.New("invalid requirement specifier")

	specifierRegex = regexp.MustCompile(
		`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?\s*(.*?)\s*(?:;\s*(.*?))?\s*$`)
	versionRegex = regexp.MustCompile(`^[A-Za-z0-9_.*+!-]+$`)
	extraRegex   = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*)$`)
	gateRegex    = regexp.MustCompile(`^#py(\d+)\s+(.+)$`)
	unsafeRuns   = regexp.MustCompile(`[^A-Za-z0-9.]+`)
)

// Requirement is a single parsed requirement declaration.
type Requirement struct {
	// Name is the project name as written in the declaration.
	Name string `json:"name"`
	// Key is the canonical lookup key derived from Name.
	Key string `json:"key"`
	// Extras lists the requested optional features of the dependency.
	Extras []string `json:"extras,omitempty"`
	// Specs are the version constraints. All of them must hold; none means any version.
	Specs []Spec `json:"specs,omitempty"`
	// Marker is the environment marker text after ';'. It is kept, not evaluated.
	Marker string `json:"marker,omitempty"`
	// ImportName is the module imported to verify the requirement at runtime.
	ImportName string `json:"import_name"`
}

// SafeKey returns the canonical key for a project name: runs of characters
// other than letters, digits and '.' collapse to '-', and the result is lower-cased.
func SafeKey(name string) string {
	return strings.ToLower(unsafeRuns.ReplaceAllString(strings.TrimSpace(name), "-"))
}

// ParseSpecifier parses a standard dependency specifier such as
// "requests[security]>=2.0,<3; python_version>'3'".
func ParseSpecifier(s string) (*Requirement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSpecifier)
	}
	m := specifierRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSpecifier, s)
	}

	req := &Requirement{
		Name: m[1],
		Key:  SafeKey(m[1]),
	}
	req.ImportName = req.Key

	if m[2] != "" {
		for _, raw := range strings.Split(m[2], ",") {
			extra := strings.TrimSpace(raw)
			if extra == "" {
				continue
			}
			if !extraRegex.MatchString(extra) {
				return nil, fmt.Errorf("%w: bad extra %q in %q", ErrInvalidSpecifier, extra, s)
			}
			req.Extras = append(req.Extras, strings.ToLower(extra))
		}
	}

	specs, err := parseSpecs(m[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSpecifier, s, err)
	}
	req.Specs = specs

	if strings.Contains(s, ";") {
		if m[4] == "" {
			return nil, fmt.Errorf("%w: empty marker in %q", ErrInvalidSpecifier, s)
		}
		req.Marker = m[4]
	}

	return req, nil
}

// parseSpecs parses the comma separated constraint list, optionally wrapped in
// parentheses. Identical constraints are kept once, in first-seen order.
func parseSpecs(s string) ([]Spec, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return nil, nil
	}

	var specs []Spec
	seen := make(map[Spec]bool)
	for _, raw := range strings.Split(s, ",") {
		op, ver, ok := splitOperator(raw)
		if !ok {
			return nil, fmt.Errorf("missing operator in %q", strings.TrimSpace(raw))
		}
		if !versionRegex.MatchString(ver) {
			return nil, fmt.Errorf("bad version %q", ver)
		}
		spec := Spec{Op: op, Version: ver}
		if seen[spec] {
			continue
		}
		seen[spec] = true
		specs = append(specs, spec)
	}
	return specs, nil
}

// ParseLine parses one line of requirement text into at most one Requirement.
// Blank lines, comments, lines gated away by "#py<tag>" and anything that is
// not a valid specifier yield false. It never returns an error.
func ParseLine(line string, opts ...Option) (*Requirement, bool) {
	return parseLine(line, newOptions(opts).runtime)
}

func parseLine(line string, rt Runtime) (*Requirement, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}

	if m := gateRegex.FindStringSubmatch(line); m != nil {
		if !rt.Matches(m[1]) {
			return nil, false
		}
		line = strings.TrimSpace(m[2])
	}

	spec, importName := line, ""
	if before, after, found := strings.Cut(line, importMarker); found {
		spec = before
		if fields := strings.Fields(after); len(fields) > 0 {
			importName = fields[0]
		}
	}
	if i := strings.IndexByte(spec, '#'); i >= 0 {
		spec = spec[:i]
	}

	req, err := ParseSpecifier(spec)
	if err != nil {
		return nil, false
	}
	if importName != "" {
		req.ImportName = importName
	}
	return req, true
}

// String returns the canonical declaration: name, extras, specs and marker.
// The import name is not part of it; see Text.
func (r *Requirement) String() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	if len(r.Extras) > 0 {
		sb.WriteString("[")
		sb.WriteString(strings.Join(r.Extras, ","))
		sb.WriteString("]")
	}
	for i, spec := range r.Specs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(spec.String())
	}
	if r.Marker != "" {
		sb.WriteString("; ")
		sb.WriteString(r.Marker)
	}
	return sb.String()
}

// Text returns the declaration together with an "#import" hint when the
// import name differs from the key, so that re-parsing yields the same record.
func (r *Requirement) Text() string {
	if r.ImportName == "" || r.ImportName == r.Key {
		return r.String()
	}
	return r.String() + " " + importMarker + " " + r.ImportName
}

// CondaSpec returns the declaration in conda spelling, which wants a space
// before every operator run ("foo>=1.0" becomes "foo >=1.0").
func (r *Requirement) CondaSpec() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	for i, spec := range r.Specs {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(",")
		}
		sb.WriteString(spec.String())
	}
	return sb.String()
}

// Contains reports whether version satisfies every spec of the requirement.
func (r *Requirement) Contains(version string) (bool, error) {
	for _, spec := range r.Specs {
		ok, err := spec.Matches(version)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// HasName reports whether name refers to this requirement, either by key or
// exactly as written.
func (r *Requirement) HasName(name string) bool {
	return name == r.Name || name == r.Key
}
