// SPDX-License-Identifier: MPL-2.0

package requires

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Comparison operators accepted in version specs.
const (
	OpCompatible = "~="
	OpArbitrary  = "==="
	OpEqual      = "=="
	OpNotEqual   = "!="
	OpLessEq     = "<="
	OpGreaterEq  = ">="
	OpLess       = "<"
	OpGreater    = ">"

	wildcardSuffix = ".*"
)

var (
	// ErrInvalidVersion is returned when an installed or declared version
	// cannot be compared.
	ErrInvalidVersion = errors.New("invalid version")

	// operators is ordered longest first so that prefix scanning picks "==="
	// before "==" and "<=" before "<".
	operators = []string{OpArbitrary, OpCompatible, OpEqual, OpNotEqual, OpLessEq, OpGreaterEq, OpLess, OpGreater}
)

// Spec is a single (operator, version) constraint of a requirement.
type Spec struct {
	Op      string `json:"op"`
	Version string `json:"version"`
}

// String returns the spec as written in a requirement, e.g. ">=1.0".
func (s Spec) String() string {
	return s.Op + s.Version
}

// Matches reports whether candidate satisfies the spec.
func (s Spec) Matches(candidate string) (bool, error) {
	candidate = strings.TrimSpace(candidate)

	switch s.Op {
	case OpArbitrary:
		return strings.EqualFold(candidate, s.Version), nil
	case OpEqual, OpNotEqual:
		eq, err := s.equal(candidate)
		if err != nil {
			return false, err
		}
		if s.Op == OpNotEqual {
			return !eq, nil
		}
		return eq, nil
	case OpCompatible:
		return s.compatible(candidate)
	}

	have, want, err := parsePair(candidate, s.Version)
	if err != nil {
		return false, err
	}
	cmp := have.Compare(want)
	switch s.Op {
	case OpLessEq:
		return cmp <= 0, nil
	case OpGreaterEq:
		return cmp >= 0, nil
	case OpLess:
		return cmp < 0, nil
	case OpGreater:
		return cmp > 0, nil
	default:
		return false, fmt.Errorf("unknown operator %q", s.Op)
	}
}

func (s Spec) equal(candidate string) (bool, error) {
	if prefix, ok := strings.CutSuffix(s.Version, wildcardSuffix); ok {
		return prefixMatch(candidate, prefix)
	}
	have, want, err := parsePair(candidate, s.Version)
	if err != nil {
		// Unparseable versions can still be identical strings.
		if candidate == s.Version {
			return true, nil
		}
		return false, err
	}
	// A local label is only significant when the spec names one.
	if !want.hasLocal {
		return have.publicEqual(want), nil
	}
	return have.Equal(want), nil
}

// compatible implements "~=V.N": at least V.N and the same release prefix V.
func (s Spec) compatible(candidate string) (bool, error) {
	have, want, err := parsePair(candidate, s.Version)
	if err != nil {
		return false, err
	}
	release := strings.Split(releasePart(s.Version), ".")
	if len(release) < 2 {
		return false, fmt.Errorf("%w: %q needs at least two release segments", ErrInvalidVersion, s.String())
	}
	if have.LessThan(want) {
		return false, nil
	}
	return matchRelease(have, want.Epoch(), release[:len(release)-1])
}

// prefixMatch compares the epoch and leading release segments of candidate
// with prefix. Pre-, post- and development releases of a matching release
// match too.
func prefixMatch(candidate, prefix string) (bool, error) {
	have, err := ParseVersion(candidate)
	if err != nil {
		return false, err
	}
	want, err := ParseVersion(prefix)
	if err != nil {
		return false, err
	}
	return matchRelease(have, want.Epoch(), strings.Split(releasePart(prefix), "."))
}

func matchRelease(have *Version, epoch int, prefix []string) (bool, error) {
	if have.Epoch() != epoch {
		return false, nil
	}
	haveSegments := have.Release()
	for i, raw := range prefix {
		want, err := strconv.Atoi(raw)
		if err != nil {
			return false, fmt.Errorf("%w: %q", ErrInvalidVersion, strings.Join(prefix, "."))
		}
		got := 0
		if i < len(haveSegments) {
			got = haveSegments[i]
		}
		if got != want {
			return false, nil
		}
	}
	return true, nil
}

// releasePart returns the release segments of a version as written,
// without epoch or suffixes.
func releasePart(s string) string {
	m := pythonVersionRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return m[pythonVersionRegex.SubexpIndex("release")]
}

func parsePair(candidate, declared string) (have, want *Version, err error) {
	if have, err = ParseVersion(candidate); err != nil {
		return nil, nil, err
	}
	if want, err = ParseVersion(declared); err != nil {
		return nil, nil, err
	}
	return have, want, nil
}

// splitOperator separates a leading comparison operator from its version.
func splitOperator(s string) (op, ver string, ok bool) {
	s = strings.TrimSpace(s)
	for _, candidate := range operators {
		if rest, found := strings.CutPrefix(s, candidate); found {
			return candidate, strings.TrimSpace(rest), true
		}
	}
	return "", "", false
}
