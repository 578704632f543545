// SPDX-License-Identifier: MPL-2.0

package requires

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	version "github.com/hashicorp/go-version"
)

// Pre-release phases in release order.
const (
	PhaseAlpha = "a"
	PhaseBeta  = "b"
	PhaseRC    = "rc"
)

var (
	pythonVersionRegex = regexp.MustCompile(`(?i)^v?` +
		`(?:(?P<epoch>[0-9]+)!)?` +
		`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
		`(?:[-_.]?(?P<pre_l>alpha|beta|preview|pre|rc|a|b|c)[-_.]?(?P<pre_n>[0-9]+)?)?` +
		`(?:-(?P<post_n1>[0-9]+)|[-_.]?(?P<post_l>post|rev|r)[-_.]?(?P<post_n2>[0-9]+)?)?` +
		`(?:[-_.]?(?P<dev_l>dev)[-_.]?(?P<dev_n>[0-9]+)?)?` +
		`(?:\+(?P<local>[a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

	phaseAliases = map[string]string{
		"a": PhaseAlpha, "alpha": PhaseAlpha,
		"b": PhaseBeta, "beta": PhaseBeta,
		"c": PhaseRC, "rc": PhaseRC, "pre": PhaseRC, "preview": PhaseRC,
	}

	phaseRank = map[string]int{PhaseAlpha: 0, PhaseBeta: 1, PhaseRC: 2}

	localSeparators = regexp.MustCompile(`[-_.]`)
)

// Version is a Python release version: an optional epoch, numeric release
// segments and optional pre-release, post-release, development and local
// parts, e.g. "1!2.0rc1.post2.dev3+ubuntu.1".
//
// Release segments are compared with go-version, which pads missing
// segments with zeros, so "1.0" equals "1.0.0".
type Version struct {
	raw      string
	epoch    int
	release  *version.Version
	phase    string
	preNum   int
	post     int
	dev      int
	local    []string
	hasPost  bool
	hasDev   bool
	hasLocal bool
}

// ParseVersion parses a Python release version. Separators and spellings
// are normalized the usual way: "1.0-alpha.1" equals "1.0a1" and "1.0-3"
// equals "1.0.post3".
func ParseVersion(s string) (*Version, error) {
	raw := strings.TrimSpace(s)
	m := pythonVersionRegex.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	group := func(name string) string { return m[pythonVersionRegex.SubexpIndex(name)] }

	release, err := version.NewVersion(group("release"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, s, err)
	}
	v := &Version{raw: raw, release: release}

	if v.epoch, err = atoiDefault(group("epoch")); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, s, err)
	}
	if l := group("pre_l"); l != "" {
		v.phase = phaseAliases[strings.ToLower(l)]
		if v.preNum, err = atoiDefault(group("pre_n")); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, s, err)
		}
	}
	switch {
	case group("post_n1") != "":
		v.hasPost = true
		v.post, err = strconv.Atoi(group("post_n1"))
	case group("post_l") != "":
		v.hasPost = true
		v.post, err = atoiDefault(group("post_n2"))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, s, err)
	}
	if group("dev_l") != "" {
		v.hasDev = true
		if v.dev, err = atoiDefault(group("dev_n")); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, s, err)
		}
	}
	if local := group("local"); local != "" {
		v.hasLocal = true
		v.local = localSeparators.Split(strings.ToLower(local), -1)
	}
	return v, nil
}

// String returns the version as written.
func (v *Version) String() string { return v.raw }

// Epoch returns the version epoch, 0 when none is given.
func (v *Version) Epoch() int { return v.epoch }

// Release returns the numeric release segments.
func (v *Version) Release() []int { return v.release.Segments() }

// IsPrerelease reports whether v is an alpha, beta, candidate or
// development release.
func (v *Version) IsPrerelease() bool { return v.phase != "" || v.hasDev }

// Compare returns -1, 0 or 1 as v sorts before, equal to or after other.
// Ordering is epoch, release, pre-release, post-release, development
// release and finally the local label.
func (v *Version) Compare(other *Version) int {
	if c := compareInt(v.epoch, other.epoch); c != 0 {
		return c
	}
	if c := v.release.Compare(other.release); c != 0 {
		return c
	}
	if c := v.comparePublicSuffix(other); c != 0 {
		return c
	}
	return compareLocal(v.local, other.local)
}

// Equal reports whether v and other are the same version.
func (v *Version) Equal(other *Version) bool { return v.Compare(other) == 0 }

// LessThan reports whether v sorts before other.
func (v *Version) LessThan(other *Version) bool { return v.Compare(other) < 0 }

// publicEqual compares v and other ignoring local labels.
func (v *Version) publicEqual(other *Version) bool {
	return v.epoch == other.epoch && v.release.Equal(other.release) && v.comparePublicSuffix(other) == 0
}

func (v *Version) comparePublicSuffix(other *Version) int {
	if c := compareInt(v.preKey(), other.preKey()); c != 0 {
		return c
	}
	if v.phase != "" && other.phase != "" {
		if c := compareInt(v.preNum, other.preNum); c != 0 {
			return c
		}
	}
	if c := compareInt(v.postKey(), other.postKey()); c != 0 {
		return c
	}
	return compareInt(v.devKey(), other.devKey())
}

// preKey sorts a bare development release before all pre-releases of the
// same release, and final releases after them.
func (v *Version) preKey() int {
	switch {
	case v.phase != "":
		return phaseRank[v.phase]
	case v.hasDev && !v.hasPost:
		return -1
	default:
		return len(phaseRank)
	}
}

func (v *Version) postKey() int {
	if !v.hasPost {
		return -1
	}
	return v.post
}

func (v *Version) devKey() int {
	if !v.hasDev {
		return math.MaxInt
	}
	return v.dev
}

// compareLocal orders local labels segment by segment. Numeric segments
// sort after alphanumeric ones; a shorter label sorts first.
func compareLocal(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		na, errA := strconv.Atoi(a[i])
		nb, errB := strconv.Atoi(b[i])
		switch {
		case errA == nil && errB == nil:
			if c := compareInt(na, nb); c != 0 {
				return c
			}
		case errA == nil:
			return 1
		case errB == nil:
			return -1
		default:
			if c := strings.Compare(a[i], b[i]); c != 0 {
				return c
			}
		}
	}
	return compareInt(len(a), len(b))
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func atoiDefault(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
