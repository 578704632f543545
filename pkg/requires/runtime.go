// SPDX-License-Identifier: MPL-2.0

package requires

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRuntime is returned by ParseRuntime for malformed version strings.
var ErrInvalidRuntime = errors.New("invalid runtime version")

// DefaultRuntime is the interpreter version used for "#py" gates when no
// runtime option is given.
var DefaultRuntime = Runtime{Major: 3, Minor: 12}

// Runtime identifies the interpreter version that version gates are matched against.
type Runtime struct {
	Major int
	Minor int
}

// ParseRuntime parses "3.11" or "3.11.4" style version strings.
// Components after the minor version are ignored.
func ParseRuntime(s string) (Runtime, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 {
		return Runtime{}, fmt.Errorf("%w: %q", ErrInvalidRuntime, s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return Runtime{}, fmt.Errorf("%w: %q", ErrInvalidRuntime, s)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return Runtime{}, fmt.Errorf("%w: %q", ErrInvalidRuntime, s)
	}
	return Runtime{Major: major, Minor: minor}, nil
}

// Tag returns the "{major}{minor}" string gates are prefix-matched against,
// e.g. "311" for 3.11.
func (r Runtime) Tag() string {
	return strconv.Itoa(r.Major) + strconv.Itoa(r.Minor)
}

// String returns the dotted "major.minor" form.
func (r Runtime) String() string {
	return fmt.Sprintf("%d.%d", r.Major, r.Minor)
}

// Matches reports whether a "#py<gate>" declaration applies to this runtime.
// This is a plain string prefix test: gate "3" matches 3.6 and 3.11 alike,
// and gate "31" matches both 3.1 and 3.10.
func (r Runtime) Matches(gate string) bool {
	return strings.HasPrefix(r.Tag(), gate)
}
