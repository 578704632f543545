// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCUEPath is returned by CUEPath.Validate.
var ErrInvalidCUEPath = errors.New("invalid CUE path")

// CUEPath is a JSON-style field path such as "extras[0].name".
type CUEPath string

// Validate rejects empty and blank paths.
func (p CUEPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidCUEPath, string(p))
	}
	return nil
}

// String returns the path.
func (p CUEPath) String() string { return string(p) }

// pathOf renders CUE selector segments, turning numeric segments into
// indices: ["extras", "0", "name"] becomes "extras[0].name".
func pathOf(segments []string) CUEPath {
	var sb strings.Builder
	for i, seg := range segments {
		switch {
		case i > 0 && isIndex(seg):
			sb.WriteString("[" + seg + "]")
		case i > 0:
			sb.WriteString("." + seg)
		default:
			sb.WriteString(seg)
		}
	}
	return CUEPath(sb.String())
}

func isIndex(seg string) bool {
	if seg == "" {
		return false
	}
	for _, c := range seg {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
