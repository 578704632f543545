// SPDX-License-Identifier: MPL-2.0

package requires

import (
	"fmt"
	"strings"
)

// AllExtras is the reserved name of the synthesized aggregate extra.
const AllExtras = "all"

// Extras maps extra feature names to their requirements, in insertion order.
// The "all" entry is never stored; Get builds it from the current entries.
type Extras struct {
	names   []string
	entries map[string]*Requirements
	opts    []Option
}

// NewExtras returns an empty map. The options are applied when parsing text
// passed to Set.
func NewExtras(opts ...Option) *Extras {
	return &Extras{
		entries: make(map[string]*Requirements),
		opts:    opts,
	}
}

// Set parses text and stores it under name, replacing any previous entry.
// A replaced entry keeps its position.
func (e *Extras) Set(name, text string) error {
	return e.SetRequirements(name, Parse(text, e.opts...))
}

// SetRequirements stores reqs under name.
func (e *Extras) SetRequirements(name string, reqs *Requirements) error {
	if name == AllExtras {
		return fmt.Errorf("%w: %q is computed from the other extras", ErrReservedExtra, name)
	}
	if _, exists := e.entries[name]; !exists {
		e.names = append(e.names, name)
	}
	e.entries[name] = reqs
	return nil
}

// Get returns the requirements of an extra. For "all" it returns a fresh set
// chaining every entry's records in insertion order.
func (e *Extras) Get(name string) (*Requirements, error) {
	if name == AllExtras {
		inputs := make([]Input, 0, len(e.names))
		for _, n := range e.names {
			inputs = append(inputs, FromSet(e.entries[n]))
		}
		return New(inputs, e.opts...), nil
	}
	reqs, ok := e.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrExtraNotFound, name)
	}
	return reqs, nil
}

// Names returns the stored extra names in insertion order, without "all".
func (e *Extras) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Len returns the number of stored extras.
func (e *Extras) Len() int { return len(e.names) }

// String lists every extra as an INI-like section.
func (e *Extras) String() string {
	var sb strings.Builder
	for i, name := range e.names {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s]", name)
		if text := e.entries[name].String(); text != "" {
			sb.WriteString("\n")
			sb.WriteString(text)
		}
	}
	return sb.String()
}
