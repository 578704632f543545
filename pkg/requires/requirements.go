// SPDX-License-Identifier: MPL-2.0

package requires

import (
	"fmt"
	"strings"
)

// Input kinds accepted by New.
const (
	InputText InputKind = iota
	InputRecord
	InputSet
)

type (
	// InputKind tags the variant held by an Input.
	InputKind int

	// Input is one source of requirements for New: raw text, an already
	// parsed record, or a whole set. Build it with FromText, FromRecord or FromSet.
	Input struct {
		kind   InputKind
		text   string
		record *Requirement
		set    *Requirements
	}

	// Option configures parsing and checking of a Requirements set.
	Option func(*options)

	options struct {
		runtime  Runtime
		requirer *Requirer
	}

	// Requirements is an ordered, immutable list of requirement records.
	// Duplicates are kept in declaration order.
	Requirements struct {
		records []*Requirement
		opts    options
	}
)

// FromText wraps requirement text, one declaration per line.
func FromText(text string) Input { return Input{kind: InputText, text: text} }

// FromRecord wraps a parsed requirement.
func FromRecord(r *Requirement) Input { return Input{kind: InputRecord, record: r} }

// FromSet wraps every record of an existing set.
func FromSet(s *Requirements) Input { return Input{kind: InputSet, set: s} }

// Kind returns the variant tag.
func (in Input) Kind() InputKind { return in.kind }

// WithRuntime sets the interpreter version used to evaluate "#py" gates.
func WithRuntime(rt Runtime) Option {
	return func(o *options) { o.runtime = rt }
}

// WithRequirer names the project the requirements belong to.
func WithRequirer(name, version string) Option {
	return func(o *options) {
		o.requirer = &Requirer{Name: name, Version: version}
	}
}

func newOptions(opts []Option) options {
	o := options{runtime: DefaultRuntime}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Parse parses requirement text. Lines that are not requirements are skipped.
func Parse(text string, opts ...Option) *Requirements {
	return New([]Input{FromText(text)}, opts...)
}

// New builds a set from the given inputs, in order.
func New(inputs []Input, opts ...Option) *Requirements {
	r := &Requirements{opts: newOptions(opts)}
	for _, in := range inputs {
		switch in.kind {
		case InputText:
			r.records = append(r.records, parseText(in.text, r.opts.runtime)...)
		case InputRecord:
			if in.record != nil {
				r.records = append(r.records, in.record)
			}
		case InputSet:
			if in.set != nil {
				r.records = append(r.records, in.set.records...)
			}
		}
	}
	return r
}

func parseText(text string, rt Runtime) []*Requirement {
	var records []*Requirement
	for line := range strings.SplitSeq(text, "\n") {
		if req, ok := parseLine(line, rt); ok {
			records = append(records, req)
		}
	}
	return records
}

// Records returns a copy of the records in declaration order.
func (r *Requirements) Records() []*Requirement {
	out := make([]*Requirement, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Requirements) Len() int { return len(r.records) }

// Requirer returns the declaring project, or nil.
func (r *Requirements) Requirer() *Requirer { return r.opts.requirer }

// Get returns the first record whose key or written name equals name.
func (r *Requirements) Get(name string) (*Requirement, error) {
	key := SafeKey(name)
	for _, req := range r.records {
		if req.HasName(name) || req.Key == key {
			return req, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRequirementNotFound, name)
}

// String returns one canonical declaration per line, in declaration order.
func (r *Requirements) String() string {
	lines := make([]string, len(r.records))
	for i, req := range r.records {
		lines[i] = req.String()
	}
	return strings.Join(lines, "\n")
}

// Text is like String but keeps "#import" hints, so Parse(r.Text()) yields
// the same records.
func (r *Requirements) Text() string {
	lines := make([]string, len(r.records))
	for i, req := range r.records {
		lines[i] = req.Text()
	}
	return strings.Join(lines, "\n")
}

// Add returns a new set parsed from the receiver's text followed by text.
// This is concatenation, not a union: a package declared in both keeps both records.
func (r *Requirements) Add(text string) *Requirements {
	joined := r.Text()
	if joined != "" {
		joined += "\n"
	}
	return &Requirements{
		records: parseText(joined+text, r.opts.runtime),
		opts:    r.opts,
	}
}
