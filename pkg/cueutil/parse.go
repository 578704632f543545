// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Result is a decoded document.
type Result[T any] struct {
	// Value is the decoded Go value.
	Value *T
	// Unified is the document unified with the schema definition.
	Unified cue.Value
}

// Decode unifies data with the definition of schema named by definition
// (e.g. "#Project"), validates it and decodes it into a T.
func Decode[T any](schema, data []byte, definition string, opts ...Option) (*Result[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if err := schemaValue.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	def := schemaValue.LookupPath(cue.ParsePath(definition))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("schema has no definition %s: %w", definition, err)
	}

	doc := ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := doc.Err(); err != nil {
		return nil, FormatError(err, o.filename)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, o.filename)
	}

	var value T
	if err := unified.Decode(&value); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return &Result[T]{Value: &value, Unified: unified}, nil
}

// DecodeFile reads path and decodes it like Decode. The file name defaults
// to path.
func DecodeFile[T any](schema []byte, path, definition string, opts ...Option) (*Result[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode[T](schema, data, definition, append([]Option{WithFilename(path)}, opts...)...)
}
