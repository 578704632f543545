// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Decoding compiles the schema, unifies the user document with one of its
// definitions, validates the result and decodes it into a Go value:
//
//	//go:embed zetup_schema.cue
//	var schema []byte
//
//	res, err := cueutil.Decode[Project](schema, data, "#Project",
//	    cueutil.WithFilename("zetup.cue"))
//	if err != nil {
//	    return nil, err // "<file>: <path>: <message>"
//	}
//	return res.Value, nil
//
// Validation failures are reported as [ValidationError] values carrying the
// JSON-style path of the offending field.
package cueutil
