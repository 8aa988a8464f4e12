// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonoptions

// DefaultMaxDepth is the nesting bound applied when no MaxDepth option is set.
const DefaultMaxDepth = 2048

// EncodeOptions represents all possible options for CalculateSize, Serialize and SerializeInto.
type EncodeOptions struct {
	CheckKeys          *bool // Specifies if keys are rejected when they start with '$' or contain '.'. Defaults to false.
	SerializeFunctions *bool // Specifies if Function values are written as JavaScript code. Defaults to false.
	MaxDepth           *int  // Specifies the maximum document nesting depth. Defaults to DefaultMaxDepth.
}

// Encode creates a new *EncodeOptions
func Encode() *EncodeOptions {
	return &EncodeOptions{}
}

// SetCheckKeys specifies if keys are rejected when they start with '$' or contain '.'. Defaults to false.
func (e *EncodeOptions) SetCheckKeys(b bool) *EncodeOptions {
	e.CheckKeys = &b
	return e
}

// SetSerializeFunctions specifies if Function values are written as JavaScript code instead of
// being skipped. Defaults to false.
func (e *EncodeOptions) SetSerializeFunctions(b bool) *EncodeOptions {
	e.SerializeFunctions = &b
	return e
}

// SetMaxDepth specifies the maximum document nesting depth. Values less than one are ignored.
func (e *EncodeOptions) SetMaxDepth(depth int) *EncodeOptions {
	e.MaxDepth = &depth
	return e
}

// MergeEncodeOptions combines the given *EncodeOptions into a single *EncodeOptions in a last one wins fashion.
func MergeEncodeOptions(opts ...*EncodeOptions) *EncodeOptions {
	e := Encode()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if opt.CheckKeys != nil {
			e.CheckKeys = opt.CheckKeys
		}
		if opt.SerializeFunctions != nil {
			e.SerializeFunctions = opt.SerializeFunctions
		}
		if opt.MaxDepth != nil && *opt.MaxDepth > 0 {
			e.MaxDepth = opt.MaxDepth
		}
	}

	return e
}

// Resolve returns the effective option values with defaults applied.
func (e *EncodeOptions) Resolve() (checkKeys, serializeFunctions bool, maxDepth int) {
	maxDepth = DefaultMaxDepth
	if e == nil {
		return false, false, maxDepth
	}
	if e.CheckKeys != nil {
		checkKeys = *e.CheckKeys
	}
	if e.SerializeFunctions != nil {
		serializeFunctions = *e.SerializeFunctions
	}
	if e.MaxDepth != nil && *e.MaxDepth > 0 {
		maxDepth = *e.MaxDepth
	}
	return checkKeys, serializeFunctions, maxDepth
}
