// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonoptions

// DecodeOptions represents all possible options for Deserialize and DeserializeStream.
type DecodeOptions struct {
	// PromoteLongs specifies if Int64 values inside [-2^53, 2^53] decode as Double instead of
	// Long. Defaults to true.
	PromoteLongs *bool

	// MaxDepth specifies the maximum document nesting depth. Defaults to DefaultMaxDepth.
	MaxDepth *int
}

// Decode creates a new *DecodeOptions
func Decode() *DecodeOptions {
	return &DecodeOptions{}
}

// SetPromoteLongs specifies if small Int64 values decode as Double. Defaults to true.
func (d *DecodeOptions) SetPromoteLongs(b bool) *DecodeOptions {
	d.PromoteLongs = &b
	return d
}

// SetMaxDepth specifies the maximum document nesting depth. Values less than one are ignored.
func (d *DecodeOptions) SetMaxDepth(depth int) *DecodeOptions {
	d.MaxDepth = &depth
	return d
}

// MergeDecodeOptions combines the given *DecodeOptions into a single *DecodeOptions in a last one wins fashion.
func MergeDecodeOptions(opts ...*DecodeOptions) *DecodeOptions {
	d := Decode()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if opt.PromoteLongs != nil {
			d.PromoteLongs = opt.PromoteLongs
		}
		if opt.MaxDepth != nil && *opt.MaxDepth > 0 {
			d.MaxDepth = opt.MaxDepth
		}
	}

	return d
}

// Resolve returns the effective option values with defaults applied.
func (d *DecodeOptions) Resolve() (promoteLongs bool, maxDepth int) {
	promoteLongs, maxDepth = true, DefaultMaxDepth
	if d == nil {
		return promoteLongs, maxDepth
	}
	if d.PromoteLongs != nil {
		promoteLongs = *d.PromoteLongs
	}
	if d.MaxDepth != nil && *d.MaxDepth > 0 {
		maxDepth = *d.MaxDepth
	}
	return promoteLongs, maxDepth
}
