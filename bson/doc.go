// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson is a library for encoding and decoding BSON documents built from a closed set of
// dynamically typed values.
//
// Documents are built with NewDocument and the Value types of this package:
//
//	doc := bson.NewDocument(
//		bson.E("name", bson.String("bob")),
//		bson.E("age", bson.Double(42)),
//		bson.E("tags", bson.Array{bson.String("a"), bson.String("b")}),
//	)
//	b, err := bson.Serialize(doc)
//
// Encoding runs two passes over the same traversal: the first only counts bytes, the second writes
// them into a buffer allocated once with exactly that size. SerializeInto writes into a caller
// owned buffer instead.
//
// Decoding validates every length prefix and terminator against the enclosing document before
// reading, and rebuilds extended types with the Constructors a Codec was created with:
//
//	v, err := bson.Deserialize(b)
//	doc, ok := v.(*bson.Document)
//
// A decoded document that holds an "$id" key is rebuilt as a DBRef. A 64-bit integer whose value
// lies in [-2^53, 2^53] decodes as a Double unless long promotion is disabled with
// bsonoptions.Decode().SetPromoteLongs(false).
//
// Every error returned by this package wraps an *Error whose Kind classifies the failure:
//
//	if errors.Is(err, bson.ErrKeyConstraint) { ... }
package bson
