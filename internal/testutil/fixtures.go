// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package testutil holds documents and helpers shared by tests, benchmarks and the bsonbench
// command.
package testutil

import (
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ikmak/bsonnative/bson"
)

// Fixture is a named document.
type Fixture struct {
	Name string
	Doc  *bson.Document
}

// MustHex decodes s, ignoring whitespace, and fails t if s is not valid hex.
func MustHex(t testing.TB, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		t.Fatalf("invalid hex %q: %v", s, err)
	}
	return b
}

// ObjectID returns the ObjectID with hex representation s. It panics on invalid input.
func ObjectID(s string) bson.ObjectID {
	oid, err := bson.ObjectIDFromHex(s)
	if err != nil {
		panic(err)
	}
	return oid
}

// Corpus returns documents that between them hold every encodable value type. Each one
// round-trips through Serialize and Deserialize unchanged.
func Corpus() []Fixture {
	oid := ObjectID("5a934e000102030405000000")

	return []Fixture{
		{Name: "empty", Doc: bson.NewDocument()},
		{Name: "scalars", Doc: bson.NewDocument(
			bson.E("null", bson.Null{}),
			bson.E("true", bson.Boolean(true)),
			bson.E("false", bson.Boolean(false)),
			bson.E("int32", bson.Int32(-7)),
			bson.E("double", bson.Double(5.5)),
			bson.E("string", bson.String("héllo")),
			bson.E("emptyString", bson.String("")),
			bson.E("date", bson.DateTime(1519601664000)),
		)},
		{Name: "extended", Doc: bson.NewDocument(
			bson.E("long", bson.NewLong(1<<60)),
			bson.E("negLong", bson.NewLong(-(1<<60))),
			bson.E("oid", oid),
			bson.E("ts", bson.Timestamp{I: 1, T: 1519601664}),
			bson.E("symbol", bson.Symbol("sym")),
			bson.E("min", bson.MinKey{}),
			bson.E("max", bson.MaxKey{}),
		)},
		{Name: "binary", Doc: bson.NewDocument(
			bson.E("generic", bson.NewBinary([]byte{0x01, 0x02, 0x03})),
			bson.E("old", bson.Binary{Subtype: 0x02, Data: []byte("legacy")}),
			bson.E("uuid", bson.Binary{Subtype: 0x04, Data: make([]byte, 16)}),
			bson.E("empty", bson.Binary{Subtype: 0x80, Data: []byte{}}),
		)},
		{Name: "code", Doc: bson.NewDocument(
			bson.E("js", bson.JavaScript("function() { return 1; }")),
			bson.E("scoped", bson.CodeWithScope{
				Code:  "function() { return x; }",
				Scope: bson.NewDocument(bson.E("x", bson.Int32(1))),
			}),
			bson.E("regex", bson.Regex{Pattern: "^a.*b$", Flags: bson.RegexGlobal | bson.RegexMultiline}),
		)},
		{Name: "nested", Doc: bson.NewDocument(
			bson.E("a", bson.NewDocument(
				bson.E("b", bson.Array{bson.Int32(1), bson.String("two"), bson.Double(3.25)}),
			)),
			bson.E("matrix", bson.Array{
				bson.Array{bson.Int32(1), bson.Int32(2)},
				bson.Array{},
				bson.NewDocument(bson.E("k", bson.Null{})),
			}),
		)},
		{Name: "dbref", Doc: bson.NewDocument(
			bson.E("ref", bson.DBRef{Ref: "users", ID: oid, DB: "app"}),
			bson.E("nodb", bson.DBRef{Ref: "users", ID: bson.Int32(7)}),
		)},
	}
}

// FlatDocument returns a document with n scalar fields of mixed types.
func FlatDocument(n int) *bson.Document {
	doc := bson.NewDocument()
	for i := 0; i < n; i++ {
		key := "field" + strconv.Itoa(i)
		switch i % 5 {
		case 0:
			doc.Set(key, bson.Int32(int32(i)))
		case 1:
			doc.Set(key, bson.Double(float64(i)+0.5))
		case 2:
			doc.Set(key, bson.String(strings.Repeat("x", i%32)))
		case 3:
			doc.Set(key, bson.Boolean(i%2 == 0))
		default:
			doc.Set(key, bson.NewDateTimeFromTime(time.Unix(int64(i), 0)))
		}
	}
	return doc
}

// DeepDocument returns a document nested depth levels deep, alternating documents and arrays.
func DeepDocument(depth int) *bson.Document {
	var inner bson.Value = bson.String("leaf")
	for i := 0; i < depth; i++ {
		if i%2 == 0 {
			inner = bson.Array{bson.Int32(int32(i)), inner}
			continue
		}
		inner = bson.NewDocument(bson.E("level", bson.Int32(int32(i))), bson.E("child", inner))
	}
	return bson.NewDocument(bson.E("root", inner))
}

// NestedDocuments returns a document of exactly depth nested documents, counting itself.
func NestedDocuments(depth int) *bson.Document {
	doc := bson.NewDocument()
	for i := 1; i < depth; i++ {
		doc = bson.NewDocument(bson.E("d", doc))
	}
	return doc
}
