// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/ikmak/bsonnative/bson"
	"github.com/ikmak/bsonnative/bson/bsonoptions"
	"github.com/ikmak/bsonnative/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtJSON(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		v    bson.Value
		want string
	}{
		{"nil", nil, `null`},
		{"null", bson.Null{}, `null`},
		{"undefined", bson.Undefined{}, `{"$undefined":true}`},
		{"boolean", bson.Boolean(true), `true`},
		{"int32", bson.Int32(-3), `{"$numberInt":"-3"}`},
		{"double", bson.Double(5.5), `5.5`},
		{"integral double", bson.Double(5), `5`},
		{"nan", bson.Double(math.NaN()), `{"$numberDouble":"NaN"}`},
		{"infinity", bson.Double(math.Inf(-1)), `{"$numberDouble":"-Infinity"}`},
		{"wrapped double", bson.WrappedDouble(5), `{"$numberDouble":"5.0"}`},
		{"wrapped large double", bson.WrappedDouble(1e300), `{"$numberDouble":"1E+300"}`},
		{"long", bson.NewLong(-1 << 40), `{"$numberLong":"-1099511627776"}`},
		{"string", bson.String("a\"b\\c\n\x01é"), `"a\"b\\c\n\u0001é"`},
		{"invalid utf-8", bson.String("a\xffb"), "\"a\uFFFDb\""},
		{"symbol", bson.Symbol("s"), `{"$symbol":"s"}`},
		{"array", bson.Array{bson.Boolean(false), bson.Null{}}, `[false,null]`},
		{"empty array", bson.Array{}, `[]`},
		{"binary", bson.Binary{Subtype: 0x80, Data: []byte("hi")}, `{"$binary":{"base64":"aGk=","subType":"80"}}`},
		{"datetime", bson.DateTime(1519601664000), `{"$date":{"$numberLong":"1519601664000"}}`},
		{"regex", bson.Regex{Pattern: "^a", Flags: bson.RegexGlobal | bson.RegexMultiline}, `{"$regularExpression":{"pattern":"^a","options":"ms"}}`},
		{"javascript", bson.JavaScript("f()"), `{"$code":"f()"}`},
		{"function", bson.Function{Source: "g()"}, `{"$code":"g()"}`},
		{
			"code with scope",
			bson.CodeWithScope{Code: "x", Scope: bson.NewDocument(bson.E("x", bson.Int32(1)))},
			`{"$code":"x","$scope":{"x":{"$numberInt":"1"}}}`,
		},
		{"objectid", testutil.ObjectID("5a934e000102030405000000"), `{"$oid":"5a934e000102030405000000"}`},
		{"timestamp", bson.Timestamp{I: 2, T: 1}, `{"$timestamp":{"t":1,"i":2}}`},
		{"dbref", bson.DBRef{Ref: "c", ID: bson.Int32(1)}, `{"$ref":"c","$id":{"$numberInt":"1"}}`},
		{"dbref with db", bson.DBRef{Ref: "c", ID: bson.String("x"), DB: "d"}, `{"$ref":"c","$id":"x","$db":"d"}`},
		{"minkey", bson.MinKey{}, `{"$minKey":1}`},
		{"maxkey", bson.MaxKey{}, `{"$maxKey":1}`},
		{
			"document",
			bson.NewDocument(bson.E("b", bson.Int32(1)), bson.E("a", bson.NewDocument())),
			`{"b":{"$numberInt":"1"},"a":{}}`,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := bson.ExtJSON(tc.v)
			assert.Equal(t, tc.want, got)
			assert.True(t, json.Valid([]byte(got)), "invalid JSON: %s", got)
			if tc.v != nil {
				assert.Equal(t, got, tc.v.String())
			}
		})
	}
}

func TestExtJSONCyclicValue(t *testing.T) {
	t.Parallel()

	arr := make(bson.Array, 1)
	arr[0] = arr
	want := strings.Repeat("[", bsonoptions.DefaultMaxDepth) + `"..."` + strings.Repeat("]", bsonoptions.DefaultMaxDepth)
	assert.Equal(t, want, arr.String())

	doc := bson.NewDocument()
	doc.Set("self", doc)
	got := bson.ExtJSON(doc)
	assert.True(t, strings.HasSuffix(got, `{"self":"..."}`+strings.Repeat("}", bsonoptions.DefaultMaxDepth-1)))
	assert.True(t, json.Valid([]byte(got)))
}

func TestExtJSONCorpusIsValidJSON(t *testing.T) {
	t.Parallel()

	for _, fx := range testutil.Corpus() {
		s := fx.Doc.String()
		assert.True(t, json.Valid([]byte(s)), "%s: %s", fx.Name, s)
	}
}

func TestPrettyJSON(t *testing.T) {
	t.Parallel()

	got := bson.PrettyJSON(bson.NewDocument(bson.E("a", bson.Double(1))))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", string(got))

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(bson.PrettyJSON(testutil.FlatDocument(10)), &m))
	assert.Len(t, m, 10)
}
