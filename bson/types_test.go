// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"testing"

	"github.com/ikmak/bsonnative/bson/bsontype"
	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		v    Value
		want bsontype.Type
	}{
		{"nil", nil, bsontype.Null},
		{"null", Null{}, bsontype.Null},
		{"undefined", Undefined{}, bsontype.Null},
		{"boolean", Boolean(true), bsontype.Boolean},
		{"int32", Int32(1), bsontype.Int32},
		{"integral double", Double(5), bsontype.Int32},
		{"negative integral double", Double(-5), bsontype.Int32},
		{"min int32 double", Double(math.MinInt32), bsontype.Int32},
		{"max int32 double", Double(math.MaxInt32), bsontype.Int32},
		{"above int32 double", Double(math.MaxInt32 + 1), bsontype.Double},
		{"below int32 double", Double(math.MinInt32 - 1), bsontype.Double},
		{"fractional double", Double(5.5), bsontype.Double},
		{"nan double", Double(math.NaN()), bsontype.Double},
		{"inf double", Double(math.Inf(1)), bsontype.Double},
		{"negative zero double", Double(math.Copysign(0, -1)), bsontype.Int32},
		{"wrapped double", WrappedDouble(5), bsontype.Double},
		{"long", NewLong(1), bsontype.Int64},
		{"string", String("a"), bsontype.String},
		{"symbol", Symbol("a"), bsontype.Symbol},
		{"document", NewDocument(), bsontype.EmbeddedDocument},
		{"dbref", DBRef{}, bsontype.EmbeddedDocument},
		{"array", Array{}, bsontype.Array},
		{"binary", Binary{}, bsontype.Binary},
		{"datetime", DateTime(0), bsontype.DateTime},
		{"regex", Regex{}, bsontype.Regex},
		{"javascript", JavaScript("x"), bsontype.JavaScript},
		{"function", Function{Source: "x"}, bsontype.JavaScript},
		{"code with empty scope", CodeWithScope{Code: "x", Scope: NewDocument()}, bsontype.JavaScript},
		{"code with nil scope", CodeWithScope{Code: "x"}, bsontype.JavaScript},
		{
			"code with hooked empty scope",
			CodeWithScope{Code: "x", Scope: NewDocument().SetHook(func() (Value, error) { return NewDocument(), nil })},
			bsontype.CodeWithScope,
		},
		{"code with scope", CodeWithScope{Code: "x", Scope: NewDocument(E("a", Null{}))}, bsontype.CodeWithScope},
		{"objectid", ObjectID{}, bsontype.ObjectID},
		{"timestamp", Timestamp{}, bsontype.Timestamp},
		{"minkey", MinKey{}, bsontype.MinKey},
		{"maxkey", MaxKey{}, bsontype.MaxKey},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := TypeOf(tc.v)
			assert.Equal(t, tc.want, got, "want %s, got %s", tc.want, got)
			assert.True(t, got.IsEncodable())
		})
	}
}

func TestPromotable(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		i64  int64
		want bool
	}{
		{"zero", 0, true},
		{"2^53-1", 1<<53 - 1, true},
		{"2^53", 1 << 53, true},
		{"2^53+1", 1<<53 + 1, false},
		{"-(2^53-1)", -(1<<53 - 1), true},
		{"-2^53", -(1 << 53), true},
		{"-2^53-1", -(1 << 53) - 1, false},
		{"max", math.MaxInt64, false},
		{"min", math.MinInt64, false},
	}

	for _, tc := range testCases {
		l := NewLong(tc.i64)
		assert.Equal(t, tc.want, promotable(l.Low, l.High), tc.name)
	}
}

func TestConstructorsMissing(t *testing.T) {
	t.Parallel()

	assert.Empty(t, DefaultConstructors().missing())

	cons := DefaultConstructors()
	cons.Double = nil
	cons.MaxKey = nil
	assert.Equal(t, []string{"Double", "MaxKey"}, cons.missing())

	assert.Len(t, Constructors{}.missing(), 10)
}

func TestDefaultConstructors(t *testing.T) {
	t.Parallel()

	cons := DefaultConstructors()
	scope := NewDocument(E("a", Int32(1)))

	assert.Equal(t, JavaScript("x"), cons.Code("x", nil))
	assert.Equal(t, CodeWithScope{Code: "x", Scope: scope}, cons.Code("x", scope))
	assert.Equal(t, DBRef{Ref: "c", ID: Int32(1), DB: "d"}, cons.DBRef(String("c"), Int32(1), String("d")))
	assert.Equal(t, DBRef{ID: Int32(1)}, cons.DBRef(Int32(5), Int32(1), nil))
	assert.Equal(t, Long{Low: 1, High: 2}, cons.Long(1, 2))
	assert.Equal(t, Timestamp{I: 1, T: 2}, cons.Timestamp(1, 2))
	assert.Equal(t, Double(1.5), cons.Double(1.5))
}
