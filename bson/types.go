// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"

	"github.com/ikmak/bsonnative/bson/bsontype"
)

// TypeOf returns the wire type the encoder writes for v. A Double resolves to Int32 when it is an
// integer that fits in 32 bits, a CodeWithScope with an empty scope and no hook resolves to
// JavaScript, and Undefined and nil resolve to Null. The encoder decides a hooked scope only after
// its hook has run. A Function resolves to JavaScript even though it is skipped
// unless function serialization is enabled.
func TypeOf(v Value) bsontype.Type {
	switch tv := v.(type) {
	case nil, Null, Undefined:
		return bsontype.Null
	case Boolean:
		return bsontype.Boolean
	case Int32:
		return bsontype.Int32
	case Double:
		if _, ok := fitsInt32(float64(tv)); ok {
			return bsontype.Int32
		}
		return bsontype.Double
	case WrappedDouble:
		return bsontype.Double
	case Long:
		return bsontype.Int64
	case String:
		return bsontype.String
	case Symbol:
		return bsontype.Symbol
	case *Document, DBRef:
		return bsontype.EmbeddedDocument
	case Array:
		return bsontype.Array
	case Binary:
		return bsontype.Binary
	case DateTime:
		return bsontype.DateTime
	case Regex:
		return bsontype.Regex
	case JavaScript, Function:
		return bsontype.JavaScript
	case CodeWithScope:
		if tv.Scope.Len() > 0 || tv.Scope.Hook() != nil {
			return bsontype.CodeWithScope
		}
		return bsontype.JavaScript
	case ObjectID:
		return bsontype.ObjectID
	case Timestamp:
		return bsontype.Timestamp
	case MinKey:
		return bsontype.MinKey
	case MaxKey:
		return bsontype.MaxKey
	default:
		return 0
	}
}

// fitsInt32 reports whether f truncated to 32 bits is still f.
func fitsInt32(f float64) (int32, bool) {
	if f < math.MinInt32 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 0, false
	}
	return int32(f), true
}

// promotable reports whether a Long decodes as a plain number: its value lies in
// [-2^53, 2^53], where every integer is exact in a float64.
func promotable(low, high int32) bool {
	return (high < 0x200000 || (high == 0x200000 && low == 0)) && high >= -0x200000
}

// Constructors are the decode-side reconstruction functions for the extended types. A Codec
// needs all ten.
type Constructors struct {
	Long      func(low, high int32) Value
	ObjectID  func(id [12]byte) Value
	Binary    func(subtype byte, data []byte) Value
	Code      func(code string, scope *Document) Value
	DBRef     func(ref, id, db Value) Value
	Symbol    func(s string) Value
	Double    func(f float64) Value
	Timestamp func(i, t uint32) Value
	MinKey    func() Value
	MaxKey    func() Value
}

// DefaultConstructors returns the constructors that build this package's own value types.
//
// The Code constructor returns JavaScript when scope is nil and CodeWithScope otherwise. The
// DBRef constructor takes ref and db from String values and treats anything else as absent.
func DefaultConstructors() Constructors {
	return Constructors{
		Long:     func(low, high int32) Value { return Long{Low: low, High: high} },
		ObjectID: func(id [12]byte) Value { return ObjectID(id) },
		Binary:   func(subtype byte, data []byte) Value { return Binary{Subtype: subtype, Data: data} },
		Code: func(code string, scope *Document) Value {
			if scope == nil {
				return JavaScript(code)
			}
			return CodeWithScope{Code: code, Scope: scope}
		},
		DBRef: func(ref, id, db Value) Value {
			r := DBRef{ID: id}
			if s, ok := ref.(String); ok {
				r.Ref = string(s)
			}
			if s, ok := db.(String); ok {
				r.DB = string(s)
			}
			return r
		},
		Symbol:    func(s string) Value { return Symbol(s) },
		Double:    func(f float64) Value { return Double(f) },
		Timestamp: func(i, t uint32) Value { return Timestamp{I: i, T: t} },
		MinKey:    func() Value { return MinKey{} },
		MaxKey:    func() Value { return MaxKey{} },
	}
}

// missing returns the names of the nil constructors in declaration order.
func (c Constructors) missing() []string {
	var names []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"Long", c.Long != nil},
		{"ObjectID", c.ObjectID != nil},
		{"Binary", c.Binary != nil},
		{"Code", c.Code != nil},
		{"DbRef", c.DBRef != nil},
		{"Symbol", c.Symbol != nil},
		{"Double", c.Double != nil},
		{"Timestamp", c.Timestamp != nil},
		{"MinKey", c.MinKey != nil},
		{"MaxKey", c.MaxKey != nil},
	} {
		if !f.set {
			names = append(names, f.name)
		}
	}
	return names
}
