// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"math"
	"strings"
	"time"
)

// Value is a document value. The set of implementations is closed: it is exactly the types
// declared in this package.
type Value interface {
	// String renders the value as relaxed extended JSON.
	String() string

	bsonValue()
}

// Null is the BSON null value.
type Null struct{}

// Undefined is the deprecated BSON undefined value. It is produced by the decoder and by
// sparse arrays; the encoder writes it as Null.
type Undefined struct{}

// Boolean is a BSON boolean.
type Boolean bool

// Int32 is a 32-bit integer. It always encodes with the Int32 tag.
type Int32 int32

// Double is a host number. It encodes as Int32 when it is an integer that fits in 32 bits and as
// a BSON double otherwise.
type Double float64

// WrappedDouble is an explicit double. It always encodes with the double tag.
type WrappedDouble float64

// Long is a 64-bit two's complement integer split into its low and high 32-bit halves.
type Long struct {
	Low  int32
	High int32
}

// String is a UTF-8 string.
type String string

// Symbol is a deprecated BSON symbol. It is distinct from String on both encode and decode.
type Symbol string

// Array is an ordered sequence of values. Keys are the decimal string form of each index.
type Array []Value

// Binary is binary data with a subtype.
type Binary struct {
	Subtype byte
	Data    []byte
}

// DateTime is a signed number of milliseconds since the Unix epoch.
type DateTime int64

// RegexFlags is the set of regular expression flags that survive a round trip.
type RegexFlags uint8

// The supported regular expression flags. They are written in the order s, i, m.
const (
	RegexGlobal RegexFlags = 1 << iota
	RegexIgnoreCase
	RegexMultiline
)

// Regex is a regular expression with flags.
type Regex struct {
	Pattern string
	Flags   RegexFlags
}

// JavaScript is JavaScript code without a scope.
type JavaScript string

// CodeWithScope is JavaScript code with a scope document. An empty or nil scope encodes as plain
// JavaScript.
type CodeWithScope struct {
	Code  string
	Scope *Document
}

// Function is a callable host value carried by its source text. It is skipped on encode unless
// function serialization is enabled, in which case it is written as JavaScript.
type Function struct {
	Source string
}

// Timestamp is a BSON timestamp. I is the increment (low half) and T the seconds (high half).
type Timestamp struct {
	I uint32
	T uint32
}

// DBRef is a database reference. An empty DB means the reference has no database.
type DBRef struct {
	Ref string
	ID  Value
	DB  string
}

// MinKey compares lower than every other value.
type MinKey struct{}

// MaxKey compares higher than every other value.
type MaxKey struct{}

func (Null) bsonValue()          {}
func (Undefined) bsonValue()     {}
func (Boolean) bsonValue()       {}
func (Int32) bsonValue()         {}
func (Double) bsonValue()        {}
func (WrappedDouble) bsonValue() {}
func (Long) bsonValue()          {}
func (String) bsonValue()        {}
func (Symbol) bsonValue()        {}
func (*Document) bsonValue()     {}
func (Array) bsonValue()         {}
func (Binary) bsonValue()        {}
func (DateTime) bsonValue()      {}
func (Regex) bsonValue()         {}
func (JavaScript) bsonValue()    {}
func (CodeWithScope) bsonValue() {}
func (Function) bsonValue()      {}
func (ObjectID) bsonValue()      {}
func (Timestamp) bsonValue()     {}
func (DBRef) bsonValue()         {}
func (MinKey) bsonValue()        {}
func (MaxKey) bsonValue()        {}

// NewLong returns the Long holding i.
func NewLong(i int64) Long {
	return Long{Low: int32(uint32(i)), High: int32(i >> 32)}
}

// Int64 returns the 64-bit value of l.
func (l Long) Int64() int64 {
	return int64(l.High)<<32 | int64(uint32(l.Low))
}

// NewBinary returns generic (subtype 0x00) binary data.
func NewBinary(data []byte) Binary {
	return Binary{Data: data}
}

// NewDateTimeFromTime returns the DateTime for t, truncated to milliseconds.
func NewDateTimeFromTime(t time.Time) DateTime {
	return DateTime(t.Unix()*1e3 + int64(t.Nanosecond())/1e6)
}

// Time returns the UTC time for d.
func (d DateTime) Time() time.Time {
	return time.UnixMilli(int64(d)).UTC()
}

// ParseRegexFlags maps the characters s, i and m to flags. Other characters are ignored.
func ParseRegexFlags(options string) RegexFlags {
	var f RegexFlags
	for i := 0; i < len(options); i++ {
		switch options[i] {
		case 's':
			f |= RegexGlobal
		case 'i':
			f |= RegexIgnoreCase
		case 'm':
			f |= RegexMultiline
		}
	}
	return f
}

// String returns the flag characters in wire order.
func (f RegexFlags) String() string {
	var b strings.Builder
	if f&RegexGlobal != 0 {
		b.WriteByte('s')
	}
	if f&RegexIgnoreCase != 0 {
		b.WriteByte('i')
	}
	if f&RegexMultiline != 0 {
		b.WriteByte('m')
	}
	return b.String()
}

// Equal reports whether a and b are the same value. Documents compare in order, doubles compare
// by their bits so NaN equals NaN, and Binary compares its bytes.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case Double:
		bv, ok := b.(Double)
		return ok && math.Float64bits(float64(av)) == math.Float64bits(float64(bv))
	case WrappedDouble:
		bv, ok := b.(WrappedDouble)
		return ok && math.Float64bits(float64(av)) == math.Float64bits(float64(bv))
	case *Document:
		bv, ok := b.(*Document)
		return ok && av.Equal(bv)
	case Array:
		bv, ok := b.(Array)
		return ok && av.Equal(bv)
	case Binary:
		bv, ok := b.(Binary)
		return ok && av.Equal(bv)
	case CodeWithScope:
		bv, ok := b.(CodeWithScope)
		return ok && av.Equal(bv)
	case DBRef:
		bv, ok := b.(DBRef)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}

// Equal compares d and d2 bitwise.
func (d Double) Equal(d2 Double) bool { return Equal(d, d2) }

// Equal compares w and w2 bitwise.
func (w WrappedDouble) Equal(w2 WrappedDouble) bool { return Equal(w, w2) }

// Equal compares the elements of a and a2 in order.
func (a Array) Equal(a2 Array) bool {
	if len(a) != len(a2) {
		return false
	}
	for i := range a {
		if !Equal(a[i], a2[i]) {
			return false
		}
	}
	return true
}

// Equal compares subtype and data. Nil and empty data are equal.
func (bin Binary) Equal(bin2 Binary) bool {
	return bin.Subtype == bin2.Subtype && bytes.Equal(bin.Data, bin2.Data)
}

// Equal compares code and scope. A nil scope equals an empty one.
func (cws CodeWithScope) Equal(cws2 CodeWithScope) bool {
	return cws.Code == cws2.Code && cws.Scope.Equal(cws2.Scope)
}

// Equal compares all three fields of the references.
func (ref DBRef) Equal(ref2 DBRef) bool {
	return ref.Ref == ref2.Ref && ref.DB == ref2.DB && Equal(ref.ID, ref2.ID)
}
