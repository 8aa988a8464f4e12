// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ikmak/bsonnative/bson/bsonoptions"
	"github.com/tidwall/pretty"
)

// ExtJSON renders v as extended JSON. Host numbers (Double) render as plain JSON numbers; every
// other numeric type keeps its type wrapper so the rendering is unambiguous. Containers nested
// deeper than bsonoptions.DefaultMaxDepth render as "...".
func ExtJSON(v Value) string {
	var b strings.Builder
	appendExtJSON(&b, v, 0)
	return b.String()
}

// PrettyJSON renders v as indented extended JSON.
func PrettyJSON(v Value) []byte {
	return pretty.Pretty([]byte(ExtJSON(v)))
}

func appendExtJSON(b *strings.Builder, v Value, depth int) {
	switch v.(type) {
	case *Document, Array, CodeWithScope, DBRef:
		if depth >= bsonoptions.DefaultMaxDepth {
			b.WriteString(`"..."`)
			return
		}
		depth++
	}

	switch tv := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case Undefined:
		b.WriteString(`{"$undefined":true}`)
	case Boolean:
		b.WriteString(strconv.FormatBool(bool(tv)))
	case Int32:
		b.WriteString(`{"$numberInt":"`)
		b.WriteString(strconv.FormatInt(int64(tv), 10))
		b.WriteString(`"}`)
	case Double:
		f := float64(tv)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			b.WriteString(`{"$numberDouble":"`)
			b.WriteString(formatDouble(f))
			b.WriteString(`"}`)
			return
		}
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case WrappedDouble:
		b.WriteString(`{"$numberDouble":"`)
		b.WriteString(formatDouble(float64(tv)))
		b.WriteString(`"}`)
	case Long:
		b.WriteString(`{"$numberLong":"`)
		b.WriteString(strconv.FormatInt(tv.Int64(), 10))
		b.WriteString(`"}`)
	case String:
		writeEscaped(b, string(tv))
	case Symbol:
		b.WriteString(`{"$symbol":`)
		writeEscaped(b, string(tv))
		b.WriteByte('}')
	case *Document:
		b.WriteByte('{')
		for i := 0; i < tv.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			e := tv.elems[i]
			writeEscaped(b, e.Key)
			b.WriteByte(':')
			appendExtJSON(b, e.Value, depth)
		}
		b.WriteByte('}')
	case Array:
		b.WriteByte('[')
		for i, elem := range tv {
			if i > 0 {
				b.WriteByte(',')
			}
			appendExtJSON(b, elem, depth)
		}
		b.WriteByte(']')
	case Binary:
		b.WriteString(`{"$binary":{"base64":"`)
		b.WriteString(base64.StdEncoding.EncodeToString(tv.Data))
		b.WriteString(`","subType":"`)
		b.WriteString(hex.EncodeToString([]byte{tv.Subtype}))
		b.WriteString(`"}}`)
	case DateTime:
		b.WriteString(`{"$date":{"$numberLong":"`)
		b.WriteString(strconv.FormatInt(int64(tv), 10))
		b.WriteString(`"}}`)
	case Regex:
		b.WriteString(`{"$regularExpression":{"pattern":`)
		writeEscaped(b, tv.Pattern)
		b.WriteString(`,"options":"`)
		b.WriteString(sortOptions(tv.Flags.String()))
		b.WriteString(`"}}`)
	case JavaScript:
		b.WriteString(`{"$code":`)
		writeEscaped(b, string(tv))
		b.WriteByte('}')
	case Function:
		b.WriteString(`{"$code":`)
		writeEscaped(b, tv.Source)
		b.WriteByte('}')
	case CodeWithScope:
		b.WriteString(`{"$code":`)
		writeEscaped(b, tv.Code)
		b.WriteString(`,"$scope":`)
		appendExtJSON(b, tv.Scope, depth)
		b.WriteByte('}')
	case ObjectID:
		b.WriteString(`{"$oid":"`)
		b.WriteString(tv.Hex())
		b.WriteString(`"}`)
	case Timestamp:
		b.WriteString(`{"$timestamp":{"t":`)
		b.WriteString(strconv.FormatUint(uint64(tv.T), 10))
		b.WriteString(`,"i":`)
		b.WriteString(strconv.FormatUint(uint64(tv.I), 10))
		b.WriteString(`}}`)
	case DBRef:
		b.WriteString(`{"$ref":`)
		writeEscaped(b, tv.Ref)
		b.WriteString(`,"$id":`)
		appendExtJSON(b, tv.ID, depth)
		if tv.DB != "" {
			b.WriteString(`,"$db":`)
			writeEscaped(b, tv.DB)
		}
		b.WriteByte('}')
	case MinKey:
		b.WriteString(`{"$minKey":1}`)
	case MaxKey:
		b.WriteString(`{"$maxKey":1}`)
	}
}

func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}

	// Print exactly one decimal place for integers; otherwise, print as many as are necessary to
	// perfectly represent it.
	s := strconv.FormatFloat(f, 'G', -1, 64)
	if !strings.ContainsAny(s, ".E") {
		s += ".0"
	}
	return s
}

func sortOptions(s string) string {
	b := []byte(s)
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	return string(b)
}

const hexChars = "0123456789abcdef"

// writeEscaped writes s as a quoted JSON string. Invalid UTF-8 is replaced with U+FFFD.
func writeEscaped(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				b.WriteByte('\\')
				b.WriteByte(c)
			case c == '\n':
				b.WriteString(`\n`)
			case c == '\r':
				b.WriteString(`\r`)
			case c == '\t':
				b.WriteString(`\t`)
			case c < 0x20:
				b.WriteString(`\u00`)
				b.WriteByte(hexChars[c>>4])
				b.WriteByte(hexChars[c&0xF])
			default:
				b.WriteByte(c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteString("\uFFFD")
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	b.WriteByte('"')
}

func (v Null) String() string          { return ExtJSON(v) }
func (v Undefined) String() string     { return ExtJSON(v) }
func (v Boolean) String() string       { return ExtJSON(v) }
func (v Int32) String() string         { return ExtJSON(v) }
func (v Double) String() string        { return ExtJSON(v) }
func (v WrappedDouble) String() string { return ExtJSON(v) }
func (v Long) String() string          { return ExtJSON(v) }
func (v String) String() string        { return ExtJSON(v) }
func (v Symbol) String() string        { return ExtJSON(v) }
func (v Array) String() string         { return ExtJSON(v) }
func (v Binary) String() string        { return ExtJSON(v) }
func (v DateTime) String() string      { return ExtJSON(v) }
func (v Regex) String() string         { return ExtJSON(v) }
func (v JavaScript) String() string    { return ExtJSON(v) }
func (v CodeWithScope) String() string { return ExtJSON(v) }
func (v Function) String() string      { return ExtJSON(v) }
func (v ObjectID) String() string      { return ExtJSON(v) }
func (v Timestamp) String() string     { return ExtJSON(v) }
func (v DBRef) String() string         { return ExtJSON(v) }
func (v MinKey) String() string        { return ExtJSON(v) }
func (v MaxKey) String() string        { return ExtJSON(v) }

// String renders d as extended JSON.
func (d *Document) String() string { return ExtJSON(d) }
