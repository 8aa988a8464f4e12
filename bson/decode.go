// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"github.com/ikmak/bsonnative/bson/bsontype"
	"github.com/ikmak/bsonnative/x/bsonx/bsoncore"
	"github.com/pkg/errors"
)

// Keys of a document that folds into a DBRef.
const (
	dbRefRefKey = "$ref"
	dbRefIDKey  = "$id"
	dbRefDBKey  = "$db"
)

// decoder reads documents from a borrowed buffer. Every read is bounded by the slice of the
// enclosing document, so a value can never read past its parent.
type decoder struct {
	cons         *Constructors
	promoteLongs bool
	maxDepth     int
	depth        int

	// fill is the number of Undefined values sparse arrays may still insert. It is bounded by the
	// length of the top-level document so decoding stays linear in the input.
	fill int

	// errPath collects the keys leading to a failed element, innermost first.
	errPath []string
}

// decodeTop reads the document at the start of src and returns it with the number of bytes it
// occupies.
func (d *decoder) decodeTop(src []byte) (Value, int, error) {
	d.fill = len(src)
	if length, _, ok := bsoncore.ReadLength(src); ok && int(length) >= 0 && int(length) < d.fill {
		d.fill = int(length)
	}
	v, n, err := d.readDocument(src, true)
	if err != nil {
		if len(d.errPath) > 0 {
			err = errors.WithMessagef(err, "error decoding key %s", joinPath(d.errPath))
			d.errPath = d.errPath[:0]
		}
		return nil, 0, err
	}
	return v, n, nil
}

func (d *decoder) unwind(err error, key string) error {
	d.errPath = append(d.errPath, key)
	return err
}

// frame validates the length prefix and terminator of the document at the start of src and
// returns its elements without the terminator.
func (d *decoder) frame(src []byte, array bool) ([]byte, int, error) {
	length, _, ok := bsoncore.ReadLength(src)
	if !ok {
		return nil, 0, newError(ErrStructuralDecode, msgExceedsParent)
	}
	if length < bsoncore.EmptyDocumentLength {
		if array {
			return nil, 0, newError(ErrStructuralDecode, msgArrayTooShort)
		}
		return nil, 0, newError(ErrStructuralDecode, msgDocumentTooShort)
	}
	if int64(length) > int64(len(src)) {
		return nil, 0, newError(ErrStructuralDecode, msgExceedsParent)
	}
	if src[length-1] != 0x00 {
		return nil, 0, newError(ErrStructuralDecode, msgMissingTerminator)
	}
	return src[4 : length-1], int(length), nil
}

func (d *decoder) enter() error {
	d.depth++
	if d.depth > d.maxDepth {
		return newError(ErrStructuralDecode, msgMaxDepthDecode, d.maxDepth)
	}
	return nil
}

// readDocument reads a document. When fold is set, a document holding "$id" is rebuilt with the
// DBRef constructor.
func (d *decoder) readDocument(src []byte, fold bool) (Value, int, error) {
	doc, n, err := d.readPlainDocument(src)
	if err != nil {
		return nil, 0, err
	}
	if !fold {
		return doc, n, nil
	}

	id, ok := doc.Lookup(dbRefIDKey)
	if !ok {
		return doc, n, nil
	}
	ref, _ := doc.Lookup(dbRefRefKey)
	db, _ := doc.Lookup(dbRefDBKey)
	return d.cons.DBRef(ref, id, db), n, nil
}

func (d *decoder) readPlainDocument(src []byte) (*Document, int, error) {
	if err := d.enter(); err != nil {
		return nil, 0, err
	}
	defer func() { d.depth-- }()

	elems, n, err := d.frame(src, false)
	if err != nil {
		return nil, 0, err
	}

	doc := &Document{}
	for len(elems) > 0 {
		t := bsontype.Type(elems[0])
		key, rem, ok := bsoncore.ReadKey(elems[1:])
		if !ok {
			return nil, 0, newError(ErrStructuralDecode, msgDocumentConsumed)
		}
		v, rem, err := d.readValue(t, rem)
		if err != nil {
			return nil, 0, d.unwind(err, key)
		}
		doc.Set(key, v)
		elems = rem
	}
	return doc, n, nil
}

func (d *decoder) readArray(src []byte) (Array, int, error) {
	if err := d.enter(); err != nil {
		return nil, 0, err
	}
	defer func() { d.depth-- }()

	elems, n, err := d.frame(src, true)
	if err != nil {
		return nil, 0, err
	}

	arr := Array{}
	for len(elems) > 0 {
		t := bsontype.Type(elems[0])
		key, rem, ok := bsoncore.ReadKeyBytes(elems[1:])
		if !ok {
			return nil, 0, newError(ErrStructuralDecode, msgArrayConsumed)
		}
		idx, ok := parseIndex(key)
		if !ok {
			return nil, 0, newError(ErrStructuralDecode, msgInvalidArrayKey)
		}
		if gap := idx - len(arr); gap > 0 {
			if gap > d.fill {
				return nil, 0, newError(ErrStructuralDecode, msgInvalidArrayKey)
			}
			d.fill -= gap
		}
		v, rem, err := d.readValue(t, rem)
		if err != nil {
			return nil, 0, d.unwind(err, string(key))
		}

		if idx < len(arr) {
			arr[idx] = v
		} else {
			for len(arr) < idx {
				arr = append(arr, Undefined{})
			}
			arr = append(arr, v)
		}
		elems = rem
	}
	return arr, n, nil
}

// parseIndex parses an array key. Keys are unsigned decimal numbers no larger than
// MaxDocumentSize.
func parseIndex(key []byte) (int, bool) {
	if len(key) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range key {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n > bsoncore.MaxDocumentSize {
			return 0, false
		}
	}
	return n, true
}

func truncated(t bsontype.Type) error {
	return newError(ErrStructuralDecode, msgTruncatedValue, t)
}

// readValue reads the payload of a t typed value from src and returns the rest of src.
func (d *decoder) readValue(t bsontype.Type, src []byte) (Value, []byte, error) {
	switch t {
	case bsontype.Double:
		f, rem, ok := bsoncore.ReadDouble(src)
		if !ok {
			return nil, src, truncated(t)
		}
		return d.cons.Double(f), rem, nil
	case bsontype.String:
		s, rem, ok := bsoncore.ReadString(src)
		if !ok {
			return nil, src, truncated(t)
		}
		return String(s), rem, nil
	case bsontype.EmbeddedDocument:
		v, n, err := d.readDocument(src, true)
		if err != nil {
			return nil, src, err
		}
		return v, src[n:], nil
	case bsontype.Array:
		arr, n, err := d.readArray(src)
		if err != nil {
			return nil, src, err
		}
		return arr, src[n:], nil
	case bsontype.Binary:
		subtype, bin, rem, ok := bsoncore.ReadBinary(src)
		if !ok {
			return nil, src, truncated(t)
		}
		data := make([]byte, len(bin))
		copy(data, bin)
		return d.cons.Binary(subtype, data), rem, nil
	case bsontype.Undefined:
		return Undefined{}, src, nil
	case bsontype.ObjectID:
		oid, rem, ok := bsoncore.ReadObjectID(src)
		if !ok {
			return nil, src, truncated(t)
		}
		return d.cons.ObjectID(oid), rem, nil
	case bsontype.Boolean:
		b, rem, ok := bsoncore.ReadBoolean(src)
		if !ok {
			return nil, src, truncated(t)
		}
		return Boolean(b), rem, nil
	case bsontype.DateTime:
		dt, rem, ok := bsoncore.ReadInt64(src)
		if !ok {
			return nil, src, truncated(t)
		}
		return DateTime(dt), rem, nil
	case bsontype.Null:
		return Null{}, src, nil
	case bsontype.Regex:
		pattern, options, rem, ok := bsoncore.ReadRegex(src)
		if !ok {
			return nil, src, truncated(t)
		}
		return Regex{Pattern: pattern, Flags: ParseRegexFlags(options)}, rem, nil
	case bsontype.JavaScript:
		code, rem, ok := bsoncore.ReadString(src)
		if !ok {
			return nil, src, truncated(t)
		}
		return d.cons.Code(code, nil), rem, nil
	case bsontype.Symbol:
		s, rem, ok := bsoncore.ReadString(src)
		if !ok {
			return nil, src, truncated(t)
		}
		return d.cons.Symbol(s), rem, nil
	case bsontype.CodeWithScope:
		// The leading total size is read and not checked against what follows.
		_, rem, ok := bsoncore.ReadLength(src)
		if !ok {
			return nil, src, truncated(t)
		}
		code, rem, ok := bsoncore.ReadString(rem)
		if !ok {
			return nil, src, truncated(t)
		}
		scope, n, err := d.readPlainDocument(rem)
		if err != nil {
			return nil, src, err
		}
		return d.cons.Code(code, scope), rem[n:], nil
	case bsontype.Int32:
		i32, rem, ok := bsoncore.ReadInt32(src)
		if !ok {
			return nil, src, truncated(t)
		}
		return Int32(i32), rem, nil
	case bsontype.Timestamp:
		i, rem, ok := bsoncore.ReadInt32(src)
		if !ok {
			return nil, src, truncated(t)
		}
		ts, rem, ok := bsoncore.ReadInt32(rem)
		if !ok {
			return nil, src, truncated(t)
		}
		return d.cons.Timestamp(uint32(i), uint32(ts)), rem, nil
	case bsontype.Int64:
		low, rem, ok := bsoncore.ReadInt32(src)
		if !ok {
			return nil, src, truncated(t)
		}
		high, rem, ok := bsoncore.ReadInt32(rem)
		if !ok {
			return nil, src, truncated(t)
		}
		if d.promoteLongs && promotable(low, high) {
			return d.cons.Double(float64(Long{Low: low, High: high}.Int64())), rem, nil
		}
		return d.cons.Long(low, high), rem, nil
	case bsontype.MinKey:
		return d.cons.MinKey(), src, nil
	case bsontype.MaxKey:
		return d.cons.MaxKey(), src, nil
	default:
		return nil, src, newError(ErrStructuralDecode, msgUnhandledType, byte(t))
	}
}
