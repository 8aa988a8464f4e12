// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"strconv"
	"strings"

	"github.com/ikmak/bsonnative/bson/bsontype"
	"github.com/pkg/errors"
)

// encodeState is shared by the counting and the emitting pass of one encode call.
type encodeState struct {
	checkKeys          bool
	serializeFunctions bool
	maxDepth           int

	// resolved caches hook results so the emitting pass sees exactly what the counting pass saw.
	resolved map[*Document]*Document
	hooked   int
}

// serializer walks a value and writes it through S. It is instantiated once per sink type.
type serializer[S writeSink] struct {
	sink  S
	st    *encodeState
	depth int

	// errPath collects the keys leading to a failed element, innermost first.
	errPath []string
}

func newSerializer[S writeSink](sink S, st *encodeState) *serializer[S] {
	return &serializer[S]{sink: sink, st: st}
}

// serializeTop writes the top-level value, which must be object-like.
func (s *serializer[S]) serializeTop(v Value) error {
	var err error
	switch tv := v.(type) {
	case *Document:
		err = s.serializeDocument(tv)
	case DBRef:
		err = s.serializeDBRef(tv)
	default:
		return newError(ErrArgument, "%s: got %T", msgNonObjectSerialize, v)
	}
	if err != nil && len(s.errPath) > 0 {
		err = errors.WithMessagef(err, "error encoding key %s", joinPath(s.errPath))
	}
	return err
}

// unwind records key as part of the path to a failed element and returns err.
func (s *serializer[S]) unwind(err error, key string) error {
	s.errPath = append(s.errPath, key)
	return err
}

// resolve applies doc's override-serialization hook, once per document per encode call. The
// document returned by a hook is used as is; its own hook is not applied.
func (s *serializer[S]) resolve(doc *Document) (*Document, error) {
	hook := doc.Hook()
	if hook == nil {
		return doc, nil
	}
	if r, ok := s.st.resolved[doc]; ok {
		return r, nil
	}

	v, err := hook()
	if err != nil {
		return nil, &Error{Kind: ErrHook, Message: "toBSON function failed: " + err.Error(), Err: err}
	}
	r, ok := v.(*Document)
	if !ok {
		return nil, newError(ErrHook, msgHookNotDocument)
	}
	if s.st.resolved == nil {
		s.st.resolved = make(map[*Document]*Document)
	}
	s.st.resolved[doc] = r
	s.st.hooked++
	return r, nil
}

func (s *serializer[S]) enter() error {
	s.depth++
	if s.depth > s.st.maxDepth {
		return newError(ErrArgument, msgMaxDepthEncode, s.st.maxDepth)
	}
	return nil
}

func (s *serializer[S]) serializeDocument(doc *Document) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer func() { s.depth-- }()

	doc, err := s.resolve(doc)
	if err != nil {
		return err
	}

	slot := s.sink.beginSize()
	for i := 0; i < doc.Len(); i++ {
		e := doc.elems[i]
		if s.st.checkKeys {
			if err := ValidateKey(e.Key); err != nil {
				return err
			}
		}
		if _, ok := e.Value.(Function); ok && !s.st.serializeFunctions {
			continue
		}
		if !isValidCString(e.Key) {
			return newError(ErrArgument, "key %q contains a null byte", e.Key)
		}

		typ := s.sink.beginType()
		s.sink.writeCString(e.Key)
		if err := s.serializeValue(typ, e.Value); err != nil {
			return s.unwind(err, e.Key)
		}
	}
	s.sink.writeByte(0x00)
	s.sink.commitSize(slot)
	return nil
}

func (s *serializer[S]) serializeArray(arr Array) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer func() { s.depth-- }()

	slot := s.sink.beginSize()
	for i, v := range arr {
		if _, ok := v.(Function); ok && !s.st.serializeFunctions {
			continue
		}

		typ := s.sink.beginType()
		s.sink.writeIndex(i)
		if err := s.serializeValue(typ, v); err != nil {
			return s.unwind(err, strconv.Itoa(i))
		}
	}
	s.sink.writeByte(0x00)
	s.sink.commitSize(slot)
	return nil
}

// serializeDBRef writes ref as a $ref, $id and optional $db document. Keys are not checked.
func (s *serializer[S]) serializeDBRef(ref DBRef) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer func() { s.depth-- }()

	slot := s.sink.beginSize()

	typ := s.sink.beginType()
	s.sink.writeCString("$ref")
	s.sink.commitType(typ, bsontype.String)
	s.sink.writeString(ref.Ref)

	typ = s.sink.beginType()
	s.sink.writeCString("$id")
	if err := s.serializeValue(typ, ref.ID); err != nil {
		return s.unwind(err, "$id")
	}

	if ref.DB != "" {
		typ = s.sink.beginType()
		s.sink.writeCString("$db")
		s.sink.commitType(typ, bsontype.String)
		s.sink.writeString(ref.DB)
	}

	s.sink.writeByte(0x00)
	s.sink.commitSize(slot)
	return nil
}

// serializeValue commits the type slot typ and writes the payload of v.
func (s *serializer[S]) serializeValue(typ int32, v Value) error {
	switch tv := v.(type) {
	case nil, Null, Undefined:
		s.sink.commitType(typ, bsontype.Null)
	case Boolean:
		s.sink.commitType(typ, bsontype.Boolean)
		s.sink.writeBool(bool(tv))
	case Int32:
		s.sink.commitType(typ, bsontype.Int32)
		s.sink.writeInt32(int32(tv))
	case Double:
		if i32, ok := fitsInt32(float64(tv)); ok {
			s.sink.commitType(typ, bsontype.Int32)
			s.sink.writeInt32(i32)
			break
		}
		s.sink.commitType(typ, bsontype.Double)
		s.sink.writeDouble(float64(tv))
	case WrappedDouble:
		s.sink.commitType(typ, bsontype.Double)
		s.sink.writeDouble(float64(tv))
	case Long:
		s.sink.commitType(typ, bsontype.Int64)
		s.sink.writeInt32(tv.Low)
		s.sink.writeInt32(tv.High)
	case String:
		s.sink.commitType(typ, bsontype.String)
		s.sink.writeString(string(tv))
	case Symbol:
		s.sink.commitType(typ, bsontype.Symbol)
		s.sink.writeString(string(tv))
	case *Document:
		s.sink.commitType(typ, bsontype.EmbeddedDocument)
		return s.serializeDocument(tv)
	case Array:
		s.sink.commitType(typ, bsontype.Array)
		return s.serializeArray(tv)
	case Binary:
		if len(tv.Data) > math.MaxInt32 {
			return newError(ErrArgument, "binary data of %d bytes is too large", len(tv.Data))
		}
		s.sink.commitType(typ, bsontype.Binary)
		s.sink.writeInt32(int32(len(tv.Data)))
		s.sink.writeByte(tv.Subtype)
		if tv.Subtype == bsontype.BinaryBinaryOld {
			s.sink.writeInt32(int32(len(tv.Data)))
		}
		s.sink.writeBytes(tv.Data)
	case DateTime:
		s.sink.commitType(typ, bsontype.DateTime)
		s.sink.writeInt64(int64(tv))
	case Regex:
		if !isValidCString(tv.Pattern) {
			return newError(ErrArgument, "regex pattern %q contains a null byte", tv.Pattern)
		}
		s.sink.commitType(typ, bsontype.Regex)
		s.sink.writeCString(tv.Pattern)
		s.sink.writeCString(tv.Flags.String())
	case JavaScript:
		s.sink.commitType(typ, bsontype.JavaScript)
		s.sink.writeString(string(tv))
	case Function:
		s.sink.commitType(typ, bsontype.JavaScript)
		s.sink.writeString(tv.Source)
	case CodeWithScope:
		scope := tv.Scope
		if scope != nil {
			var err error
			if scope, err = s.resolve(scope); err != nil {
				return err
			}
		}
		if scope.Len() == 0 {
			s.sink.commitType(typ, bsontype.JavaScript)
			s.sink.writeString(tv.Code)
			break
		}
		s.sink.commitType(typ, bsontype.CodeWithScope)
		slot := s.sink.beginSize()
		s.sink.writeString(tv.Code)
		if err := s.serializeDocument(tv.Scope); err != nil {
			return err
		}
		s.sink.commitSize(slot)
	case ObjectID:
		s.sink.commitType(typ, bsontype.ObjectID)
		s.sink.writeObjectID(tv)
	case Timestamp:
		s.sink.commitType(typ, bsontype.Timestamp)
		s.sink.writeInt32(int32(tv.I))
		s.sink.writeInt32(int32(tv.T))
	case DBRef:
		s.sink.commitType(typ, bsontype.EmbeddedDocument)
		return s.serializeDBRef(tv)
	case MinKey:
		s.sink.commitType(typ, bsontype.MinKey)
	case MaxKey:
		s.sink.commitType(typ, bsontype.MaxKey)
	default:
		return newError(ErrArgument, "unsupported value type %T", v)
	}
	return nil
}

// maxPathLength bounds the rendered element path of an error message.
const maxPathLength = 256

// joinPath renders an innermost-first key path as a dotted outermost-first string.
func joinPath(rev []string) string {
	path := make([]string, len(rev))
	for i, k := range rev {
		path[len(rev)-1-i] = k
	}
	p := strings.Join(path, ".")
	if len(p) > maxPathLength {
		p = "..." + p[len(p)-maxPathLength:]
	}
	return p
}
