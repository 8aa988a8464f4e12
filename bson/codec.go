// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ikmak/bsonnative/bson/bsonoptions"
	"github.com/ikmak/bsonnative/internal/logger"
	"github.com/ikmak/bsonnative/x/bsonx/bsoncore"
)

// Codec encodes and decodes documents. A Codec holds no per-call state and is safe for
// concurrent use.
type Codec struct {
	cons   Constructors
	logger *logger.Logger
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithLogger sets the logger a Codec reports encode and decode activity to.
func WithLogger(l *logger.Logger) CodecOption {
	return func(c *Codec) { c.logger = l }
}

// NewCodec creates a Codec that rebuilds extended types with cons. Every constructor must be set.
func NewCodec(cons Constructors, opts ...CodecOption) (*Codec, error) {
	if missing := cons.missing(); len(missing) > 0 {
		return nil, newError(ErrConfiguration, msgMissingConstructors, strings.Join(missing, "/"))
	}

	c := &Codec{cons: cons}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var defaultCodec = &Codec{cons: DefaultConstructors()}

func newEncodeState(opts []*bsonoptions.EncodeOptions) *encodeState {
	checkKeys, serializeFunctions, maxDepth := bsonoptions.MergeEncodeOptions(opts...).Resolve()
	return &encodeState{
		checkKeys:          checkKeys,
		serializeFunctions: serializeFunctions,
		maxDepth:           maxDepth,
	}
}

// count runs the counting pass.
func (st *encodeState) count(doc Value) (int, error) {
	sc := &sizeCounter{}
	if err := newSerializer(sc, st).serializeTop(doc); err != nil {
		return 0, err
	}
	if sc.size() > math.MaxInt32 {
		return 0, newError(ErrArgument, "document of %d bytes exceeds the maximum encodable size", sc.size())
	}
	return sc.size(), nil
}

// emit runs the emitting pass into buf, which must be exactly the size the counting pass
// returned.
func (st *encodeState) emit(doc Value, buf []byte) error {
	be := newByteEmitter(buf)
	if err := newSerializer(be, st).serializeTop(doc); err != nil {
		return err
	}
	if be.size() != len(buf) || (len(buf) > 0 && &be.dst[0] != &buf[0]) {
		panic(fmt.Sprintf("bson: serializer wrote %d bytes after counting %d", be.size(), len(buf)))
	}
	return nil
}

// CalculateSize returns the number of bytes Serialize would produce for doc. Key checking does not
// apply to the size pass.
func (c *Codec) CalculateSize(doc Value, opts ...*bsonoptions.EncodeOptions) (uint32, error) {
	st := newEncodeState(opts)
	st.checkKeys = false

	n, err := st.count(doc)
	if err != nil {
		c.logFailure(logger.ComponentEncode, "calculate size failed", err)
		return 0, err
	}
	return uint32(n), nil
}

// Serialize encodes doc, which must be a *Document or a DBRef, into a new buffer of exactly the
// encoded size.
func (c *Codec) Serialize(doc Value, opts ...*bsonoptions.EncodeOptions) ([]byte, error) {
	start := time.Now()
	st := newEncodeState(opts)

	n, err := st.count(doc)
	if err != nil {
		c.logFailure(logger.ComponentEncode, "serialize failed", err)
		return nil, err
	}

	buf := make([]byte, n)
	if err := st.emit(doc, buf); err != nil {
		c.logFailure(logger.ComponentEncode, "serialize failed", err)
		return nil, err
	}

	c.logEncode("serialized document", st, n, start)
	return buf, nil
}

// SerializeInto encodes doc into dst starting at offset and returns the offset just past the last
// byte written. When the encoded document does not fit, an OverflowError is returned and dst is
// left untouched.
func (c *Codec) SerializeInto(doc Value, dst []byte, offset int, opts ...*bsonoptions.EncodeOptions) (int, error) {
	start := time.Now()
	if offset < 0 || offset > len(dst) {
		err := newOverflowError("%s: offset %d outside buffer of %d bytes", msgOverflow, offset, len(dst))
		c.logFailure(logger.ComponentEncode, "serialize into failed", err)
		return 0, err
	}

	st := newEncodeState(opts)
	n, err := st.count(doc)
	if err != nil {
		c.logFailure(logger.ComponentEncode, "serialize into failed", err)
		return 0, err
	}
	if n > len(dst)-offset {
		err := newOverflowError("%s: need %d bytes at offset %d, buffer has %d", msgOverflow, n, offset, len(dst))
		c.logFailure(logger.ComponentEncode, "serialize into failed", err)
		return 0, err
	}

	if err := st.emit(doc, dst[offset:offset+n]); err != nil {
		c.logFailure(logger.ComponentEncode, "serialize into failed", err)
		return 0, err
	}

	c.logEncode("serialized document into buffer", st, n, start, logger.KeyOffset, offset)
	return offset + n, nil
}

func (c *Codec) newDecoder(opts []*bsonoptions.DecodeOptions) *decoder {
	promoteLongs, maxDepth := bsonoptions.MergeDecodeOptions(opts...).Resolve()
	return &decoder{cons: &c.cons, promoteLongs: promoteLongs, maxDepth: maxDepth}
}

// Deserialize decodes the document at the start of b. The result is a *Document, or whatever the
// DBRef constructor returns when the document holds "$id". Bytes after the document are ignored.
func (c *Codec) Deserialize(b []byte, opts ...*bsonoptions.DecodeOptions) (Value, error) {
	if len(b) < bsoncore.EmptyDocumentLength {
		err := newError(ErrStructuralDecode, msgTooShort)
		c.logFailure(logger.ComponentDecode, "deserialize failed", err)
		return nil, err
	}

	v, n, err := c.newDecoder(opts).decodeTop(b)
	if err != nil {
		c.logFailure(logger.ComponentDecode, "deserialize failed", err)
		return nil, err
	}

	c.logger.Print(logger.LevelDebug, logger.ComponentDecode, "deserialized document", logger.KeySize, n)
	return v, nil
}

// DeserializeString decodes a document carried in a binary string, one wire byte per string
// byte.
func (c *Codec) DeserializeString(s string, opts ...*bsonoptions.DecodeOptions) (Value, error) {
	return c.Deserialize([]byte(s), opts...)
}

// DeserializeStream decodes count consecutive documents starting at offset in b and stores them in
// out[outIndex:]. It returns the offset just past the last decoded document. On error out is left
// untouched.
func (c *Codec) DeserializeStream(b []byte, offset, count int, out []Value, outIndex int, opts ...*bsonoptions.DecodeOptions) (int, error) {
	if err := checkStreamArgs(len(b), offset, count, len(out), outIndex); err != nil {
		c.logFailure(logger.ComponentDecode, "deserialize stream failed", err)
		return 0, err
	}

	d := c.newDecoder(opts)
	docs := make([]Value, count)
	pos := offset
	for i := 0; i < count; i++ {
		v, n, err := d.decodeTop(b[pos:])
		if err != nil {
			c.logFailure(logger.ComponentDecode, "deserialize stream failed", err, logger.KeyOffset, pos)
			return 0, err
		}
		docs[i] = v
		pos += n
	}
	copy(out[outIndex:], docs)

	c.logger.Print(logger.LevelDebug, logger.ComponentDecode, "deserialized stream",
		logger.KeyDocuments, count, logger.KeyOffset, pos)
	return pos, nil
}

func checkStreamArgs(bufLen, offset, count, outLen, outIndex int) error {
	switch {
	case offset < 0 || offset > bufLen:
		return newError(ErrArgument, "offset %d outside buffer of %d bytes", offset, bufLen)
	case count < 0:
		return newError(ErrArgument, "document count %d must not be negative", count)
	case outIndex < 0 || outIndex > outLen || count > outLen-outIndex:
		return newError(ErrArgument, "cannot store %d documents at index %d of %d results", count, outIndex, outLen)
	default:
		return nil
	}
}

func (c *Codec) logEncode(msg string, st *encodeState, size int, start time.Time, kv ...interface{}) {
	if !c.logger.LevelComponentEnabled(logger.LevelDebug, logger.ComponentEncode) {
		return
	}
	kvs := logger.KeyValues{}
	kvs.Add(logger.KeySize, size)
	kvs.Add(logger.KeyDurationMS, time.Since(start).Milliseconds())
	if st.hooked > 0 {
		kvs.Add(keyHooks, st.hooked)
	}
	kvs = append(kvs, kv...)
	c.logger.Print(logger.LevelDebug, logger.ComponentEncode, msg, kvs...)
}

func (c *Codec) logFailure(component logger.Component, msg string, err error, kv ...interface{}) {
	if !c.logger.LevelComponentEnabled(logger.LevelDebug, component) {
		return
	}
	kvs := logger.KeyValues{}
	kvs.Add(logger.KeyErrorKind, KindOf(err).String())
	kvs.Add(logger.KeyFailure, logger.Truncate(err.Error(), c.logger.MaxDocumentLength))
	kvs = append(kvs, kv...)
	c.logger.Print(logger.LevelDebug, component, msg, kvs...)
}

const keyHooks = "hooks"

// CalculateSize returns the encoded size of doc using the default constructors.
func CalculateSize(doc Value, opts ...*bsonoptions.EncodeOptions) (uint32, error) {
	return defaultCodec.CalculateSize(doc, opts...)
}

// Serialize encodes doc using the default constructors.
func Serialize(doc Value, opts ...*bsonoptions.EncodeOptions) ([]byte, error) {
	return defaultCodec.Serialize(doc, opts...)
}

// SerializeInto encodes doc into dst at offset using the default constructors.
func SerializeInto(doc Value, dst []byte, offset int, opts ...*bsonoptions.EncodeOptions) (int, error) {
	return defaultCodec.SerializeInto(doc, dst, offset, opts...)
}

// Deserialize decodes a document using the default constructors.
func Deserialize(b []byte, opts ...*bsonoptions.DecodeOptions) (Value, error) {
	return defaultCodec.Deserialize(b, opts...)
}

// DeserializeString decodes a binary string document using the default constructors.
func DeserializeString(s string, opts ...*bsonoptions.DecodeOptions) (Value, error) {
	return defaultCodec.DeserializeString(s, opts...)
}

// DeserializeStream decodes consecutive documents using the default constructors.
func DeserializeStream(b []byte, offset, count int, out []Value, outIndex int, opts ...*bsonoptions.DecodeOptions) (int, error) {
	return defaultCodec.DeserializeStream(b, offset, count, out, outIndex, opts...)
}
