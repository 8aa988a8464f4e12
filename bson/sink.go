// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strconv"

	"github.com/ikmak/bsonnative/bson/bsontype"
	"github.com/ikmak/bsonnative/x/bsonx/bsoncore"
)

// writeSink is the primitive set the serializer writes through. sizeCounter only counts bytes and
// byteEmitter writes them, so running the same traversal over both yields a size and then exactly
// that many bytes.
//
// Type and size slots are written in two steps: begin reserves the slot and returns its position,
// commit fills it once the value is known.
type writeSink interface {
	writeByte(b byte)
	writeBool(b bool)
	writeInt32(i int32)
	writeInt64(i int64)
	writeDouble(f float64)
	// writeString writes an int32 length, the bytes of s and a terminating null.
	writeString(s string)
	// writeCString writes the bytes of s and a terminating null.
	writeCString(s string)
	// writeIndex writes i as a decimal array key.
	writeIndex(i int)
	writeBytes(b []byte)
	writeObjectID(id [12]byte)
	beginType() int32
	commitType(slot int32, t bsontype.Type)
	beginSize() int32
	commitSize(slot int32)
	size() int
}

type sizeCounter struct {
	n int
}

var _ writeSink = (*sizeCounter)(nil)

func (sc *sizeCounter) writeByte(byte)                  { sc.n++ }
func (sc *sizeCounter) writeBool(bool)                  { sc.n++ }
func (sc *sizeCounter) writeInt32(int32)                { sc.n += 4 }
func (sc *sizeCounter) writeInt64(int64)                { sc.n += 8 }
func (sc *sizeCounter) writeDouble(float64)             { sc.n += 8 }
func (sc *sizeCounter) writeString(s string)            { sc.n += 4 + len(s) + 1 }
func (sc *sizeCounter) writeCString(s string)           { sc.n += len(s) + 1 }
func (sc *sizeCounter) writeIndex(i int)                { sc.n += digits(i) + 1 }
func (sc *sizeCounter) writeBytes(b []byte)             { sc.n += len(b) }
func (sc *sizeCounter) writeObjectID([12]byte)          { sc.n += 12 }
func (sc *sizeCounter) commitType(int32, bsontype.Type) {}
func (sc *sizeCounter) commitSize(int32)                {}
func (sc *sizeCounter) size() int                       { return sc.n }

func (sc *sizeCounter) beginType() int32 {
	sc.n++
	return 0
}

func (sc *sizeCounter) beginSize() int32 {
	sc.n += 4
	return 0
}

func digits(i int) int {
	n := 1
	for i >= 10 {
		i /= 10
		n++
	}
	return n
}

// byteEmitter appends into dst. dst starts empty with exactly the capacity computed by the
// counting pass, so a well behaved traversal never reallocates.
type byteEmitter struct {
	dst []byte
}

var _ writeSink = (*byteEmitter)(nil)

func newByteEmitter(buf []byte) *byteEmitter {
	return &byteEmitter{dst: buf[:0:len(buf)]}
}

func (be *byteEmitter) writeByte(b byte)          { be.dst = append(be.dst, b) }
func (be *byteEmitter) writeBool(b bool)          { be.dst = bsoncore.AppendBoolean(be.dst, b) }
func (be *byteEmitter) writeInt32(i int32)        { be.dst = bsoncore.AppendInt32(be.dst, i) }
func (be *byteEmitter) writeInt64(i int64)        { be.dst = bsoncore.AppendInt64(be.dst, i) }
func (be *byteEmitter) writeDouble(f float64)     { be.dst = bsoncore.AppendDouble(be.dst, f) }
func (be *byteEmitter) writeString(s string)      { be.dst = bsoncore.AppendString(be.dst, s) }
func (be *byteEmitter) writeCString(s string)     { be.dst = bsoncore.AppendKey(be.dst, s) }
func (be *byteEmitter) writeBytes(b []byte)       { be.dst = append(be.dst, b...) }
func (be *byteEmitter) writeObjectID(id [12]byte) { be.dst = bsoncore.AppendObjectID(be.dst, id) }
func (be *byteEmitter) size() int                 { return len(be.dst) }

func (be *byteEmitter) writeIndex(i int) {
	be.dst = append(strconv.AppendInt(be.dst, int64(i), 10), 0x00)
}

func (be *byteEmitter) beginType() int32 {
	var slot int32
	slot, be.dst = bsoncore.ReserveType(be.dst)
	return slot
}

func (be *byteEmitter) commitType(slot int32, t bsontype.Type) {
	be.dst = bsoncore.UpdateType(be.dst, slot, t)
}

func (be *byteEmitter) beginSize() int32 {
	var slot int32
	slot, be.dst = bsoncore.ReserveLength(be.dst)
	return slot
}

func (be *byteEmitter) commitSize(slot int32) {
	be.dst = bsoncore.UpdateLength(be.dst, slot, int32(len(be.dst))-slot)
}
