// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ikmak/bsonnative/bson"
	"github.com/ikmak/bsonnative/internal/testutil"
)

const (
	flatFields  = 145
	deepLevels  = 64
	streamBatch = 16
)

// source holds a fixture document and its encoding.
type source struct {
	doc *bson.Document
	raw []byte
}

func newSource(doc *bson.Document) source {
	raw, err := bson.Serialize(doc)
	if err != nil {
		panic(fmt.Sprintf("benchmark fixture does not encode: %v", err))
	}
	return source{doc: doc, raw: raw}
}

var (
	flatSource = sync.OnceValue(func() source { return newSource(testutil.FlatDocument(flatFields)) })
	deepSource = sync.OnceValue(func() source { return newSource(testutil.DeepDocument(deepLevels)) })
)

func flatSize() int { return len(flatSource().raw) }
func deepSize() int { return len(deepSource().raw) }

func CanaryIncCase(ctx context.Context, tm TimerManager, iters int) error {
	var canaryCount int
	for i := 0; i < iters; i++ {
		canaryCount++
	}
	return nil
}

func CalculateSizeFlat(ctx context.Context, tm TimerManager, iters int) error {
	src := flatSource()
	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		n, err := bson.CalculateSize(src.doc)
		if err != nil {
			return err
		}
		if int(n) != len(src.raw) {
			return errors.New("size mismatch")
		}
	}
	return nil
}

func serializeCase(src source, tm TimerManager, iters int) error {
	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.Serialize(src.doc)
		if err != nil {
			return err
		}
		if len(out) != len(src.raw) {
			return errors.New("marshaling error")
		}
	}
	return nil
}

func SerializeFlat(ctx context.Context, tm TimerManager, iters int) error {
	return serializeCase(flatSource(), tm, iters)
}

func SerializeDeep(ctx context.Context, tm TimerManager, iters int) error {
	return serializeCase(deepSource(), tm, iters)
}

func SerializeIntoFlat(ctx context.Context, tm TimerManager, iters int) error {
	src := flatSource()
	buf := make([]byte, len(src.raw))
	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		end, err := bson.SerializeInto(src.doc, buf, 0)
		if err != nil {
			return err
		}
		if end != len(buf) {
			return errors.New("marshaling error")
		}
	}
	return nil
}

func deserializeCase(src source, tm TimerManager, iters int) error {
	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.Deserialize(src.raw)
		if err != nil {
			return err
		}
		doc, ok := out.(*bson.Document)
		if !ok || doc.Len() != src.doc.Len() {
			return errors.New("document parsing error")
		}
	}
	return nil
}

func DeserializeFlat(ctx context.Context, tm TimerManager, iters int) error {
	return deserializeCase(flatSource(), tm, iters)
}

func DeserializeDeep(ctx context.Context, tm TimerManager, iters int) error {
	return deserializeCase(deepSource(), tm, iters)
}

func DeserializeStreamFlat(ctx context.Context, tm TimerManager, iters int) error {
	src := flatSource()
	buf := make([]byte, 0, streamBatch*len(src.raw))
	for i := 0; i < streamBatch; i++ {
		buf = append(buf, src.raw...)
	}
	out := make([]bson.Value, streamBatch)
	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		end, err := bson.DeserializeStream(buf, 0, streamBatch, out, 0)
		if err != nil {
			return err
		}
		if end != len(buf) {
			return errors.New("stream parsing error")
		}
	}
	return nil
}
