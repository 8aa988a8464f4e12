// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ikmak/bsonnative/bson"
	"github.com/ikmak/bsonnative/bson/bsonoptions"
	"github.com/ikmak/bsonnative/internal/logger"
	"github.com/ikmak/bsonnative/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestNewCodec(t *testing.T) {
	t.Parallel()

	t.Run("default constructors", func(t *testing.T) {
		t.Parallel()

		c, err := bson.NewCodec(bson.DefaultConstructors())
		require.NoError(t, err)
		require.NotNil(t, c)
	})
	t.Run("missing constructors", func(t *testing.T) {
		t.Parallel()

		cons := bson.DefaultConstructors()
		cons.Symbol = nil
		cons.Timestamp = nil

		c, err := bson.NewCodec(cons)
		require.Error(t, err)
		assert.Nil(t, c)
		assert.True(t, bson.IsKind(err, bson.ErrConfiguration))
		assert.EqualError(t, err, "Missing function constructor for either "+
			"[Long/ObjectID/Binary/Code/DbRef/Symbol/Double/Timestamp/MinKey/MaxKey]: missing Symbol/Timestamp")
	})
	t.Run("empty constructors", func(t *testing.T) {
		t.Parallel()

		_, err := bson.NewCodec(bson.Constructors{})
		assert.True(t, errors.Is(err, bson.ErrConfiguration))
	})
}

func TestCodecConstructors(t *testing.T) {
	t.Parallel()

	cons := bson.DefaultConstructors()
	cons.Double = func(f float64) bson.Value { return bson.WrappedDouble(f) }
	cons.ObjectID = func(id [12]byte) bson.Value { return bson.String(bson.ObjectID(id).Hex()) }
	cons.MinKey = func() bson.Value { return bson.String("min") }
	cons.DBRef = func(ref, id, db bson.Value) bson.Value {
		return bson.NewDocument(bson.E("ref", ref), bson.E("id", id))
	}

	c, err := bson.NewCodec(cons)
	require.NoError(t, err)

	oid := testutil.ObjectID("5a934e000102030405000000")
	doc := bson.NewDocument(
		bson.E("d", bson.WrappedDouble(5)),
		bson.E("l", bson.NewLong(7)),
		bson.E("oid", oid),
		bson.E("min", bson.MinKey{}),
		bson.E("ref", bson.DBRef{Ref: "c", ID: bson.Int32(1)}),
	)
	b, err := c.Serialize(doc)
	require.NoError(t, err)

	got, err := c.Deserialize(b)
	require.NoError(t, err)

	want := bson.NewDocument(
		bson.E("d", bson.WrappedDouble(5)),
		bson.E("l", bson.WrappedDouble(7)),
		bson.E("oid", bson.String("5a934e000102030405000000")),
		bson.E("min", bson.String("min")),
		bson.E("ref", bson.NewDocument(bson.E("ref", bson.String("c")), bson.E("id", bson.Int32(1)))),
	)
	assert.True(t, bson.Equal(want, got), "got %s", got)

	// A wrapped double keeps its type when re-encoded.
	again, err := c.Serialize(got)
	require.NoError(t, err)
	d, err := c.Deserialize(again)
	require.NoError(t, err)
	v, _ := d.(*bson.Document).Lookup("d")
	assert.Equal(t, bson.WrappedDouble(5), v)
}

func TestCodecConcurrentUse(t *testing.T) {
	t.Parallel()

	c, err := bson.NewCodec(bson.DefaultConstructors())
	require.NoError(t, err)

	doc := testutil.FlatDocument(50)
	want, err := c.Serialize(doc)
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for j := 0; j < 50; j++ {
				b, err := c.Serialize(doc)
				if err != nil {
					return err
				}
				if !bytes.Equal(want, b) {
					return errors.New("concurrent encode produced different bytes")
				}
				v, err := c.Deserialize(b)
				if err != nil {
					return err
				}
				if !bson.Equal(v, doc) {
					return errors.New("concurrent decode produced a different document")
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func newTestLogger(t *testing.T) (*logger.Logger, *test.Hook) {
	t.Helper()

	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)

	return &logger.Logger{
		ComponentLevels: map[logger.Component]logger.Level{
			logger.ComponentEncode: logger.LevelDebug,
			logger.ComponentDecode: logger.LevelDebug,
		},
		Sink:              logger.NewLogrusSink(l),
		MaxDocumentLength: 10,
	}, hook
}

func TestCodecLogging(t *testing.T) {
	t.Parallel()

	t.Run("encode", func(t *testing.T) {
		t.Parallel()

		lg, hook := newTestLogger(t)
		c, err := bson.NewCodec(bson.DefaultConstructors(), bson.WithLogger(lg))
		require.NoError(t, err)

		doc := bson.NewDocument().SetHook(func() (bson.Value, error) {
			return bson.NewDocument(bson.E("a", bson.Double(5))), nil
		})
		_, err = c.Serialize(doc)
		require.NoError(t, err)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.DebugLevel, entry.Level)
		assert.Equal(t, "serialized document", entry.Message)
		assert.Equal(t, "encode", entry.Data[logger.KeyComponent])
		assert.Equal(t, 12, entry.Data[logger.KeySize])
		assert.Equal(t, 1, entry.Data["hooks"])
		assert.Contains(t, entry.Data, logger.KeyDurationMS)

		_, err = c.SerializeInto(bson.NewDocument(), make([]byte, 10), 5)
		require.NoError(t, err)
		entry = hook.LastEntry()
		assert.Equal(t, "serialized document into buffer", entry.Message)
		assert.Equal(t, 5, entry.Data[logger.KeyOffset])
		assert.NotContains(t, entry.Data, "hooks")
	})
	t.Run("decode failure", func(t *testing.T) {
		t.Parallel()

		lg, hook := newTestLogger(t)
		c, err := bson.NewCodec(bson.DefaultConstructors(), bson.WithLogger(lg))
		require.NoError(t, err)

		_, err = c.Deserialize([]byte{0x05})
		require.Error(t, err)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, "deserialize failed", entry.Message)
		assert.Equal(t, "decode", entry.Data[logger.KeyComponent])
		assert.Equal(t, "StructuralDecodeError", entry.Data[logger.KeyErrorKind])
		assert.Equal(t, "corrupt bs...", entry.Data[logger.KeyFailure])
	})
	t.Run("stream", func(t *testing.T) {
		t.Parallel()

		lg, hook := newTestLogger(t)
		c, err := bson.NewCodec(bson.DefaultConstructors(), bson.WithLogger(lg))
		require.NoError(t, err)

		buf := testutil.MustHex(t, "05000000 00 05000000 00")
		out := make([]bson.Value, 2)
		_, err = c.DeserializeStream(buf, 0, 2, out, 0)
		require.NoError(t, err)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, "deserialized stream", entry.Message)
		assert.Equal(t, 2, entry.Data[logger.KeyDocuments])
		assert.Equal(t, 10, entry.Data[logger.KeyOffset])
	})
	t.Run("disabled component", func(t *testing.T) {
		t.Parallel()

		lg, hook := newTestLogger(t)
		lg.ComponentLevels[logger.ComponentDecode] = logger.LevelOff
		c, err := bson.NewCodec(bson.DefaultConstructors(), bson.WithLogger(lg))
		require.NoError(t, err)

		_, err = c.Deserialize(testutil.MustHex(t, "05000000 00"))
		require.NoError(t, err)
		assert.Empty(t, hook.AllEntries())
	})
}

func TestCodecOptionsMerge(t *testing.T) {
	t.Parallel()

	doc := bson.NewDocument(bson.E("$a", bson.Int32(1)))

	// Later options win.
	_, err := bson.Serialize(doc, bsonoptions.Encode().SetCheckKeys(true), bsonoptions.Encode().SetCheckKeys(false))
	assert.NoError(t, err)
	_, err = bson.Serialize(doc, bsonoptions.Encode().SetCheckKeys(false), bsonoptions.Encode().SetCheckKeys(true))
	assert.Error(t, err)

	_, err = bson.Serialize(doc, nil)
	assert.NoError(t, err)
}
