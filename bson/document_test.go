// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument(t *testing.T) {
	t.Parallel()

	t.Run("set replaces in place", func(t *testing.T) {
		t.Parallel()

		doc := NewDocument(E("a", Int32(1)), E("b", Int32(2)), E("c", Int32(3)))
		doc.Set("b", String("two"))
		assert.Equal(t, []string{"a", "b", "c"}, doc.Keys())

		v, ok := doc.Lookup("b")
		require.True(t, ok)
		assert.Equal(t, String("two"), v)
	})
	t.Run("duplicate keys in constructor", func(t *testing.T) {
		t.Parallel()

		doc := NewDocument(E("a", Int32(1)), E("b", Int32(2)), E("a", Int32(3)))
		assert.Equal(t, 2, doc.Len())
		assert.Equal(t, Element{Key: "a", Value: Int32(3)}, doc.Index(0))
	})
	t.Run("delete reindexes", func(t *testing.T) {
		t.Parallel()

		doc := NewDocument(E("a", Int32(1)), E("b", Int32(2)), E("c", Int32(3)))
		assert.True(t, doc.Delete("a"))
		assert.False(t, doc.Delete("a"))
		assert.Equal(t, []string{"b", "c"}, doc.Keys())

		v, ok := doc.Lookup("c")
		require.True(t, ok)
		assert.Equal(t, Int32(3), v)

		doc.Set("a", Int32(4))
		assert.Equal(t, []string{"b", "c", "a"}, doc.Keys())
	})
	t.Run("zero value", func(t *testing.T) {
		t.Parallel()

		var doc Document
		doc.Set("a", Null{})
		_, ok := doc.Lookup("a")
		assert.True(t, ok)
		_, ok = doc.Lookup("b")
		assert.False(t, ok)
	})
	t.Run("nil document", func(t *testing.T) {
		t.Parallel()

		var doc *Document
		assert.Equal(t, 0, doc.Len())
		assert.Empty(t, doc.Keys())
		assert.Nil(t, doc.Elements())
		assert.Nil(t, doc.Hook())
		_, ok := doc.Lookup("a")
		assert.False(t, ok)
	})
	t.Run("elements are a copy", func(t *testing.T) {
		t.Parallel()

		doc := NewDocument(E("a", Int32(1)))
		elems := doc.Elements()
		elems[0].Value = Int32(2)

		v, _ := doc.Lookup("a")
		assert.Equal(t, Int32(1), v)
	})
	t.Run("hooks are not compared", func(t *testing.T) {
		t.Parallel()

		a := NewDocument(E("a", Int32(1)))
		b := NewDocument(E("a", Int32(1))).SetHook(func() (Value, error) { return NewDocument(), nil })
		assert.True(t, a.Equal(b))
	})
}
