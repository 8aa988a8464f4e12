// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

// Element is a key/value pair of a Document.
type Element struct {
	Key   string
	Value Value
}

// E is shorthand for Element{Key: key, Value: val}.
func E(key string, val Value) Element {
	return Element{Key: key, Value: val}
}

// Hook is an override-serialization hook. The returned value is serialized in place of the
// document that carries the hook and must be a *Document.
type Hook func() (Value, error)

// Document is an ordered mapping of unique string keys to values. The zero value is an empty
// document ready to use. A nil *Document reads as empty.
type Document struct {
	elems []Element
	index map[string]int
	hook  Hook
}

// NewDocument creates a document holding elems. A repeated key replaces the value of its first
// occurrence.
func NewDocument(elems ...Element) *Document {
	d := &Document{elems: make([]Element, 0, len(elems))}
	return d.Append(elems...)
}

// Append adds elems in order. A key that is already present keeps its position and takes the new
// value.
func (d *Document) Append(elems ...Element) *Document {
	for _, e := range elems {
		d.Set(e.Key, e.Value)
	}
	return d
}

// Set replaces the value of key in place, or appends key when it is absent.
func (d *Document) Set(key string, val Value) *Document {
	if i, ok := d.lookupIndex(key); ok {
		d.elems[i].Value = val
		return d
	}
	if d.index == nil {
		d.index = make(map[string]int, len(d.elems)+1)
		for i, e := range d.elems {
			d.index[e.Key] = i
		}
	}
	d.index[key] = len(d.elems)
	d.elems = append(d.elems, Element{Key: key, Value: val})
	return d
}

// Lookup returns the value stored under key.
func (d *Document) Lookup(key string) (Value, bool) {
	i, ok := d.lookupIndex(key)
	if !ok {
		return nil, false
	}
	return d.elems[i].Value, true
}

// Delete removes key and reports whether it was present.
func (d *Document) Delete(key string) bool {
	i, ok := d.lookupIndex(key)
	if !ok {
		return false
	}
	d.elems = append(d.elems[:i], d.elems[i+1:]...)
	delete(d.index, key)
	for j := i; j < len(d.elems); j++ {
		d.index[d.elems[j].Key] = j
	}
	return true
}

func (d *Document) lookupIndex(key string) (int, bool) {
	if d == nil {
		return 0, false
	}
	if d.index == nil {
		for i, e := range d.elems {
			if e.Key == key {
				return i, true
			}
		}
		return 0, false
	}
	i, ok := d.index[key]
	return i, ok
}

// Len returns the number of elements.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.elems)
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, d.Len())
	for _, e := range d.Elements() {
		keys = append(keys, e.Key)
	}
	return keys
}

// Elements returns a copy of the elements in insertion order.
func (d *Document) Elements() []Element {
	if d == nil {
		return nil
	}
	return append([]Element(nil), d.elems...)
}

// Index returns the element at position i. It panics if i is out of range.
func (d *Document) Index(i int) Element {
	return d.elems[i]
}

// SetHook attaches an override-serialization hook. A nil h removes it.
func (d *Document) SetHook(h Hook) *Document {
	d.hook = h
	return d
}

// Hook returns the attached override-serialization hook, if any.
func (d *Document) Hook() Hook {
	if d == nil {
		return nil
	}
	return d.hook
}

// Equal compares keys and values in order. Hooks are not compared. A nil document equals an empty
// one.
func (d *Document) Equal(d2 *Document) bool {
	if d.Len() != d2.Len() {
		return false
	}
	for i := 0; i < d.Len(); i++ {
		e1, e2 := d.elems[i], d2.elems[i]
		if e1.Key != e2.Key || !Equal(e1.Value, e2.Value) {
			return false
		}
	}
	return true
}
