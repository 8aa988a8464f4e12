// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import "github.com/ikmak/bsonnative/bson"

// Field is one document element in the Go rendering.
type Field struct {
	Key   string
	Value interface{}
}

// ScopedCode is the Go rendering of bson.CodeWithScope.
type ScopedCode struct {
	Code  string
	Scope []Field
}

// Ref is the Go rendering of bson.DBRef.
type Ref struct {
	Ref string
	ID  interface{}
	DB  string
}

// goValue converts documents to ordered field lists so the Go dump shows keys and values only.
func goValue(v bson.Value) interface{} {
	switch tv := v.(type) {
	case *bson.Document:
		return fields(tv)
	case bson.Array:
		out := make([]interface{}, len(tv))
		for i, elem := range tv {
			out[i] = goValue(elem)
		}
		return out
	case bson.CodeWithScope:
		return ScopedCode{Code: tv.Code, Scope: fields(tv.Scope)}
	case bson.DBRef:
		return Ref{Ref: tv.Ref, ID: goValue(tv.ID), DB: tv.DB}
	default:
		return v
	}
}

func fields(doc *bson.Document) []Field {
	out := make([]Field, 0, doc.Len())
	for _, e := range doc.Elements() {
		out = append(out, Field{Key: e.Key, Value: goValue(e.Value)})
	}
	return out
}
