// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		key string
		err string
	}{
		{"", ""},
		{"a", ""},
		{"a$", ""},
		{"$a", "key $a must not start with '$'"},
		{"$", "key $ must not start with '$'"},
		{"a.b", "key a.b must not contain '.'"},
		{".", "key . must not contain '.'"},
		{"$a.b", "key $a.b must not start with '$'"},
	}

	for _, tc := range testCases {
		err := ValidateKey(tc.key)
		if tc.err == "" {
			assert.NoError(t, err, "key %q", tc.key)
			continue
		}
		assert.EqualError(t, err, tc.err)
		assert.True(t, errors.Is(err, ErrKeyConstraint))
	}
}

func TestIsValidCString(t *testing.T) {
	t.Parallel()

	assert.True(t, isValidCString(""))
	assert.True(t, isValidCString("abc"))
	assert.False(t, isValidCString("a\x00b"))
}
