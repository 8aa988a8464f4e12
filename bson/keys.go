// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import "strings"

// ValidateKey returns a KeyConstraintError when key starts with '$' or contains '.'. The empty key
// is valid.
func ValidateKey(key string) error {
	if key == "" {
		return nil
	}
	if key[0] == '$' {
		return newError(ErrKeyConstraint, "key %s must not start with '$'", key)
	}
	if strings.IndexByte(key, '.') >= 0 {
		return newError(ErrKeyConstraint, "key %s must not contain '.'", key)
	}
	return nil
}

// isValidCString reports whether cs can be written as a null terminated string.
func isValidCString(cs string) bool {
	return strings.IndexByte(cs, 0x00) == -1
}
