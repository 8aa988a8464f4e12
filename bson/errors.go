// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-stack/stack"
)

// ErrorKind classifies every error returned by a Codec.
type ErrorKind int

// These constants are the kinds of error a Codec can return.
const (
	// ErrConfiguration means a codec was built without the full constructor set.
	ErrConfiguration ErrorKind = iota + 1
	// ErrArgument means an entry point received an argument it cannot work with.
	ErrArgument
	// ErrKeyConstraint means a key started with '$' or contained '.' while key checking was on.
	ErrKeyConstraint
	// ErrStructuralDecode means the input bytes are not a well formed document.
	ErrStructuralDecode
	// ErrOverflow means the destination of SerializeInto is too small.
	ErrOverflow
	// ErrHook means an override-serialization hook failed or returned a non-document.
	ErrHook
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConfiguration:
		return "ConfigurationError"
	case ErrArgument:
		return "ArgumentError"
	case ErrKeyConstraint:
		return "KeyConstraintError"
	case ErrStructuralDecode:
		return "StructuralDecodeError"
	case ErrOverflow:
		return "OverflowError"
	case ErrHook:
		return "HookError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error implements the error interface so a kind can be used as an errors.Is target.
func (k ErrorKind) Error() string { return k.String() }

// Error is the error type returned by every Codec operation.
type Error struct {
	Kind    ErrorKind
	Message string

	// Err is the underlying error, set when a hook fails.
	Err error

	// Stack is only captured for overflow errors.
	Stack stack.CallStack
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg}
}

func newOverflowError(format string, args ...interface{}) *Error {
	e := newError(ErrOverflow, format, args...)
	e.Stack = stack.Trace().TrimRuntime()
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind, or an *Error of the same kind with either the
// same message or no message.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorKind:
		return e.Kind == t
	case *Error:
		return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
	default:
		return false
	}
}

// ErrorStack returns a string representing the stack at the point where the error occurred.
func (e *Error) ErrorStack() string {
	s := bytes.NewBufferString(e.Message)
	s.WriteString(": [")

	for i, call := range e.Stack {
		if i != 0 {
			s.WriteString(", ")
		}

		// go vet doesn't like %k even though it's part of stack's API, so we move the format
		// string so it doesn't complain. (We also can't make it a constant, or go vet still
		// complains.)
		callFormat := "%k.%n %v"

		s.WriteString(fmt.Sprintf(callFormat, call, call, call))
	}

	s.WriteRune(']')

	return s.String()
}

// IsKind reports whether err, or any error it wraps, is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// KindOf returns the kind of the *Error wrapped by err, or zero if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Decode error messages.
const (
	msgTooShort            = "corrupt bson message < 5 bytes long"
	msgDocumentTooShort    = "Bad BSON: Document is less than 5 bytes"
	msgArrayTooShort       = "Bad BSON: Array Document is less than 5 bytes"
	msgMissingTerminator   = "Missing end of document marker '\\0'"
	msgExceedsParent       = "Child document exceeds parent's bounds"
	msgInvalidArrayKey     = "Invalid key for array"
	msgDocumentConsumed    = "Bad BSON Document: Serialize consumed unexpected number of bytes"
	msgArrayConsumed       = "Bad BSON Array: Serialize consumed unexpected number of bytes"
	msgUnhandledType       = "Unhandled BSON Type: %d"
	msgTruncatedValue      = "Bad BSON: %s value is truncated or malformed"
	msgMaxDepthDecode      = "Bad BSON: document nesting exceeds maximum depth of %d"
	msgHookNotDocument     = "toBSON function did not return an object"
	msgNonObjectSerialize  = "non-object passed to serialize"
	msgMaxDepthEncode      = "document nesting exceeds maximum depth of %d"
	msgOverflow            = "Serious error - overflowed buffer!!"
	msgMissingConstructors = "Missing function constructor for either [Long/ObjectID/Binary/Code/DbRef/Symbol/Double/Timestamp/MinKey/MaxKey]: missing %s"
)
