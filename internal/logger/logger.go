// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package logger provides the leveled, per-component logger used by the codec and the command
// line tools. Messages are written synchronously to a LogSink.
package logger

import (
	"os"
	"strconv"
	"strings"
)

// DefaultMaxDocumentLength is the default maximum number of bytes that can be logged for a
// stringified value.
const DefaultMaxDocumentLength = 1000

// TruncationSuffix are trailing ellipsis "..." appended to a message to indicate to the user that
// truncation occurred. This constant does not count toward the max document length.
const TruncationSuffix = "..."

// LogSink represents a logging implementation. The interface mirrors the subset of the logr API
// that the codec needs.
type LogSink interface {
	// Info logs a non-error message with the given key/value pairs. The level argument is provided
	// for optional logging.
	Info(level int, msg string, keysAndValues ...interface{})

	// Error logs an error, with the given message and key/value pairs.
	Error(err error, msg string, keysAndValues ...interface{})
}

// Logger represents the configuration for the internal logger. A nil *Logger is valid and logs
// nothing.
type Logger struct {
	ComponentLevels   map[Component]Level // Log levels for each component.
	Sink              LogSink             // LogSink for log printing.
	MaxDocumentLength uint                // Command truncation width.
}

// New will construct a new logger. If any of the given options are the zero-value of the
// argument type, then the constructor will attempt to source the data from the environment. If
// the environment has not been set, then the constructor will use the respective default values.
func New(sink LogSink, maxDocLen uint, compLevels ...map[Component]Level) *Logger {
	levels := mergeComponentLevels(append([]map[Component]Level{getEnvComponentLevels()}, compLevels...)...)

	logger := &Logger{
		ComponentLevels:   levels,
		MaxDocumentLength: selectMaxDocumentLength(maxDocLen),
		Sink:              sink,
	}
	if logger.Sink == nil {
		logger.Sink = NewIOSink(os.Stderr)
	}

	return logger
}

// LevelComponentEnabled will return true if the given LogLevel is enabled for the given
// LogComponent.
func (logger *Logger) LevelComponentEnabled(level Level, component Component) bool {
	if logger == nil || logger.ComponentLevels == nil || level == LevelOff {
		return false
	}

	return logger.ComponentLevels[component] >= level
}

// Print will synchronously print the given message to the configured LogSink. If the LogSink is
// nil, then this method will do nothing.
func (logger *Logger) Print(level Level, component Component, msg string, keysAndValues ...interface{}) {
	if !logger.LevelComponentEnabled(level, component) || logger.Sink == nil {
		return
	}

	kv := make([]interface{}, 0, len(keysAndValues)+2)
	kv = append(kv, KeyComponent, component.String())
	kv = append(kv, keysAndValues...)

	logger.Sink.Info(int(level)-DiffToInfo, msg, kv...)
}

// Error logs an error, with the given message and key/value pairs. It functions similarly to
// Print, but may have unique behavior depending on the sink.
func (logger *Logger) Error(err error, component Component, msg string, keysAndValues ...interface{}) {
	if !logger.LevelComponentEnabled(LevelInfo, component) || logger.Sink == nil {
		return
	}

	kv := make([]interface{}, 0, len(keysAndValues)+2)
	kv = append(kv, KeyComponent, component.String())
	kv = append(kv, keysAndValues...)

	logger.Sink.Error(err, msg, kv...)
}

// selectMaxDocumentLength will return the integer value of the first non-zero function, with the
// user-defined function taking priority over the environment variables. For the environment, the
// function will attempt to get the value of "BSONNATIVE_LOG_MAX_DOCUMENT_LENGTH" and parse it as
// an unsigned integer. If the environment variable is not set or is not an unsigned integer, then
// this function will return the default max document length.
func selectMaxDocumentLength(maxDocLen uint) uint {
	if maxDocLen != 0 {
		return maxDocLen
	}

	maxDocLenEnv := os.Getenv(maxDocumentLengthEnvVar)
	if maxDocLenEnv != "" {
		maxDocLenEnvInt, err := strconv.ParseUint(maxDocLenEnv, 10, 32)
		if err == nil && maxDocLenEnvInt > 0 {
			return uint(maxDocLenEnvInt)
		}
	}

	return DefaultMaxDocumentLength
}

const maxDocumentLengthEnvVar = "BSONNATIVE_LOG_MAX_DOCUMENT_LENGTH"

// Truncate truncates a string to the given width, appending TruncationSuffix when truncation
// occurred. Truncation never splits a UTF-8 sequence.
func Truncate(str string, width uint) string {
	if width == 0 || uint(len(str)) <= width {
		return str
	}

	cut := int(width)
	for cut > 0 && !isRuneStart(str[cut]) {
		cut--
	}

	var b strings.Builder
	b.Grow(cut + len(TruncationSuffix))
	b.WriteString(str[:cut])
	b.WriteString(TruncationSuffix)

	return b.String()
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
