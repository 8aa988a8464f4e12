// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import "strings"

// DiffToInfo is the number of levels that come before the "Info" level. This ensures that "Info"
// is the 0th level passed to the sink.
const DiffToInfo = 1

// Level is an enumeration representing the supported log severity levels.
//
// The order of the logging levels is important: a sink receives the level minus DiffToInfo, so
// InfoLevel arrives as 0 and DebugLevel as 1.
type Level int

const (
	// LevelOff supresses logging.
	LevelOff Level = iota

	// LevelInfo enables logging of informational messages.
	LevelInfo

	// LevelDebug enables logging of debug messages. These logs can be voluminous and are intended
	// for detailed information that may be helpful when debugging an application. Example: the
	// size and duration of every encode call.
	LevelDebug
)

// LevelLiteral are the logging levels that can be read from environment variables.
type LevelLiteral string

const (
	LevelLiteralOff       LevelLiteral = "off"
	LevelLiteralEmergency LevelLiteral = "emergency"
	LevelLiteralAlert     LevelLiteral = "alert"
	LevelLiteralCritical  LevelLiteral = "critical"
	LevelLiteralError     LevelLiteral = "error"
	LevelLiteralWarning   LevelLiteral = "warn"
	LevelLiteralNotice    LevelLiteral = "notice"
	LevelLiteralInfo      LevelLiteral = "info"
	LevelLiteralDebug     LevelLiteral = "debug"
	LevelLiteralTrace     LevelLiteral = "trace"
)

// Level will return the Level associated with the level literal. If the literal is not a valid
// level, then LevelOff is returned.
func (llevel LevelLiteral) Level() Level {
	switch llevel {
	case LevelLiteralEmergency, LevelLiteralAlert, LevelLiteralCritical, LevelLiteralError,
		LevelLiteralWarning, LevelLiteralNotice, LevelLiteralInfo:
		return LevelInfo
	case LevelLiteralDebug, LevelLiteralTrace:
		return LevelDebug
	default:
		return LevelOff
	}
}

// ParseLevel will check if the given string is a valid level literal, ignoring case. The default
// Level is "Off".
func ParseLevel(str string) Level {
	return LevelLiteral(strings.ToLower(strings.TrimSpace(str))).Level()
}
