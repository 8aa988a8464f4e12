// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import "github.com/sirupsen/logrus"

// LogrusSink adapts an existing *logrus.Logger to the LogSink interface. Sink level 0 maps to
// logrus' Info level and every higher level maps to Debug.
type LogrusSink struct {
	Logger *logrus.Logger
}

var _ LogSink = LogrusSink{}

// NewLogrusSink returns a sink writing through l. A nil l uses logrus' standard logger.
func NewLogrusSink(l *logrus.Logger) LogrusSink {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return LogrusSink{Logger: l}
}

// Info logs msg at the logrus level corresponding to level.
func (s LogrusSink) Info(level int, msg string, keysAndValues ...interface{}) {
	entry := s.Logger.WithFields(fieldsOf(keysAndValues))
	if level <= 0 {
		entry.Info(msg)
		return
	}
	entry.Debug(msg)
}

// Error logs msg at logrus' Error level with err attached.
func (s LogrusSink) Error(err error, msg string, keysAndValues ...interface{}) {
	s.Logger.WithFields(fieldsOf(keysAndValues)).WithError(err).Error(msg)
}
