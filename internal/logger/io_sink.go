// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// IOSink writes JSON lines to an io.Writer and is the default sink for the logger, with the
// default IO being os.Stderr.
type IOSink struct {
	mu  sync.Mutex
	log *logrus.Logger
}

// Compile-time check to ensure IOSink implements the LogSink interface.
var _ LogSink = &IOSink{}

// NewIOSink will create an IOSink object that writes JSON messages to the provided io.Writer.
func NewIOSink(out io.Writer) *IOSink {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.JSONFormatter{
		DisableTimestamp: false,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg: KeyMessage,
		},
	})

	return &IOSink{log: log}
}

// Info will write a JSON-encoded message to the io.Writer.
func (sink *IOSink) Info(_ int, msg string, keysAndValues ...interface{}) {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	sink.log.WithFields(fieldsOf(keysAndValues)).Info(msg)
}

// Error will write a JSON-encoded error message to the io.Writer.
func (sink *IOSink) Error(err error, msg string, kv ...interface{}) {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	fields := fieldsOf(kv)
	if err != nil {
		fields[KeyFailure] = err.Error()
	}
	sink.log.WithFields(fields).Error(msg)
}

// fieldsOf converts an alternating key/value list into logrus fields. Non-string keys and a
// trailing key without a value are dropped.
func fieldsOf(keysAndValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}

	return fields
}
