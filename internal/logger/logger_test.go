// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogSink struct{}

func (mockLogSink) Info(int, string, ...interface{})    {}
func (mockLogSink) Error(error, string, ...interface{}) {}

type recordedMessage struct {
	level int
	msg   string
	kv    []interface{}
	err   error
}

type recordingSink struct {
	mu       sync.Mutex
	messages []recordedMessage
}

func (s *recordingSink) Info(level int, msg string, kv ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, recordedMessage{level: level, msg: msg, kv: kv})
}

func (s *recordingSink) Error(err error, msg string, kv ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, recordedMessage{msg: msg, kv: kv, err: err})
}

func BenchmarkLogger(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()

	b.Run("Print", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		logger := New(mockLogSink{}, 0, map[Component]Level{
			ComponentEncode: LevelDebug,
		})

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				logger.Print(LevelInfo, ComponentEncode, "foo", "bar", "baz")
			}
		})
	})
}

func mockKeyValues(length int) (KeyValues, map[string]interface{}) {
	keysAndValues := KeyValues{}
	m := map[string]interface{}{}

	for i := 0; i < length; i++ {
		keyName := fmt.Sprintf("key%d", i)
		valueName := fmt.Sprintf("value%d", i)

		keysAndValues.Add(keyName, valueName)
		m[keyName] = valueName
	}

	return keysAndValues, m
}

func BenchmarkIOSinkInfo(b *testing.B) {
	keysAndValues, _ := mockKeyValues(10)

	b.ReportAllocs()
	b.ResetTimer()

	sink := NewIOSink(bytes.NewBuffer(nil))

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			sink.Info(0, "foo", keysAndValues...)
		}
	})
}

func TestIOSinkInfo(t *testing.T) {
	t.Parallel()

	const threshold = 1000

	mockKeyValues, kvmap := mockKeyValues(10)

	buf := new(bytes.Buffer)
	sink := NewIOSink(buf)

	wg := sync.WaitGroup{}
	wg.Add(threshold)

	for i := 0; i < threshold; i++ {
		go func() {
			defer wg.Done()

			sink.Info(0, "foo", mockKeyValues...)
		}()
	}

	wg.Wait()

	lines := 0
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]interface{}
		require.NoError(t, dec.Decode(&m), "error unmarshaling JSON")

		assert.Equal(t, "foo", m[KeyMessage])
		delete(m, KeyMessage)
		delete(m, logrus.FieldKeyTime)
		delete(m, logrus.FieldKeyLevel)

		assert.Equal(t, kvmap, m)
		lines++
	}
	assert.Equal(t, threshold, lines)
}

func TestIOSinkError(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	sink := NewIOSink(buf)
	sink.Error(errors.New("boom"), "decode failed", KeyErrorKind, "StructuralDecode")

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "decode failed", m[KeyMessage])
	assert.Equal(t, "boom", m[KeyFailure])
	assert.Equal(t, "StructuralDecode", m[KeyErrorKind])
	assert.Equal(t, "error", m[logrus.FieldKeyLevel])
}

func TestLogrusSink(t *testing.T) {
	t.Parallel()

	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	sink := NewLogrusSink(l)

	sink.Info(0, "info message", KeySize, 5)
	sink.Info(1, "debug message")
	sink.Error(errors.New("boom"), "error message")

	entries := hook.AllEntries()
	require.Len(t, entries, 3)

	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, 5, entries[0].Data[KeySize])
	assert.Equal(t, logrus.DebugLevel, entries[1].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[2].Level)
	assert.EqualError(t, entries[2].Data[logrus.ErrorKey].(error), "boom")
}

func TestSelectMaxDocumentLength(t *testing.T) {
	for _, tcase := range []struct {
		name     string
		arg      uint
		expected uint
		env      map[string]string
	}{
		{
			name:     "default",
			arg:      0,
			expected: DefaultMaxDocumentLength,
		},
		{
			name:     "non-zero",
			arg:      100,
			expected: 100,
		},
		{
			name:     "valid env",
			arg:      0,
			expected: 100,
			env: map[string]string{
				maxDocumentLengthEnvVar: "100",
			},
		},
		{
			name:     "invalid env",
			arg:      0,
			expected: DefaultMaxDocumentLength,
			env: map[string]string{
				maxDocumentLengthEnvVar: "foo",
			},
		},
	} {
		tcase := tcase

		t.Run(tcase.name, func(t *testing.T) {
			for k, v := range tcase.env {
				t.Setenv(k, v)
			}

			assert.Equal(t, tcase.expected, selectMaxDocumentLength(tcase.arg))
		})
	}
}

func TestComponentLevelsFromEnv(t *testing.T) {
	for _, tcase := range []struct {
		name     string
		arg      map[Component]Level
		expected map[Component]Level
		env      map[string]string
	}{
		{
			name: "default",
			expected: map[Component]Level{
				ComponentEncode: LevelOff,
				ComponentDecode: LevelOff,
			},
		},
		{
			name: "argument",
			arg:  map[Component]Level{ComponentEncode: LevelDebug},
			expected: map[Component]Level{
				ComponentEncode: LevelDebug,
				ComponentDecode: LevelOff,
			},
		},
		{
			name: "all argument",
			arg:  map[Component]Level{ComponentAll: LevelInfo},
			expected: map[Component]Level{
				ComponentEncode: LevelInfo,
				ComponentDecode: LevelInfo,
			},
		},
		{
			name: "valid env",
			expected: map[Component]Level{
				ComponentEncode: LevelDebug,
				ComponentDecode: LevelInfo,
			},
			env: map[string]string{
				string(componentEnvVarEncode): string(LevelLiteralDebug),
				string(componentEnvVarDecode): string(LevelLiteralInfo),
			},
		},
		{
			name: "all env with override",
			expected: map[Component]Level{
				ComponentEncode: LevelInfo,
				ComponentDecode: LevelDebug,
			},
			env: map[string]string{
				string(componentEnvVarAll):    "WARN",
				string(componentEnvVarDecode): "trace",
			},
		},
		{
			name: "argument beats env",
			arg:  map[Component]Level{ComponentDecode: LevelOff},
			expected: map[Component]Level{
				ComponentEncode: LevelDebug,
				ComponentDecode: LevelOff,
			},
			env: map[string]string{
				string(componentEnvVarAll): "debug",
			},
		},
		{
			name: "invalid env",
			expected: map[Component]Level{
				ComponentEncode: LevelOff,
				ComponentDecode: LevelOff,
			},
			env: map[string]string{
				string(componentEnvVarEncode): "foo",
				string(componentEnvVarDecode): "bar",
			},
		},
	} {
		tcase := tcase

		t.Run(tcase.name, func(t *testing.T) {
			for k, v := range tcase.env {
				t.Setenv(k, v)
			}

			logger := New(mockLogSink{}, 0, tcase.arg)
			for k, v := range tcase.expected {
				assert.Equal(t, v, logger.ComponentLevels[k], "component %v", k)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, tcase := range []struct {
		in   string
		want Level
	}{
		{"", LevelOff},
		{"off", LevelOff},
		{"Emergency", LevelInfo},
		{"error", LevelInfo},
		{" notice ", LevelInfo},
		{"INFO", LevelInfo},
		{"debug", LevelDebug},
		{"trace", LevelDebug},
		{"verbose", LevelOff},
	} {
		assert.Equal(t, tcase.want, ParseLevel(tcase.in), "ParseLevel(%q)", tcase.in)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	for _, tcase := range []struct {
		name     string
		arg      string
		width    uint
		expected string
	}{
		{
			name:     "empty",
			arg:      "",
			width:    0,
			expected: "",
		},
		{
			name:     "short",
			arg:      "foo",
			width:    DefaultMaxDocumentLength,
			expected: "foo",
		},
		{
			name:     "long",
			arg:      "foo bar baz",
			width:    9,
			expected: "foo bar b...",
		},
		{
			name:     "multi-byte",
			arg:      "你好",
			width:    4,
			expected: "你...",
		},
	} {
		tcase := tcase

		t.Run(tcase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tcase.expected, Truncate(tcase.arg, tcase.width))
		})
	}
}

func TestLogger_LevelComponentEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		logger    *Logger
		level     Level
		component Component
		want      bool
	}{
		{
			name:      "nil",
			logger:    nil,
			level:     LevelInfo,
			component: ComponentEncode,
			want:      false,
		},
		{
			name:      "zero",
			logger:    &Logger{},
			level:     LevelOff,
			component: ComponentEncode,
			want:      false,
		},
		{
			name: "empty",
			logger: &Logger{
				ComponentLevels: map[Component]Level{},
			},
			level:     LevelOff,
			component: ComponentEncode,
			want:      false, // LevelOff should never be considered enabled.
		},
		{
			name: "one level below",
			logger: &Logger{
				ComponentLevels: map[Component]Level{
					ComponentEncode: LevelDebug,
				},
			},
			level:     LevelInfo,
			component: ComponentEncode,
			want:      true,
		},
		{
			name: "equal levels",
			logger: &Logger{
				ComponentLevels: map[Component]Level{
					ComponentEncode: LevelDebug,
				},
			},
			level:     LevelDebug,
			component: ComponentEncode,
			want:      true,
		},
		{
			name: "one level above",
			logger: &Logger{
				ComponentLevels: map[Component]Level{
					ComponentEncode: LevelInfo,
				},
			},
			level:     LevelDebug,
			component: ComponentEncode,
			want:      false,
		},
		{
			name: "component mismatch",
			logger: &Logger{
				ComponentLevels: map[Component]Level{
					ComponentEncode: LevelDebug,
				},
			},
			level:     LevelDebug,
			component: ComponentDecode,
			want:      false,
		},
	}

	for _, tcase := range tests {
		tcase := tcase

		t.Run(tcase.name, func(t *testing.T) {
			t.Parallel()

			got := tcase.logger.LevelComponentEnabled(tcase.level, tcase.component)
			assert.Equal(t, tcase.want, got)
		})
	}
}

func TestLoggerPrint(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	logger := &Logger{
		ComponentLevels: map[Component]Level{ComponentEncode: LevelDebug},
		Sink:            sink,
	}

	logger.Print(LevelDebug, ComponentEncode, "encoded", KeySize, 5)
	logger.Print(LevelDebug, ComponentDecode, "dropped")
	logger.Error(errors.New("boom"), ComponentEncode, "failed")

	require.Len(t, sink.messages, 2)
	assert.Equal(t, 1, sink.messages[0].level)
	assert.Equal(t, "encoded", sink.messages[0].msg)
	assert.Equal(t, []interface{}{KeyComponent, "encode", KeySize, 5}, sink.messages[0].kv)
	assert.EqualError(t, sink.messages[1].err, "boom")

	var nilLogger *Logger
	assert.NotPanics(t, func() { nilLogger.Print(LevelInfo, ComponentDecode, "nothing") })
}
