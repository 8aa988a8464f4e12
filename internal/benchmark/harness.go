// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package benchmark runs timed trials of the codec entry points and summarizes their throughput.
package benchmark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	ExecutionTimeout = 5 * time.Minute
	StandardRuntime  = time.Minute
	MinimumRuntime   = 10 * time.Second
	MinIterations    = 100

	ten         = 10
	hundred     = ten * ten
	thousand    = ten * hundred
	tenThousand = ten * thousand
)

// TimerManager is the subset of *testing.B a case uses to exclude its setup from the
// measurement.
type TimerManager interface {
	ResetTimer()
	StartTimer()
	StopTimer()
}

var _ TimerManager = (*testing.B)(nil)

type BenchCase func(context.Context, TimerManager, int) error
type BenchFunction func(*testing.B)

// WrapCase adapts bench to a Go benchmark function.
func WrapCase(bench BenchCase) BenchFunction {
	name := getName(bench)
	return func(b *testing.B) {
		ctx := context.Background()
		b.ResetTimer()
		err := bench(ctx, b, b.N)
		require.NoError(b, err, "case='%s'", name)
	}
}

// Cases returns every codec case with its per-trial operation count and data size.
func Cases() []*CaseDefinition {
	return []*CaseDefinition{
		{
			Bench:   CanaryIncCase,
			Count:   hundred,
			Size:    -1,
			Runtime: MinimumRuntime,
		},
		{
			Bench:   CalculateSizeFlat,
			Count:   tenThousand,
			Size:    tenThousand * flatSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   SerializeFlat,
			Count:   tenThousand,
			Size:    tenThousand * flatSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   SerializeIntoFlat,
			Count:   tenThousand,
			Size:    tenThousand * flatSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   SerializeDeep,
			Count:   tenThousand,
			Size:    tenThousand * deepSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   DeserializeFlat,
			Count:   tenThousand,
			Size:    tenThousand * flatSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   DeserializeDeep,
			Count:   tenThousand,
			Size:    tenThousand * deepSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   DeserializeStreamFlat,
			Count:   thousand,
			Size:    thousand * streamBatch * flatSize(),
			Runtime: StandardRuntime,
		},
	}
}
