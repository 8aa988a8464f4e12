// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CaseDefinition describes how a case is run: Count operations per trial, repeated until both
// Runtime has passed and MinTrials trials have completed.
type CaseDefinition struct {
	Bench   BenchCase
	Count   int
	Size    int
	Runtime time.Duration

	// MinTrials defaults to MinIterations.
	MinTrials int
	// Parallel splits each trial's operations across this many goroutines sharing one codec.
	Parallel int

	startAt time.Time
}

func (c *CaseDefinition) minTrials() int {
	if c.MinTrials > 0 {
		return c.MinTrials
	}
	return MinIterations
}

func (c *CaseDefinition) workers() int {
	if c.Parallel > 1 {
		return c.Parallel
	}
	return 1
}

// Run runs trials until the case is done or ctx is cancelled. Progress is logged to log.
func (c *CaseDefinition) Run(ctx context.Context, log logrus.FieldLogger) *BenchResult {
	out := &BenchResult{
		DataSize:   c.Size,
		Name:       c.Name(),
		Operations: c.Count,
		Workers:    c.workers(),
	}
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, ExecutionTimeout)
	defer cancel()

	log = log.WithField("case", out.Name)
	log.Info("=== RUN")
	c.startAt = time.Now()
	for {
		if time.Since(c.startAt) > c.Runtime {
			if out.Trials >= c.minTrials() {
				break
			} else if ctx.Err() != nil {
				break
			}
		}

		res := c.trial(ctx)
		if errors.Is(res.Error, context.Canceled) || errors.Is(res.Error, context.DeadlineExceeded) {
			break
		}

		out.Trials++
		out.Raw = append(out.Raw, res)
	}
	out.Duration = time.Since(c.startAt)

	entry := log.WithField("duration", out.Duration.Round(time.Millisecond)).WithField("trials", out.Trials)
	if out.HasErrors() {
		entry.WithField("errors", out.errReport()).Error("--- FAIL")
	} else {
		entry.Info("--- PASS")
	}

	return out
}

// trial runs one trial. With several workers, the trial lasts as long as its slowest worker.
func (c *CaseDefinition) trial(ctx context.Context) Result {
	workers := c.workers()
	per := c.Count / workers
	if per < 1 {
		per = 1
	}

	timers := make([]*trialTimer, workers)
	g, ctx := errgroup.WithContext(ctx)
	for i := range timers {
		tm := &trialTimer{}
		timers[i] = tm
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tm.ResetTimer()
			err := c.Bench(ctx, tm, per)
			tm.StopTimer()
			return err
		})
	}

	res := Result{Iterations: per * workers}
	res.Error = g.Wait()
	for _, tm := range timers {
		if tm.elapsed > res.Duration {
			res.Duration = tm.elapsed
		}
	}
	return res
}

func (c *CaseDefinition) String() string {
	return fmt.Sprintf("name=%s, count=%d, runtime=%s timeout=%s",
		c.Name(), c.Count, c.Runtime, ExecutionTimeout)
}

func (c *CaseDefinition) Name() string { return getName(c.Bench) }

func getName(i interface{}) string {
	n := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
	parts := strings.Split(n, ".")
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}

	return n
}

// trialTimer measures the time between ResetTimer and StopTimer, excluding stopped intervals.
type trialTimer struct {
	start   time.Time
	running bool
	elapsed time.Duration
}

var _ TimerManager = (*trialTimer)(nil)

func (t *trialTimer) ResetTimer() {
	t.elapsed = 0
	t.start = time.Now()
	t.running = true
}

func (t *trialTimer) StartTimer() {
	if !t.running {
		t.start = time.Now()
		t.running = true
	}
}

func (t *trialTimer) StopTimer() {
	if t.running {
		t.elapsed += time.Since(t.start)
		t.running = false
	}
}
