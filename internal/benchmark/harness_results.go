// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

type BenchResult struct {
	Name       string
	Trials     int
	Duration   time.Duration
	Raw        []Result
	DataSize   int
	Operations int
	Workers    int
	hasErrors  *bool
}

type Metric struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Summary holds per-trial timing statistics in seconds.
type Summary struct {
	Median float64
	Min    float64
	Max    float64
	P90    float64
}

// Summarize computes timing statistics over the successful trials.
func (r *BenchResult) Summarize() (Summary, error) {
	timings := r.timings()

	var s Summary
	var err error
	if s.Median, err = stats.Median(timings); err != nil {
		return Summary{}, err
	}
	if s.Min, err = stats.Min(timings); err != nil {
		return Summary{}, err
	}
	if s.Max, err = stats.Max(timings); err != nil {
		return Summary{}, err
	}
	if s.P90, err = stats.Percentile(timings, 90); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// PerfFormat renders the result as throughput metrics, plus data throughput in MB/s when the case
// has a data size.
func (r *BenchResult) PerfFormat() ([]interface{}, error) {
	s, err := r.Summarize()
	if err != nil {
		return nil, err
	}

	out := []interface{}{
		map[string]interface{}{
			"info": map[string]interface{}{
				"test_name": r.Name + "-throughput",
				"args": map[string]interface{}{
					"threads": r.Workers,
				},
			},
			"metrics": []Metric{
				{Name: "seconds", Value: r.Duration.Round(time.Millisecond).Seconds()},
				{Name: "ops_per_second", Value: r.getThroughput(s.Median)},
				{Name: "ops_per_second_min", Value: r.getThroughput(s.Max)},
				{Name: "ops_per_second_max", Value: r.getThroughput(s.Min)},
				{Name: "ops_per_second_p90", Value: r.getThroughput(s.P90)},
			},
		},
	}

	if r.DataSize > 0 {
		out = append(out, interface{}(map[string]interface{}{
			"info": map[string]interface{}{
				"test_name": r.Name + "-MB-adjusted",
				"args": map[string]interface{}{
					"threads": r.Workers,
				},
			},
			"metrics": []Metric{
				{Name: "seconds", Value: r.Duration.Round(time.Millisecond).Seconds()},
				{Name: "megabytes_per_second", Value: r.adjustResults(s.Median)},
				{Name: "megabytes_per_second_min", Value: r.adjustResults(s.Max)},
				{Name: "megabytes_per_second_max", Value: r.adjustResults(s.Min)},
			},
		}))
	}

	return out, nil
}

func (r *BenchResult) timings() []float64 {
	out := []float64{}
	for _, r := range r.Raw {
		if r.Error != nil {
			continue
		}
		out = append(out, r.Duration.Seconds())
	}
	return out
}

func (r *BenchResult) totalDuration() time.Duration {
	var out time.Duration
	for _, trial := range r.Raw {
		out += trial.Duration
	}
	return out
}

func (r *BenchResult) adjustResults(data float64) float64 { return float64(r.DataSize) / data / 1e6 }
func (r *BenchResult) getThroughput(data float64) float64 { return float64(r.Operations) / data }
func (r *BenchResult) roundedRuntime() time.Duration      { return roundDurationMS(r.Duration) }

func (r *BenchResult) String() string {
	return fmt.Sprintf("name=%s, trials=%d, secs=%s, measured=%s",
		r.Name, r.Trials, r.roundedRuntime(), roundDurationMS(r.totalDuration()))
}

func (r *BenchResult) HasErrors() bool {
	if r.hasErrors == nil {
		var val bool
		for _, res := range r.Raw {
			if res.Error != nil {
				val = true
				break
			}
		}
		r.hasErrors = &val
	}

	return *r.hasErrors
}

func (r *BenchResult) errReport() []string {
	errs := []string{}
	for _, res := range r.Raw {
		if res.Error != nil {
			errs = append(errs, res.Error.Error())
		}
	}
	return errs
}

type Result struct {
	Duration   time.Duration
	Iterations int
	Error      error
}

func roundDurationMS(d time.Duration) time.Duration {
	rounded := d.Round(time.Millisecond)
	if rounded == 1<<63-1 {
		return 0
	}
	return rounded
}
