// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command bsonbench runs the codec benchmark cases and prints a throughput report.
//
// Usage:
//
//	bsonbench [-trials n] [-parallel n] [-runtime d] [-json] [-run regexp]
//
// BSONBENCH_TRIALS and BSONBENCH_PARALLEL set the flag defaults and may also come from a .env
// file in the working directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/ikmak/bsonnative/internal/benchmark"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	envTrials   = "BSONBENCH_TRIALS"
	envParallel = "BSONBENCH_PARALLEL"
)

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logrus.New()
	if err := run(ctx, os.Args[1:], os.Stdout, log); err != nil {
		log.WithError(err).Error("bsonbench failed")
		stop()
		os.Exit(1)
	}
}

type config struct {
	trials   int
	parallel int
	runtime  time.Duration
	json     bool
	run      *regexp.Regexp
}

func envInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s value %q: must be a positive integer", key, v)
	}
	return n, nil
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	trials, err := envInt(envTrials, benchmark.MinIterations)
	if err != nil {
		return nil, err
	}
	parallel, err := envInt(envParallel, 1)
	if err != nil {
		return nil, err
	}

	cfg := &config{}
	var pattern string
	fs := flag.NewFlagSet("bsonbench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.trials, "trials", trials, "minimum number of trials per case")
	fs.IntVar(&cfg.parallel, "parallel", parallel, "goroutines sharing each trial")
	fs.DurationVar(&cfg.runtime, "runtime", 0, "minimum runtime per case (0 uses each case's default)")
	fs.BoolVar(&cfg.json, "json", false, "print results as JSON metrics")
	fs.StringVar(&pattern, "run", "", "only run cases whose name matches this regular expression")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.trials < 1 || cfg.parallel < 1 {
		return nil, fmt.Errorf("trials and parallel must be positive")
	}
	if cfg.run, err = regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("invalid -run pattern: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout io.Writer, log *logrus.Logger) error {
	cfg, err := parseFlags(args, log.Out)
	if err != nil {
		return err
	}

	var results []*benchmark.BenchResult
	for _, c := range benchmark.Cases() {
		if !cfg.run.MatchString(c.Name()) {
			continue
		}
		c.MinTrials = cfg.trials
		c.Parallel = cfg.parallel
		if cfg.runtime > 0 {
			c.Runtime = cfg.runtime
		}

		log.WithField("case", c.String()).Debug("starting case")
		results = append(results, c.Run(ctx, log))
		if ctx.Err() != nil {
			break
		}
	}

	if cfg.json {
		return writeJSON(stdout, results)
	}
	return writeTable(stdout, results)
}

func writeJSON(w io.Writer, results []*benchmark.BenchResult) error {
	out := []interface{}{}
	for _, r := range results {
		if r.HasErrors() {
			continue
		}
		perf, err := r.PerfFormat()
		if err != nil {
			return fmt.Errorf("%s: %w", r.Name, err)
		}
		out = append(out, perf...)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTable(w io.Writer, results []*benchmark.BenchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "case\ttrials\tmedian\tmin\tmax\tp90\tops/s\tMB/s\t")

	failed := 0
	for _, r := range results {
		if r.HasErrors() {
			failed++
			fmt.Fprintf(tw, "%s\t%d\tFAIL\t\t\t\t\t\t\n", r.Name, r.Trials)
			continue
		}
		s, err := r.Summarize()
		if err != nil {
			return fmt.Errorf("%s: %w", r.Name, err)
		}

		mbps := "-"
		if r.DataSize > 0 {
			mbps = strconv.FormatFloat(float64(r.DataSize)/s.Median/1e6, 'f', 1, 64)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%.0f\t%s\t\n",
			r.Name, r.Trials, seconds(s.Median), seconds(s.Min), seconds(s.Max), seconds(s.P90),
			float64(r.Operations)/s.Median, mbps)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(results))
	}
	return nil
}

func seconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Microsecond).String()
}
