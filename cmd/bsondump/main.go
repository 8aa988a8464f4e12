// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command bsondump prints a file of back-to-back BSON documents as extended JSON, one document
// per line, or as Go values.
//
// Usage:
//
//	bsondump [-format json|go] [-pretty] [-v] [file]
//
// The input is read from stdin when no file, or "-", is given. Flag defaults can be set with the
// BSONDUMP_FORMAT and BSONDUMP_PRETTY environment variables, which are also read from a .env file
// in the working directory.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ikmak/bsonnative/bson"
	"github.com/ikmak/bsonnative/bson/bsonoptions"
	"github.com/ikmak/bsonnative/internal/logger"
	"github.com/joho/godotenv"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
)

const (
	formatJSON = "json"
	formatGo   = "go"

	envFormat = "BSONDUMP_FORMAT"
	envPretty = "BSONDUMP_PRETTY"
)

func main() {
	_ = godotenv.Load(".env")

	log := logrus.New()
	if err := run(os.Args[1:], os.Stdin, os.Stdout, log); err != nil {
		log.WithError(err).Error("bsondump failed")
		os.Exit(1)
	}
}

type config struct {
	format       string
	pretty       bool
	verbose      bool
	promoteLongs bool
	fileName     string
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{fileName: "-"}

	defaultPretty, err := envBool(envPretty, false)
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("bsondump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.format, "format", envString(envFormat, formatJSON), "output format: json or go")
	fs.BoolVar(&cfg.pretty, "pretty", defaultPretty, "indent extended JSON output")
	fs.BoolVar(&cfg.verbose, "v", false, "log decoder activity")
	fs.BoolVar(&cfg.promoteLongs, "promote-longs", true, "decode 64-bit integers that fit a double as doubles")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		cfg.fileName = fs.Arg(0)
	}

	switch cfg.format {
	case formatJSON, formatGo:
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.format)
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return b, nil
}

func run(args []string, stdin io.Reader, stdout io.Writer, log *logrus.Logger) error {
	cfg, err := parseFlags(args, log.Out)
	if err != nil {
		return err
	}

	var in io.Reader = stdin
	if cfg.fileName != "-" {
		file, err := os.Open(cfg.fileName)
		if err != nil {
			return fmt.Errorf("cannot open file (%s) because: %w", cfg.fileName, err)
		}
		defer file.Close()
		in = file
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	var opts []bson.CodecOption
	if cfg.verbose {
		log.SetLevel(logrus.DebugLevel)
		opts = append(opts, bson.WithLogger(logger.New(logger.NewLogrusSink(log), 0,
			map[logger.Component]logger.Level{logger.ComponentDecode: logger.LevelDebug})))
	}
	codec, err := bson.NewCodec(bson.DefaultConstructors(), opts...)
	if err != nil {
		return err
	}

	n, err := dump(codec, data, stdout, cfg, bsonoptions.Decode().SetPromoteLongs(cfg.promoteLongs))
	log.WithField("documents", n).WithField("bytes", len(data)).Debug("dump finished")
	return err
}

// dump decodes the documents in data one at a time and writes each to w. It returns the number of
// documents written.
func dump(codec *bson.Codec, data []byte, w io.Writer, cfg *config, opts *bsonoptions.DecodeOptions) (int, error) {
	out := make([]bson.Value, 1)
	offset, n := 0, 0
	for offset < len(data) {
		end, err := codec.DeserializeStream(data, offset, 1, out, 0, opts)
		if err != nil {
			return n, fmt.Errorf("error decoding document %d at offset %d: %w", n+1, offset, err)
		}
		if err := write(w, out[0], cfg); err != nil {
			return n, err
		}
		offset = end
		n++
	}
	return n, nil
}

func write(w io.Writer, v bson.Value, cfg *config) error {
	var err error
	switch {
	case cfg.format == formatGo:
		_, err = fmt.Fprintf(w, "%# v\n", pretty.Formatter(goValue(v)))
	case cfg.pretty:
		_, err = w.Write(bson.PrettyJSON(v))
	default:
		_, err = fmt.Fprintln(w, bson.ExtJSON(v))
	}
	if err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return nil
}
