// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Canoncheck runs newline-delimited URLs through the canonicalization
// pipeline and prints the kept URLs with their state.
//
// Usage:
//
//	canoncheck [-suffix S] [-registry FILE] [-dedup] [-debug] [FILE]
//
// Lines are either a bare URL or an app name and a URL separated by a tab.
// Without FILE the URLs are read from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"sitemaphub/internal/canon"

	"github.com/charmbracelet/log"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		slog.Error("Canoncheck failed.", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	fs := flag.NewFlagSet("canoncheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	suffix := fs.String("suffix", ".caffeine.xyz", "Domain suffix every valid app URL must carry")
	registryFile := fs.String("registry", "", "YAML or JSON registry file, empty for the built-in registry")
	dedup := fs.Bool("dedup", false, "Print each resolved URL only once")
	debug := fs.Bool("debug", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	level := log.WarnLevel
	if *debug {
		level = log.DebugLevel
	}
	logger := slog.New(log.NewWithOptions(stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}))
	slog.SetDefault(logger)

	registry := canon.DefaultRegistry()
	if *registryFile != "" {
		data, err := os.ReadFile(*registryFile)
		if err != nil {
			return err
		}
		entries, err := canon.ParseRegistry(data)
		if err != nil {
			return fmt.Errorf("failed to parse registry %s: %w", *registryFile, err)
		}
		registry = canon.NewRegistry(entries)
	}

	p, err := canon.NewPipeline(registry, canon.Config{
		Suffix:    *suffix,
		CacheSize: 4096,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var items []canon.BatchItem

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if item, ok := canon.ParseBatchLine(scanner.Text()); ok {
			items = append(items, item)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	results := p.BatchValidate(items)
	if *dedup {
		results = canon.DeduplicateByURL(results, func(r canon.BatchResult) string {
			return r.Resolved
		})
	}
	slog.Debug("Checked URLs.", "in", len(items), "kept", len(results))

	w := bufio.NewWriter(stdout)
	for _, r := range results {
		state := canon.StateValid
		if !r.IsValid {
			state = canon.StateResolved
		}
		fmt.Fprintf(w, "%s\t%s\n", r.Resolved, state)
	}
	return w.Flush()
}
