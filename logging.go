// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// newLogHandler creates the slog.Handler used by the whole service. Output
// is human readable by default, "json" and "logfmt" formats are available
// for log shippers.
func newLogHandler(w io.Writer, debug bool, format string) slog.Handler {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	var formatter log.Formatter
	switch strings.ToLower(format) {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// setupLogging installs the handler as slog default.
func setupLogging(w io.Writer) {
	slog.SetDefault(slog.New(newLogHandler(w, Debug, GetEnvString("SITEMAPHUB_LOG_FORMAT", "text"))))
}
