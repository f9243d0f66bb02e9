// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

func configure() {
	var flagHost string
	var flagPort int
	var flagDebug bool
	var flagSkipCache bool
	var flagSuffix string
	var flagRegistry string
	var flagUserAgent string
	var flagTelemetry string
	var flagReporter string

	flag.StringVar(&flagHost, "host", ListenHost, "Host interface to bind the HTTP server to")
	flag.IntVar(&flagPort, "port", ListenPort, "Port to bind the HTTP server to")
	flag.BoolVar(&flagDebug, "debug", Debug, "Enable debug mode")
	flag.BoolVar(&flagSkipCache, "no-cache", false, "Disable caching of discovery requests")
	flag.StringVar(&flagSuffix, "suffix", DomainSuffix, "Domain suffix every valid app URL must carry")
	flag.StringVar(&flagRegistry, "registry", RegistrySource, "Registry source: file://, redis:// or http(s):// URL, empty for the built-in registry")
	flag.StringVar(&flagUserAgent, "ua", UserAgent, "User Agent to use for discovery requests")
	flag.StringVar(&flagTelemetry, "telemetry", "", "Comma separated list of telemetry to enable: metrics, traces")
	flag.StringVar(&flagReporter, "reporter", ResultReporterDSN, "DSN of the import result reporter: disk://, s3://, webhook:// or noop://")
	flag.Parse()

	if isFlagPassed("debug") {
		Debug = flagDebug
	} else {
		Debug = GetEnvBool("SITEMAPHUB_DEBUG", false)
	}
	if Debug {
		slog.Info("Debug mode enabled!")
	}

	if isFlagPassed("no-cache") {
		SkipCache = flagSkipCache
	} else {
		SkipCache = GetEnvBool("SITEMAPHUB_SKIP_CACHE", false)
	}
	if SkipCache {
		slog.Info("Skipping cache!")
	}

	if isFlagPassed("host") {
		ListenHost = flagHost
	} else if v := os.Getenv("SITEMAPHUB_HOST"); v != "" {
		ListenHost = v
	}
	if isFlagPassed("port") {
		ListenPort = flagPort
	} else if v := os.Getenv("SITEMAPHUB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		ListenPort = p
	}

	if isFlagPassed("suffix") {
		DomainSuffix = flagSuffix
	} else if v := os.Getenv("SITEMAPHUB_DOMAIN_SUFFIX"); v != "" {
		DomainSuffix = v
	}

	if isFlagPassed("registry") {
		RegistrySource = flagRegistry
	} else if v := os.Getenv("SITEMAPHUB_REGISTRY"); v != "" {
		RegistrySource = v
	}

	if isFlagPassed("ua") {
		UserAgent = flagUserAgent
	} else if v := os.Getenv("SITEMAPHUB_USER_AGENT"); v != "" {
		UserAgent = v
	}

	if isFlagPassed("reporter") {
		ResultReporterDSN = flagReporter
	} else if v := os.Getenv("SITEMAPHUB_RESULT_REPORTER_DSN"); v != "" {
		ResultReporterDSN = v
	}

	SanitizeCacheSize = GetEnvInt("SITEMAPHUB_SANITIZE_CACHE_SIZE", SanitizeCacheSize)
	HealthcheckPort = GetEnvInt("SITEMAPHUB_HEALTHCHECK_PORT", HealthcheckPort)
	HostRequestInterval = GetEnvDuration("SITEMAPHUB_HOST_INTERVAL", HostRequestInterval)

	var v string
	if isFlagPassed("telemetry") {
		v = flagTelemetry
	} else {
		v = os.Getenv("SITEMAPHUB_TELEMETRY")
	}
	if strings.Contains(v, "traces") || strings.Contains(v, "tracing") {
		UseTracing = true
		slog.Info("Tracing enabled.")
	}
	if strings.Contains(v, "metrics") {
		UseMetrics = true
		slog.Info("Metrics enabled.")
	}
}

func isForgivingTrue(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "yes" || v == "y" || v == "on" || v == "1"
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
