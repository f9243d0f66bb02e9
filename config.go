// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "time"

// These variables can be controlled via environment variables or flags, see
// configure().
var (
	// Debug enables or disables debug mode, this can be controlled
	// via the environment variable SITEMAPHUB_DEBUG.
	Debug = false

	// SkipCache disables caching of discovery requests when set to true.
	SkipCache = false

	// ListenHost is the host where the main HTTP server listens and the API is served.
	ListenHost string = ""

	// ListenPort is the port where the main HTTP server listens and the API is served.
	ListenPort int = 8080

	// DomainSuffix is the domain suffix every valid app URL must carry, i.e.
	// ".caffeine.xyz".
	DomainSuffix = ".caffeine.xyz"

	// RegistrySource points to the list of known apps, see loadRegistry. When
	// empty the embedded default registry is used.
	RegistrySource = ""

	// UserAgent is sent with every discovery request.
	UserAgent = "SitemapHub/0.1"

	// ResultReporterDSN configures where finished imports are reported to.
	ResultReporterDSN = "disk://results"

	// SanitizeCacheSize is the number of sanitized URLs memoized by the
	// pipeline.
	SanitizeCacheSize = 1024

	// HealthcheckPort is the port the healthcheck server listens on.
	HealthcheckPort = 10241

	// UseTracing enables tracing via OpenTelemetry.
	UseTracing = false

	// UseMetrics enables the /metrics endpoint and OTel metrics.
	UseMetrics = false

	// HostRequestInterval is the minimum time between two discovery requests
	// to the same host.
	HostRequestInterval = 500 * time.Millisecond
)

const (
	// MaxParallelImports specifies how many imports we keep in memory at the
	// same time. Older imports are evicted and must be loaded from the store.
	MaxParallelImports = 128

	// ImportTTL specifies the maximum time an import is kept around.
	ImportTTL = 24 * time.Hour

	// MaxImportURLs caps the number of URLs a single import collects.
	MaxImportURLs = 50_000

	// ShutdownTimeout is how long we wait for the HTTP servers to drain.
	ShutdownTimeout = 10 * time.Second
)

// CachePath is the directory discovery responses are cached in.
var CachePath = GetEnvString("SITEMAPHUB_CACHE_PATH", "cache")
