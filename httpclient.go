// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/peterbourgon/diskv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// CreateRetryingHTTPClient creates a new HTTP client configured and optimized
// for discovery requests: temporary failures are retried, responses are
// cached on disk unless SkipCache is set, and requests to the same host are
// throttled by the limiter.
//
// The client never returns an error for a final non-2xx response, callers
// must check the status code.
func CreateRetryingHTTPClient(ua string, limiter *HostLimiter) *http.Client {
	rc := retryablehttp.NewClient()

	rc.RetryMax = 3
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = slog.Default()
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	rc.HTTPClient = &http.Client{
		Timeout:   10 * time.Second,
		Transport: createTransport(ua, limiter),
	}
	return rc.StandardClient()
}

// createTransport layers the transports, outermost first: user agent,
// tracing, cache and throttling.
func createTransport(ua string, limiter *HostLimiter) http.RoundTripper {
	var t http.RoundTripper = &ThrottledTransport{
		Transport: http.DefaultTransport,
		limiter:   limiter,
	}

	if !SkipCache {
		tempdir := os.TempDir()
		slog.Debug("Using temporary directory for atomic file operations.", "dir", tempdir)

		cachedir, _ := filepath.Abs(CachePath)

		cachedisk := diskv.New(diskv.Options{
			BasePath:     cachedir,
			TempDir:      tempdir,
			CacheSizeMax: 100 * 1024 * 1024, // 100MB
		})
		slog.Debug(
			"Initializing caching HTTP client...",
			"cache.dir", cachedir,
			"cache.size", cachedisk.CacheSizeMax,
		)

		ct := httpcache.NewTransport(diskcache.NewWithDiskv(cachedisk))
		ct.Transport = t
		t = ct
	}

	return &UserAgentTransport{
		Transport: otelhttp.NewTransport(t),
		UserAgent: ua,
	}
}
