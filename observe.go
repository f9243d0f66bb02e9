// Copyright 2024 Factorial GmbH. All rights reserved.

package main

import (
	"sitemaphub/internal/canon"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposed for collection by Prometheus.
var (
	PromURLsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitemaphub_urls_total",
		Help: "The total number of URLs passed through the pipeline, by terminal state.",
	}, []string{"state"})

	PromResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitemaphub_resolved_total",
		Help: "The total number of invalid URLs repaired from the registry, by strategy.",
	}, []string{"via"})

	PromFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitemaphub_sanitize_fallback_total",
		Help: "The total number of URLs that could only be sanitized using string heuristics.",
	})

	PromImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitemaphub_imports_total",
		Help: "The total number of finished imports, by status.",
	}, []string{"status"})

	PromDiscoveryRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitemaphub_discovery_requests_total",
		Help: "The total number of outbound discovery requests.",
	})
)

// observeResolution records the outcome of a single pipeline run.
func observeResolution(r canon.Resolution) {
	PromURLsTotal.WithLabelValues(r.State.String()).Inc()

	if r.State == canon.StateResolved {
		PromResolvedTotal.WithLabelValues(r.Via.String()).Inc()
	}
	if r.Fallback {
		PromFallbackTotal.Inc()
	}
}

// observeBatch records the outcome of a batch, dropped items are the ones
// missing from the results.
func observeBatch(in int, results []canon.BatchResult) {
	for _, r := range results {
		if r.IsValid {
			PromURLsTotal.WithLabelValues(canon.StateValid.String()).Inc()
		} else {
			PromURLsTotal.WithLabelValues(canon.StateResolved.String()).Inc()
		}
	}
	if dropped := in - len(results); dropped > 0 {
		PromURLsTotal.WithLabelValues(canon.StateDropped.String()).Add(float64(dropped))
	}
}
