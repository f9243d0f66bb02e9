// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import (
	"context"
	"time"

	"sitemaphub/internal/canon"
)

// DiscoverySource names where the URLs of an import were found.
type DiscoverySource string

const (
	DiscoverySourceSitemap DiscoverySource = "sitemap"
	DiscoverySourceRobots  DiscoverySource = "robots"
	DiscoverySourceLink    DiscoverySource = "link"
	DiscoverySourceNone    DiscoverySource = "none"
)

// Report is the outcome of a finished import.
type Report struct {
	Import     string              `json:"import"`
	App        string              `json:"app"`
	BaseURL    string              `json:"base_url"`
	Source     DiscoverySource     `json:"source"`
	Sitemaps   []string            `json:"sitemaps,omitempty"`
	Discovered int                 `json:"discovered"`
	Results    []canon.BatchResult `json:"results"`
	FinishedAt time.Time           `json:"finished_at"`
}

// Reporter is a function type that can be used to report the result of an
// import. It comes with a preconfigured config.
type Reporter func(ctx context.Context, r *Report) error
