// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/temoto/robotstxt"
)

// Robots is a simple wrapper around robotstxt.RobotsData that caches the
// robots.txt file for each host. Cached files expire after an hour.
type Robots struct {
	client *http.Client

	data *lru.LRU[string, *robotstxt.RobotsData] // Keyed by scheme and host.
}

func NewRobots(client *http.Client) *Robots {
	return &Robots{
		client: client,
		data:   lru.NewLRU[string, *robotstxt.RobotsData](1024, nil, time.Hour),
	}
}

// Check reports whether the agent may fetch the URL. When the robots.txt
// file cannot be fetched at all, access is allowed.
func (r *Robots) Check(ctx context.Context, agent string, u string) (bool, error) {
	p, err := url.Parse(u)
	if err != nil {
		return false, err
	}

	robot, err := r.get(ctx, p)
	if err != nil {
		slog.Debug("Robots: Failed to fetch robots.txt, allowing access.", "url", u, "error", err)
		return true, nil
	}

	eu := p.EscapedPath()
	if eu == "" {
		eu = "/"
	}
	if p.RawQuery != "" {
		eu += "?" + p.Query().Encode()
	}
	// Handles the full allow and full disallow of 4xx and 5xx responses.
	return robot.TestAgent(eu, agent), nil
}

// Sitemaps returns available sitemap URLs for the given URL's host.
func (r *Robots) Sitemaps(ctx context.Context, u string) ([]string, error) {
	p, err := url.Parse(u)
	if err != nil {
		return nil, err
	}

	robot, err := r.get(ctx, p)
	if err != nil {
		return nil, err
	}
	return robot.Sitemaps, nil
}

// get ensures that the robots.txt file for the given host is fetched.
func (r *Robots) get(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	key := u.Scheme + "://" + u.Host

	if robot, ok := r.data.Get(key); ok {
		return robot, nil
	}

	slog.Debug("Robots: Fetching missing robots.txt file...", "host", u.Host)
	req, err := http.NewRequestWithContext(ctx, "GET", key+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch robots.txt: %w", err)
	}
	defer res.Body.Close()

	robot, err := robotstxt.FromResponse(res)
	if err != nil {
		return nil, err
	}

	r.data.Add(key, robot)
	return robot, nil
}
