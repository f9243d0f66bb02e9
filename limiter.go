// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	xrate "golang.org/x/time/rate"
)

// HostLimiter spaces out requests to the same host. Hosts are identified by
// their naked host name, see GetHostFromURL.
type HostLimiter struct {
	sync.Mutex

	interval time.Duration
	limiters map[string]*xrate.Limiter
}

func NewHostLimiter(interval time.Duration) *HostLimiter {
	slog.Debug("Using in-memory rate limiter...", "interval", interval)

	return &HostLimiter{
		interval: interval,
		limiters: make(map[string]*xrate.Limiter),
	}
}

// Wait blocks until a request to the URL's host is allowed, or the context
// is done.
func (l *HostLimiter) Wait(ctx context.Context, u string) error {
	if l == nil || l.interval <= 0 {
		return nil
	}
	host := GetHostFromURL(u)

	l.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = xrate.NewLimiter(xrate.Every(l.interval), 1)
		l.limiters[host] = limiter
	}
	l.Unlock()

	r := limiter.Reserve()
	d := r.Delay()
	if d == 0 {
		return nil
	}
	slog.Debug("Host rate limit exceeded, delaying request.", "host", host, "delay", d)

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// GetHostFromURL returns the host name without a "www." prefix.
func GetHostFromURL(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(p.Hostname(), "www.")
}
