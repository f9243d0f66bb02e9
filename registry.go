// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"sitemaphub/internal/canon"

	"github.com/redis/go-redis/v9"
)

// maxRegistrySize limits the size of a registry file fetched via HTTP.
const maxRegistrySize = 5 * 1024 * 1024

// loadRegistry loads the registry of known apps from its source. Supported
// sources are:
//
//	""                       the embedded default registry
//	file:///path/apps.yaml   a YAML or JSON file, a bare path works too
//	redis://<key>            a YAML or JSON document stored under key
//	https://host/apps.json   a YAML or JSON document fetched via HTTP
func loadRegistry(ctx context.Context, source string, rdb *redis.Client, client *http.Client) (*canon.Registry, error) {
	if source == "" {
		slog.Info("Registry: Using embedded default registry.")
		return canon.DefaultRegistry(), nil
	}

	// Redis keys commonly contain colons, which are no valid URL host.
	scheme := "redis"
	if !strings.HasPrefix(source, "redis://") {
		u, err := url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("invalid registry source: %w", err)
		}
		scheme = u.Scheme
	}

	var data []byte
	var err error

	switch scheme {
	case "", "file":
		data, err = os.ReadFile(strings.TrimPrefix(source, "file://"))
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("registry source %s requires Redis, set SITEMAPHUB_REDIS_DSN", source)
		}
		data, err = rdb.Get(ctx, strings.TrimPrefix(source, "redis://")).Bytes()
	case "http", "https":
		data, err = fetchRegistry(ctx, client, source)
	default:
		return nil, fmt.Errorf("unsupported registry source type: %s", scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load registry from %s: %w", source, err)
	}

	entries, err := canon.ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry from %s: %w", source, err)
	}
	slog.Info("Registry: Loaded registry.", "source", source, "apps", len(entries))

	return canon.NewRegistry(entries), nil
}

func fetchRegistry(ctx context.Context, client *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", res.Status)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxRegistrySize))
	if err != nil {
		return nil, err
	}
	return toUTF8(body, res.Header.Get("Content-Type"))
}
