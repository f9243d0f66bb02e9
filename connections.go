// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kos-v/dsnparser"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// maybeRedis connects to Redis, if SITEMAPHUB_REDIS_DSN is set. Without it
// (nil, nil) is returned and all stores fall back to memory.
func maybeRedis(ctx context.Context) (*redis.Client, error) {
	rawdsn, ok := os.LookupEnv("SITEMAPHUB_REDIS_DSN")
	if !ok || rawdsn == "" {
		return nil, nil
	}
	slog.Debug("Connecting to Redis...", "dsn", rawdsn)

	options, err := redisOptionsFromDSN(rawdsn)
	if err != nil {
		return nil, err
	}

	client, err := backoff.RetryNotifyWithData(
		func() (*redis.Client, error) {
			client := redis.NewClient(options)
			_, err := client.Ping(ctx).Result()
			return client, err
		},
		backoff.WithContext(backoff.NewExponentialBackOff(), ctx),
		func(err error, t time.Duration) {
			slog.Info("Retrying redis connection.", "error", err, "in", t)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("ultimately failed retrying redis connection: %w", err)
	}
	slog.Debug("Connection to Redis established :)")

	if UseTracing {
		if err := redisotel.InstrumentTracing(client); err != nil {
			return client, err
		}
	}
	if UseMetrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			return client, err
		}
	}
	return client, nil
}

// redisOptionsFromDSN parses DSNs like redis://:password@host:6379/2, the
// path selects the database.
func redisOptionsFromDSN(rawdsn string) (*redis.Options, error) {
	dsn := dsnparser.Parse(rawdsn)
	if dsn == nil || dsn.GetHost() == "" {
		return nil, fmt.Errorf("invalid redis DSN: %q", rawdsn)
	}

	port := dsn.GetPort()
	if port == "" {
		port = "6379"
	}

	var database int
	if p := strings.Trim(dsn.GetPath(), "/"); p != "" {
		d, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis database %q: %w", p, err)
		}
		database = d
	}

	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", dsn.GetHost(), port),
		Username: dsn.GetUser(),
		Password: dsn.GetPassword(),
		DB:       database,
	}, nil
}
