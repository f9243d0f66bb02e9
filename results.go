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
	"strings"

	"sitemaphub/internal/result"
)

// CreateResultReporter creates a result.Reporter from a DSN. The client is
// used by the webhook reporter.
func CreateResultReporter(ctx context.Context, dsn string, client *http.Client) (result.Reporter, error) {
	if dsn == "" {
		dsn = "disk://results"
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid result reporter DSN: %w", err)
	}

	switch {
	case u.Scheme == "disk":
		config, err := result.NewDiskConfigFromDSN(dsn, false)
		if err != nil {
			return nil, err
		}
		slog.Info("Result Reporter: Using disk reporter.", "config", config.LogFormat())

		return func(ctx context.Context, r *result.Report) error {
			return result.ReportToDisk(ctx, config, r)
		}, nil
	case u.Scheme == "webhook" || strings.HasPrefix(u.Scheme, "webhook+"):
		config, err := result.NewWebhookConfigFromDSN(dsn, client)
		if err != nil {
			return nil, err
		}
		slog.Info("Result Reporter: Using webhook reporter.", "config", config.LogFormat())

		return func(ctx context.Context, r *result.Report) error {
			return result.ReportToWebhook(ctx, config, r)
		}, nil
	case u.Scheme == "s3":
		config, err := result.NewS3ConfigFromDSN(dsn)
		if err != nil {
			return nil, err
		}
		slog.Info("Result Reporter: Using s3 reporter.", "config", config.LogFormat())

		return func(ctx context.Context, r *result.Report) error {
			return result.ReportToS3(ctx, config, r)
		}, nil
	case u.Scheme == "noop":
		slog.Info("Result Reporter: Disabled, not reporting results.")

		return func(ctx context.Context, r *result.Report) error {
			return result.ReportToNoop(ctx, nil, r)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported result reporter type: %s", u.Scheme)
	}
}
