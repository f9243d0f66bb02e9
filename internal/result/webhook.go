// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WebhookConfig defines the configuration for webhook endpoints
type WebhookConfig struct {
	Endpoint string `json:"endpoint"`
	Client   *http.Client

	// MaxRetries is the number of times a failed delivery is retried.
	MaxRetries uint64
}

// LogFormat returns a string representation of the config suitable for logging
func (c WebhookConfig) LogFormat() string {
	return fmt.Sprintf("webhook(endpoint=%s, max_retries=%d)", c.Endpoint, c.MaxRetries)
}

// NewWebhookConfigFromDSN parses a DSN in the format webhook://<host>/<path>,
// which is delivered via HTTPS. Use webhook+http:// or webhook+https:// to
// choose the scheme explicitly.
func NewWebhookConfigFromDSN(dsn string, client *http.Client) (WebhookConfig, error) {
	config := WebhookConfig{
		Client:     client,
		MaxRetries: 3,
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return config, fmt.Errorf("invalid webhook endpoint: %w", err)
	}
	if u.Host == "" {
		return config, fmt.Errorf("webhook result reporter requires a valid host (e.g., webhook://example.com/imports)")
	}

	scheme := "https"
	if _, s, ok := strings.Cut(u.Scheme, "+"); ok {
		scheme = s
	}
	if scheme != "http" && scheme != "https" {
		return config, fmt.Errorf("unsupported webhook scheme: %s", u.Scheme)
	}

	u.Scheme = scheme
	u.Fragment = ""
	config.Endpoint = u.String()

	return config, nil
}

// ReportToWebhook delivers the report as a JSON POST request. Failed
// deliveries are retried with exponential backoff, client errors are not
// retried.
func ReportToWebhook(ctx context.Context, config WebhookConfig, r *Report) error {
	logger := slog.With("import", r.Import, "app", r.App)
	logger.Debug("Result Reporter: Forwarding report to webhook ...")

	payload := struct {
		Action string `json:"action"`
		*Report
	}{
		Action: "import.finished",
		Report: r,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	send := func() error {
		req, err := http.NewRequestWithContext(ctx, "POST", config.Endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := config.Client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		switch {
		case res.StatusCode >= 200 && res.StatusCode < 300:
			return nil
		case res.StatusCode >= 400 && res.StatusCode < 500:
			return backoff.Permanent(fmt.Errorf("webhook was not accepted: %s", res.Status))
		default:
			return fmt.Errorf("webhook failed: %s", res.Status)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond

	return backoff.RetryNotify(
		send,
		backoff.WithContext(backoff.WithMaxRetries(b, config.MaxRetries), ctx),
		func(err error, d time.Duration) {
			logger.Info("Result Reporter: Webhook delivery failed, retrying...", "error", err, "retry_in", d)
		},
	)
}
