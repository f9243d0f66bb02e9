// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sitemaphub/internal/canon"
)

func main() {
	setupLogging(os.Stderr)
	configure()
	setupLogging(os.Stderr) // Debug may have been enabled by a flag.

	slog.Info("SitemapHub is starting...", "suffix", DomainSuffix)

	// This sets up the main process context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("Exiting with error.", "error", err)
		os.Exit(1)
	}
	slog.Info("Exited cleanly.")
}

func run(ctx context.Context) error {
	shutdownOTel, err := setupOTelSDK(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup OpenTelemetry SDK: %w", err)
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			slog.Error("Failed to shutdown OpenTelemetry SDK.", "error", err)
		}
	}()

	redisconn, err := maybeRedis(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	if redisconn != nil {
		defer redisconn.Close()
	}

	client := CreateRetryingHTTPClient(UserAgent, NewHostLimiter(HostRequestInterval))

	registry, err := loadRegistry(ctx, RegistrySource, redisconn, client)
	if err != nil {
		return err
	}
	pipeline, err := canon.NewPipeline(registry, canon.Config{
		Suffix:    DomainSuffix,
		CacheSize: SanitizeCacheSize,
	})
	if err != nil {
		return err
	}

	rr, err := CreateResultReporter(ctx, ResultReporterDSN, client)
	if err != nil {
		return fmt.Errorf("failed to create result reporter: %w", err)
	}

	robots := NewRobots(client)
	sitemaps := NewSitemaps(robots, client)
	store := CreateImportStore(redisconn)

	imports := NewImportManager(
		ctx,
		store,
		NewImporter(pipeline, robots, sitemaps, client, store, rr),
	)

	apiserver := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", ListenHost, ListenPort),
		Handler: setupRoutes(pipeline, imports),
	}
	go func() {
		slog.Info("Starting HTTP API server...", "host", ListenHost, "port", ListenPort)
		if err := apiserver.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error.", "error", err)
		}
		slog.Info("Stopped serving new API HTTP connections.")
	}()

	hcserver := &http.Server{
		Addr:    fmt.Sprintf(":%d", HealthcheckPort),
		Handler: setupHealthcheckRoutes(redisconn),
	}
	go func() {
		slog.Info("Starting HTTP Healthcheck server...", "port", HealthcheckPort)
		if err := hcserver.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error.", "error", err)
		}
		slog.Info("Stopped serving new Healthcheck HTTP connections.")
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	err = errors.Join(
		apiserver.Shutdown(shutdownCtx),
		hcserver.Shutdown(shutdownCtx),
	)

	// Running imports observe the canceled context and finish as failed.
	imports.Wait()

	return err
}
