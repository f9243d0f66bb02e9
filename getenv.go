// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// GetEnvString returns the value of the environment variable key, or
// defaultVal when it is unset or empty.
func GetEnvString(key string, defaultVal string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultVal
	}
	slog.Debug("Config: Using value from environment.", "key", key, "value", v)
	return v
}

// GetEnvBool is like GetEnvString, but accepts the forgiving boolean values
// of isForgivingTrue. Any other non-empty value is false.
func GetEnvBool(key string, defaultVal bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultVal
	}
	slog.Debug("Config: Using value from environment.", "key", key, "value", v)
	return isForgivingTrue(v)
}

// GetEnvInt is like GetEnvString, but parses the value as a base 10 integer.
// Unparsable values are ignored with a warning.
func GetEnvInt(key string, defaultVal int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Config: Ignoring invalid integer in environment.", "key", key, "value", v)
		return defaultVal
	}
	slog.Debug("Config: Using value from environment.", "key", key, "value", i)
	return i
}

// GetEnvDuration parses values like "1m30s", see time.ParseDuration.
func GetEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("Config: Ignoring invalid duration in environment.", "key", key, "value", v)
		return defaultVal
	}
	slog.Debug("Config: Using value from environment.", "key", key, "value", d)
	return d
}
