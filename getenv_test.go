// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("SITEMAPHUB_TEST_STRING", "env-has-set")
	t.Setenv("SITEMAPHUB_TEST_EMPTY", "")

	assert.Equal(t, "env-has-set", GetEnvString("SITEMAPHUB_TEST_STRING", "default-string-value"))
	assert.Equal(t, "default-string-value", GetEnvString("SITEMAPHUB_TEST_EMPTY", "default-string-value"))
	assert.Equal(t, "default-string-value", GetEnvString("SITEMAPHUB_TEST_NOT_SET", "default-string-value"))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("SITEMAPHUB_TEST_BOOL", "Yes")
	t.Setenv("SITEMAPHUB_TEST_BOOL_OFF", "nope")

	assert.True(t, GetEnvBool("SITEMAPHUB_TEST_BOOL", false))
	assert.False(t, GetEnvBool("SITEMAPHUB_TEST_BOOL_OFF", true))
	assert.True(t, GetEnvBool("SITEMAPHUB_TEST_NOT_SET", true))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SITEMAPHUB_TEST_INT", "20")
	t.Setenv("SITEMAPHUB_TEST_INT_INVALID", "twenty")

	assert.Equal(t, 20, GetEnvInt("SITEMAPHUB_TEST_INT", 10))
	assert.Equal(t, 10, GetEnvInt("SITEMAPHUB_TEST_INT_INVALID", 10))
	assert.Equal(t, 10, GetEnvInt("SITEMAPHUB_TEST_NOT_SET", 10))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("SITEMAPHUB_TEST_DURATION", "1m30s")

	assert.Equal(t, 90*time.Second, GetEnvDuration("SITEMAPHUB_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("SITEMAPHUB_TEST_NOT_SET", time.Second))
}

func TestIsForgivingTrue(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "yes", "y", "on", " On ", "1"} {
		assert.True(t, isForgivingTrue(v), v)
	}
	for _, v := range []string{"", "false", "no", "off", "0", "nah"} {
		assert.False(t, isForgivingTrue(v), v)
	}
}
