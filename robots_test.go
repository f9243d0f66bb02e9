// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRobotsWith503(t *testing.T) {
	errserver := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(503)
	}))
	defer errserver.Close()

	robots := NewRobots(http.DefaultClient)

	ok, err := robots.Check(context.Background(), "test-agent", errserver.URL+"/page")
	if err != nil {
		t.Error(err)
	}
	if ok {
		t.Errorf("expected not ok got %v", ok)
	}
}

func TestCheckRobotsWith404(t *testing.T) {
	errserver := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(404)
	}))
	defer errserver.Close()

	robots := NewRobots(http.DefaultClient)

	ok, err := robots.Check(context.Background(), "test-agent", errserver.URL+"/page")
	if err != nil {
		t.Error(err)
	}
	if !ok {
		t.Errorf("expected ok got %v", ok)
	}
}

func TestRobotsDisallowAndSitemaps(t *testing.T) {
	var requests int

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		requests++
		fmt.Fprintf(rw, "User-agent: *\nDisallow: /private\n\nSitemap: %s/sitemap_index.xml\n", server.URL)
	}))
	defer server.Close()

	robots := NewRobots(http.DefaultClient)
	ctx := context.Background()

	ok, err := robots.Check(ctx, "test-agent", server.URL+"/private/page")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = robots.Check(ctx, "test-agent", server.URL+"/public")
	require.NoError(t, err)
	assert.True(t, ok)

	sitemaps, err := robots.Sitemaps(ctx, server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/sitemap_index.xml"}, sitemaps)

	assert.Equal(t, 1, requests, "robots.txt must be cached")
}
