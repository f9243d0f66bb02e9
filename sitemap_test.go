// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSitemapIndex = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>%[1]s/sitemap-pages.xml</loc></sitemap>
  <sitemap><loc>%[1]s/sitemap-posts.xml.gz</loc></sitemap>
  <sitemap><loc>%[1]s/sitemap-missing.xml</loc></sitemap>
  <sitemap><loc>%[1]s/sitemap-pages.xml</loc></sitemap>
</sitemapindex>`

const testSitemapPages = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://a.caffeine.xyz/</loc></url>
  <url><loc> https://a.caffeine.xyz/about </loc></url>
</urlset>`

const testSitemapPosts = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://a.caffeine.xyz/posts/1</loc></url>
</urlset>`

func newSitemapServer(t *testing.T, robots string) *httptest.Server {
	t.Helper()

	var server *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("GET /robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.ReplaceAll(robots, "{base}", server.URL))
	})
	mux.HandleFunc("GET /sitemap_index.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, testSitemapIndex, server.URL)
	})
	mux.HandleFunc("GET /sitemap-pages.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testSitemapPages)
	})
	mux.HandleFunc("GET /sitemap-posts.xml.gz", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		gw.Write([]byte(testSitemapPosts))
		gw.Close()

		w.Header().Set("Content-Type", "application/x-gzip")
		w.Write(buf.Bytes())
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSitemapsDiscoverFromRobots(t *testing.T) {
	server := newSitemapServer(t, "User-agent: *\nAllow: /\n\nSitemap: {base}/sitemap_index.xml\n")
	s := NewSitemaps(NewRobots(http.DefaultClient), http.DefaultClient)

	assert.Equal(t, []string{server.URL + "/sitemap_index.xml"}, s.Discover(context.Background(), server.URL+"/some/page"))
}

func TestSitemapsDiscoverFallsBackToWellKnownLocation(t *testing.T) {
	server := newSitemapServer(t, "User-agent: *\nAllow: /\n")
	s := NewSitemaps(NewRobots(http.DefaultClient), http.DefaultClient)

	assert.Equal(t, []string{server.URL + "/sitemap.xml"}, s.Discover(context.Background(), server.URL))
}

func TestSitemapsDrainResolvesIndexes(t *testing.T) {
	server := newSitemapServer(t, "")
	s := NewSitemaps(NewRobots(http.DefaultClient), http.DefaultClient)

	var urls []string
	err := s.Drain(context.Background(), server.URL+"/sitemap_index.xml", func(u string) error {
		urls = append(urls, u)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://a.caffeine.xyz/",
		"https://a.caffeine.xyz/about",
		"https://a.caffeine.xyz/posts/1",
	}, urls)
}

func TestSitemapsDrainStopsEarly(t *testing.T) {
	server := newSitemapServer(t, "")
	s := NewSitemaps(NewRobots(http.DefaultClient), http.DefaultClient)

	var urls []string
	err := s.Drain(context.Background(), server.URL+"/sitemap_index.xml", func(u string) error {
		urls = append(urls, u)
		if len(urls) == 1 {
			return ErrStopDrain
		}
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, urls, 1)
}

func TestSitemapsDrainMissing(t *testing.T) {
	server := newSitemapServer(t, "")
	s := NewSitemaps(NewRobots(http.DefaultClient), http.DefaultClient)

	err := s.Drain(context.Background(), server.URL+"/sitemap.xml", func(u string) error {
		t.Errorf("unexpected URL: %s", u)
		return nil
	})
	assert.NoError(t, err)
}

func TestSniffSitemapKind(t *testing.T) {
	assert.Equal(t, sitemapKindURLSet, sniffSitemapKind([]byte(testSitemapPages)))
	assert.Equal(t, sitemapKindIndex, sniffSitemapKind([]byte(fmt.Sprintf(testSitemapIndex, "https://a.caffeine.xyz"))))
	assert.Equal(t, sitemapKindUnknown, sniffSitemapKind([]byte(`<html><body></body></html>`)))
	assert.Equal(t, sitemapKindUnknown, sniffSitemapKind([]byte(`not xml at all`)))
}
