// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/antchfx/xmlquery"
	sitemap "github.com/oxffaa/gopher-parse-sitemap"
)

// maxSitemapSize is the limit of a single, uncompressed sitemap document.
const maxSitemapSize = 50 * 1024 * 1024

// maxSitemapDepth limits how deep sitemap indexes may be nested.
const maxSitemapDepth = 3

// ErrStopDrain may be returned by a yield function to end draining early.
var ErrStopDrain = errors.New("stop draining sitemap")

type sitemapKind int

const (
	sitemapKindUnknown sitemapKind = iota
	sitemapKindURLSet
	sitemapKindIndex
)

// NewSitemaps creates a new Sitemaps instance.
func NewSitemaps(robots *Robots, client *http.Client) *Sitemaps {
	return &Sitemaps{
		robots: robots,
		client: client,
	}
}

// Sitemaps discovers and reads sitemaps.
type Sitemaps struct {
	robots *Robots
	client *http.Client
}

// Discover sitemaps for the base URL's host, if the robots.txt has no
// information about it, fall back to a well known location.
func (s *Sitemaps) Discover(ctx context.Context, base string) []string {
	p, err := url.Parse(base)
	if err != nil {
		slog.Warn("Sitemaps: Failed to parse URL, skipping.", "url", base, "error", err)
		return nil
	}
	root := fmt.Sprintf("%s://%s", p.Scheme, p.Host)

	urls, err := s.robots.Sitemaps(ctx, root) // This may block.
	if err != nil {
		slog.Error("Sitemaps: Failed to fetch sitemap URLs, taking a well known location.", "error", err)
		return []string{root + "/sitemap.xml"}
	}
	if len(urls) == 0 {
		slog.Debug("Sitemaps: No sitemap URLs found in robots.txt, taking well known location.", "host", p.Host)
		return []string{root + "/sitemap.xml"}
	}
	return urls
}

// Drain fetches the sitemap, parses it and yields the URLs to the yield
// function. Sitemap indexes are resolved recursively. Each sitemap is read
// at most once. A missing sitemap is not an error.
func (s *Sitemaps) Drain(ctx context.Context, u string, yield func(string) error) error {
	seen := make(map[string]bool)

	var resolve func(string, int) error
	resolve = func(u string, depth int) error {
		if seen[u] {
			return nil
		}
		seen[u] = true

		if err := ctx.Err(); err != nil {
			return err
		}
		slog.Debug("Sitemaps: Resolving...", "url", u)

		body, err := s.fetch(ctx, u)
		if err != nil {
			return err
		}
		if body == nil {
			slog.Debug("Sitemaps: No sitemap found, skipping.", "url", u)
			return nil
		}

		switch sniffSitemapKind(body) {
		case sitemapKindURLSet:
			return sitemap.Parse(bytes.NewReader(body), func(e sitemap.Entry) error {
				return yield(strings.TrimSpace(e.GetLocation()))
			})
		case sitemapKindIndex:
			if depth >= maxSitemapDepth {
				slog.Warn("Sitemaps: Sitemap indexes nested too deep, skipping.", "url", u)
				return nil
			}
			var children []string

			err := sitemap.ParseIndex(bytes.NewReader(body), func(e sitemap.IndexEntry) error {
				children = append(children, strings.TrimSpace(e.GetLocation()))
				return nil
			})
			if err != nil {
				return err
			}
			for _, child := range children {
				if err := resolve(child, depth+1); err != nil {
					return err
				}
			}
			return nil
		default:
			slog.Warn("Sitemaps: Document is neither a sitemap nor a sitemap index.", "url", u)
			return nil
		}
	}

	err := resolve(u, 0)
	if errors.Is(err, ErrStopDrain) {
		return nil
	}
	return err
}

// fetch retrieves the sitemap and decompresses it if needed. For missing
// sitemaps (nil, nil) is returned.
func (s *Sitemaps) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusGone {
		return nil, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %s", u, res.Status)
	}

	var r io.Reader = io.LimitReader(res.Body, maxSitemapSize)

	contentEncoding := strings.ToLower(res.Header.Get("Content-Encoding"))
	if !res.Uncompressed && (strings.Contains(contentEncoding, "gzip") || strings.HasSuffix(strings.ToLower(req.URL.Path), ".xml.gz")) {
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gr.Close()

		r = io.LimitReader(gr, maxSitemapSize)
	}
	return io.ReadAll(r)
}

// sniffSitemapKind looks at the document's root element, the URL of a
// sitemap says nothing reliable about its kind.
func sniffSitemapKind(body []byte) sitemapKind {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return sitemapKindUnknown
	}
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode {
			continue
		}
		switch strings.ToLower(n.Data) {
		case "urlset":
			return sitemapKindURLSet
		case "sitemapindex":
			return sitemapKindIndex
		}
		return sitemapKindUnknown
	}
	return sitemapKindUnknown
}
