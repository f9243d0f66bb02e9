// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

// maxPageSize is the limit of an HTML page read for link discovery.
const maxPageSize = 10 * 1024 * 1024

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// HTMLPage is an HTML page fetched for link discovery.
type HTMLPage struct {
	URL      string
	Links    []string // Absolute http(s) links from a[href], in document order.
	Sitemaps []string // Absolute URLs from <link rel="sitemap">.
}

// FetchPage fetches the HTML page and extracts its links. Relative links
// are resolved against the page URL, or the document's <base> if present.
func FetchPage(ctx context.Context, client *http.Client, u string) (*HTMLPage, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch page %s: %s", u, res.Status)
	}
	contentType := res.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return nil, fmt.Errorf("page %s is not HTML: %s", u, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxPageSize))
	if err != nil {
		return nil, err
	}
	if body, err = toUTF8(body, contentType); err != nil {
		return nil, err
	}
	return parsePage(u, body)
}

func parsePage(u string, body []byte) (*HTMLPage, error) {
	page := &HTMLPage{URL: u}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	base := u
	if href, found := doc.Find("base[href]").Attr("href"); found {
		if b, err := urlParser.ParseRef(u, href); err == nil {
			base = b.Href(false)
		}
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")

		abs, ok := absoluteURL(base, href)
		if !ok || seen[abs] {
			return
		}
		seen[abs] = true
		page.Links = append(page.Links, abs)
	})

	hdoc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for _, n := range htmlquery.Find(hdoc, "//link[@rel='sitemap']") {
		if abs, ok := absoluteURL(base, htmlquery.SelectAttr(n, "href")); ok {
			page.Sitemaps = append(page.Sitemaps, abs)
		}
	}

	slog.Debug("Discover: Parsed page.", "url", u, "links", len(page.Links), "sitemaps", len(page.Sitemaps))
	return page, nil
}

// absoluteURL resolves the reference against base. Only http(s) URLs are
// returned, fragments are removed.
func absoluteURL(base string, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}
	u, err := urlParser.ParseRef(base, ref)
	if err != nil {
		return "", false
	}
	if p := u.Protocol(); p != "http:" && p != "https:" {
		return "", false
	}
	return u.Href(true), true
}
