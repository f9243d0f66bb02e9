// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"slices"
	"strings"
)

// Page is a navigation page as received from the backend. A page may point
// to the app it belongs to.
type Page struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	TopApp    string `json:"top_app,omitempty"`
	TopAppURL string `json:"top_app_url,omitempty"`
}

// AppData describes an app derived from the pages pointing to it.
type AppData struct {
	AppName      string `json:"app_name"`
	Subdomain    string `json:"subdomain"`
	CanonicalURL string `json:"canonical_url"`
	Status       string `json:"status"`
}

// NormalizePages resolves each page's URL using the page name as hint and
// its top app URL using the top app name as hint. Pages whose own URL is
// dropped are omitted, a dropped top app URL is cleared.
func (p *Pipeline) NormalizePages(pages []Page) []Page {
	result := make([]Page, 0, len(pages))

	for _, page := range pages {
		page.URL = p.ResolveOrDrop(page.URL, page.Name)
		if page.URL == "" {
			continue
		}
		if page.TopAppURL != "" {
			page.TopAppURL = p.ResolveOrDrop(page.TopAppURL, page.TopApp)
		}
		result = append(result, page)
	}
	return result
}

// AppsFromPages extracts the distinct apps referenced by the pages' top app
// fields. Apps are keyed by subdomain, the first page wins. The result is
// sorted by app name.
func (p *Pipeline) AppsFromPages(pages []Page) []AppData {
	apps := make([]AppData, 0)
	seen := make(map[string]struct{})

	for _, page := range pages {
		if page.TopApp == "" || page.TopAppURL == "" {
			continue
		}
		u := p.ResolveOrDrop(page.TopAppURL, page.TopApp)
		if u == "" {
			continue
		}
		subdomain := subdomainOrHost(u)
		if subdomain == "" {
			continue
		}
		if _, ok := seen[subdomain]; ok {
			continue
		}
		seen[subdomain] = struct{}{}

		apps = append(apps, AppData{
			AppName:      page.TopApp,
			Subdomain:    subdomain,
			CanonicalURL: u,
			Status:       "active",
		})
	}

	slices.SortStableFunc(apps, func(a, b AppData) int {
		return strings.Compare(strings.ToLower(a.AppName), strings.ToLower(b.AppName))
	})
	return apps
}
