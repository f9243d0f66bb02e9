// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import "strings"

// AppRecord is an editable app record as managed by the admin dashboards.
type AppRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Subdomain string `json:"subdomain,omitempty"`
}

// NormalizeAppURL collapses repeated domain suffixes, i.e.
// "foo.caffeine.xyz.caffeine.xyz", before sanitizing the URL.
func (p *Pipeline) NormalizeAppURL(raw string) string {
	return p.Sanitize(p.repeatedSuffix.ReplaceAllString(raw, p.suffix))
}

// ValidateApps cleans up a list of app records. Records without ID, name or
// URL are skipped, as are records whose ID or normalized URL was already
// seen and records whose URL cannot be parsed. Kept records carry the
// normalized URL and a subdomain. If no record survives, DefaultApps is
// returned.
func (p *Pipeline) ValidateApps(records []AppRecord) []AppRecord {
	validated := make([]AppRecord, 0, len(records))
	seenIDs := make(map[string]struct{}, len(records))
	seenURLs := make(map[string]struct{}, len(records))

	for _, app := range records {
		logger := p.logger.With("id", app.ID, "url", app.URL)

		if app.ID == "" || app.Name == "" || app.URL == "" {
			logger.Warn("Apps: Skipping app with missing fields.")
			continue
		}
		if _, ok := seenIDs[app.ID]; ok {
			logger.Warn("Apps: Duplicate ID detected.")
			continue
		}

		normalized := p.NormalizeAppURL(app.URL)
		if _, ok := seenURLs[normalized]; ok {
			logger.Warn("Apps: Duplicate URL detected.")
			continue
		}
		if _, ok := hostLabels(normalized); !ok {
			logger.Warn("Apps: Invalid URL format.")
			continue
		}
		seenIDs[app.ID] = struct{}{}
		seenURLs[normalized] = struct{}{}

		app.URL = normalized
		if app.Subdomain == "" {
			app.Subdomain = subdomainOrHost(normalized)
		}
		validated = append(validated, app)
	}

	if len(validated) == 0 {
		p.logger.Warn("Apps: No valid apps found, returning defaults.")
		return p.DefaultApps()
	}
	return validated
}

// DefaultApps derives app records from the registry. IDs are the lower-cased
// names with spaces replaced by dashes.
func (p *Pipeline) DefaultApps() []AppRecord {
	entries := p.registry.Entries()

	apps := make([]AppRecord, 0, len(entries))
	for _, e := range entries {
		u := p.Sanitize(e.URL)

		apps = append(apps, AppRecord{
			ID:        strings.ReplaceAll(normalizeName(e.Name), " ", "-"),
			Name:      e.Name,
			URL:       u,
			Subdomain: subdomainOrHost(u),
		})
	}
	return apps
}
