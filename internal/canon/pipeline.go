// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package canon sanitizes, validates, deduplicates and resolves application
// URLs against a registry of canonical app URLs.
package canon

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrEmptySuffix = errors.New("required domain suffix must not be empty")

// Config configures a Pipeline.
type Config struct {
	// Suffix is the domain suffix every valid app URL must carry exactly
	// once, i.e. ".caffeine.xyz".
	Suffix string

	// CacheSize is the number of sanitized URLs to memoize. 0 disables the
	// cache.
	CacheSize int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

type subdomainEntry struct {
	label string
	url   string // Sanitized canonical URL.
}

// Pipeline binds a Registry to a required domain suffix. It is immutable
// after construction and safe for concurrent use.
type Pipeline struct {
	registry *Registry
	suffix   string

	repeatedSuffix *regexp.Regexp

	// Registry entries indexed by the leftmost label of their canonical
	// URL's host, in source order.
	subdomains []subdomainEntry

	cache  *lru.Cache[string, Sanitized]
	logger *slog.Logger
}

// NewPipeline creates a new Pipeline. A nil registry is treated as empty.
func NewPipeline(registry *Registry, conf Config) (*Pipeline, error) {
	suffix := strings.ToLower(strings.TrimSpace(conf.Suffix))
	if suffix == "" {
		return nil, ErrEmptySuffix
	}
	if registry == nil {
		registry = NewRegistry(nil)
	}

	p := &Pipeline{
		registry:       registry,
		suffix:         suffix,
		repeatedSuffix: regexp.MustCompile(`(?i)(` + regexp.QuoteMeta(suffix) + `){2,}`),
		logger:         conf.Logger,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	if conf.CacheSize > 0 {
		cache, err := lru.New[string, Sanitized](conf.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create sanitize cache: %w", err)
		}
		p.cache = cache
	}

	for _, e := range registry.entries {
		labels, ok := hostLabels(Sanitize(e.URL))
		if !ok {
			p.logger.Warn("Canon: Registry entry has no parsable URL, skipping for subdomain matching.", "name", e.Name, "url", e.URL)
			continue
		}
		p.subdomains = append(p.subdomains, subdomainEntry{
			label: labels[0],
			url:   Sanitize(e.URL),
		})
	}
	return p, nil
}

// Registry returns the registry the pipeline resolves against.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Suffix returns the normalized required domain suffix.
func (p *Pipeline) Suffix() string {
	return p.suffix
}

// Sanitize is like the package level Sanitize, but memoizes results when a
// cache has been configured.
func (p *Pipeline) Sanitize(raw string) string {
	return p.SanitizeDetailed(raw).URL
}

func (p *Pipeline) SanitizeDetailed(raw string) Sanitized {
	if p.cache == nil {
		return SanitizeDetailed(raw)
	}
	if v, ok := p.cache.Get(raw); ok {
		return v
	}
	v := SanitizeDetailed(raw)
	p.cache.Add(raw, v)
	return v
}

// Validate checks an already sanitized URL, see Check.
func (p *Pipeline) Validate(sanitized string) bool {
	return Check(sanitized, p.suffix)
}

// ValidateURL sanitizes the raw URL before checking it.
func (p *Pipeline) ValidateURL(raw string) bool {
	return Check(p.Sanitize(raw), p.suffix)
}

// CanonicalURL returns the sanitized canonical URL registered for the app
// name.
func (p *Pipeline) CanonicalURL(name string) (string, bool) {
	raw, ok := p.registry.Lookup(name)
	if !ok || raw == "" {
		return "", false
	}
	return p.Sanitize(raw), true
}

// CanonicalURLs returns the sanitized canonical URL of every distinct app
// name in the registry.
func (p *Pipeline) CanonicalURLs() []string {
	raws := p.registry.rawURLs()

	urls := make([]string, 0, len(raws))
	for _, raw := range raws {
		urls = append(urls, p.Sanitize(raw))
	}
	return urls
}

// ResolveTopAppURL returns the canonical URL for the app, but only if that
// URL passes validation itself.
func (p *Pipeline) ResolveTopAppURL(name string) (string, bool) {
	u, ok := p.CanonicalURL(name)
	if !ok || !p.Validate(u) {
		return "", false
	}
	return u, true
}
