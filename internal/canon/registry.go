// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import "strings"

// AppEntry is a single known application in the canonical registry.
type AppEntry struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Registry maps application names to their canonical URLs. It is built once
// and never mutated afterwards, so it may be shared freely between
// goroutines.
//
// Names are matched case-insensitively and ignoring surrounding whitespace.
// When two entries share a name, the later entry's URL wins, while the key
// keeps the position of its first appearance.
type Registry struct {
	entries []AppEntry

	keys []string          // Normalized names in first-seen order.
	urls map[string]string // Normalized name to raw canonical URL.
}

// NewRegistry creates a new Registry from the given entries. The entries
// are copied, callers may reuse the slice.
func NewRegistry(entries []AppEntry) *Registry {
	r := &Registry{
		entries: make([]AppEntry, len(entries)),
		keys:    make([]string, 0, len(entries)),
		urls:    make(map[string]string, len(entries)),
	}
	copy(r.entries, entries)

	for _, e := range entries {
		key := normalizeName(e.Name)

		if _, ok := r.urls[key]; !ok {
			r.keys = append(r.keys, key)
		}
		r.urls[key] = e.URL
	}
	return r
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the raw, unsanitized canonical URL for the app name.
func (r *Registry) Lookup(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	key := normalizeName(name)
	if key == "" {
		return "", false
	}
	u, ok := r.urls[key]
	return u, ok
}

// Has reports whether the app name is known to the registry.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the app names as given in the source list, in source order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.Name)
	}
	return names
}

// Entries returns a copy of the registry's entries in source order.
func (r *Registry) Entries() []AppEntry {
	if r == nil {
		return nil
	}
	entries := make([]AppEntry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Len returns the number of distinct app names.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// rawURLs returns the raw canonical URL per distinct name, in key order.
func (r *Registry) rawURLs() []string {
	if r == nil {
		return nil
	}
	urls := make([]string, 0, len(r.keys))
	for _, k := range r.keys {
		urls = append(urls, r.urls[k])
	}
	return urls
}
