// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import "strings"

// BatchItem is a single input to BatchValidate.
type BatchItem struct {
	URL     string `json:"url"`
	AppName string `json:"app_name,omitempty"`
}

// ParseBatchLine parses a line of a plaintext batch. A line is either a
// bare URL or an app name hint and a URL separated by a tab. Blank lines and
// lines starting with # are skipped.
func ParseBatchLine(line string) (BatchItem, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return BatchItem{}, false
	}
	if name, u, ok := strings.Cut(line, "\t"); ok {
		return BatchItem{URL: strings.TrimSpace(u), AppName: strings.TrimSpace(name)}, true
	}
	return BatchItem{URL: line}, true
}

// BatchResult is a single kept output of BatchValidate.
type BatchResult struct {
	Original    string `json:"original"`
	Resolved    string `json:"resolved"`
	IsValid     bool   `json:"is_valid"`
	WasResolved bool   `json:"was_resolved"`
}

// BatchValidate runs every item through the pipeline and drops the items
// that could not be resolved. The order of the kept items is the input
// order.
func (p *Pipeline) BatchValidate(items []BatchItem) []BatchResult {
	results := make([]BatchResult, 0, len(items))

	for _, item := range items {
		sanitized := p.Sanitize(item.URL)
		valid := p.Validate(sanitized)

		resolved := sanitized
		if !valid {
			resolved = p.ResolveOrDrop(item.URL, item.AppName)
		}
		if resolved == "" {
			continue
		}
		results = append(results, BatchResult{
			Original:    item.URL,
			Resolved:    resolved,
			IsValid:     valid,
			WasResolved: !valid && resolved != item.URL,
		})
	}
	return results
}

// DeduplicateURLs returns the sanitized form of the URLs, keeping only the
// first occurrence of each. URLs sanitizing to the empty string are skipped.
func DeduplicateURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	result := make([]string, 0, len(urls))

	for _, u := range urls {
		s := Sanitize(u)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}

// DeduplicateByURL keeps the first item per sanitized URL, as returned by
// urlOf. Items are returned unchanged.
func DeduplicateByURL[T any](items []T, urlOf func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		s := Sanitize(urlOf(item))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, item)
	}
	return result
}
