// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import "strings"

// State is the terminal state of a URL after passing through the pipeline.
type State int

const (
	StateValid    State = iota // The sanitized URL passed validation.
	StateResolved              // The URL was invalid but repaired from the registry.
	StateDropped               // The URL was invalid and could not be repaired.
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateResolved:
		return "resolved"
	case StateDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Via tells which strategy resolved an invalid URL.
type Via int

const (
	ViaNone      Via = iota
	ViaName          // Exact, case-insensitive app name match.
	ViaSubdomain     // Leftmost host label match.
)

func (v Via) String() string {
	switch v {
	case ViaName:
		return "name"
	case ViaSubdomain:
		return "subdomain"
	default:
		return ""
	}
}

// Resolution is the outcome of Resolve. For StateDropped, URL is empty.
type Resolution struct {
	URL      string
	State    State
	Via      Via
	Fallback bool // Sanitizing the raw input used the string fallback path.
}

// Resolve sanitizes and validates the raw URL. Invalid URLs are repaired by
// looking up the app name hint in the registry first and by matching the
// URL's subdomain against the registry second. If both fail the URL is
// dropped. No other repair is attempted.
func (p *Pipeline) Resolve(raw string, appName string) Resolution {
	s := p.SanitizeDetailed(raw)

	if p.Validate(s.URL) {
		return Resolution{URL: s.URL, State: StateValid, Fallback: s.Fallback}
	}
	logger := p.logger.With("url", raw)
	logger.Debug("Canon: Invalid URL detected, attempting canonical resolution...")

	if strings.TrimSpace(appName) != "" {
		if u, ok := p.CanonicalURL(appName); ok {
			logger.Debug("Canon: Resolved to canonical URL.", "app", appName, "canonical", u)
			return Resolution{URL: u, State: StateResolved, Via: ViaName, Fallback: s.Fallback}
		}
	}

	if labels, ok := hostLabels(s.URL); ok && len(labels) >= 3 {
		for _, e := range p.subdomains {
			if e.label == labels[0] {
				logger.Debug("Canon: Resolved via subdomain match.", "subdomain", e.label, "canonical", e.url)
				return Resolution{URL: e.url, State: StateResolved, Via: ViaSubdomain, Fallback: s.Fallback}
			}
		}
	}

	logger.Warn("Canon: Could not resolve canonical URL, dropping malformed URL.")
	return Resolution{State: StateDropped, Fallback: s.Fallback}
}

// ResolveOrDrop returns the sanitized URL, a canonical replacement for it, or
// the empty string when the URL must be omitted.
func (p *Pipeline) ResolveOrDrop(raw string, appName string) string {
	return p.Resolve(raw, appName).URL
}
