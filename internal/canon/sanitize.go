// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"regexp"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

const schemePrefix = "https://"

// The WHATWG parser is what browsers use, so hosts are lower-cased and paths
// are serialized the same way the front-ends did it.
var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

var (
	leadingSchemes = regexp.MustCompile(`(?i)^(https?://)+`)
	anyScheme      = regexp.MustCompile(`(?i)https?://`)
	embeddedScheme = regexp.MustCompile(`(?i)([^:])https?://`)
	doubledSlashes = regexp.MustCompile(`([^:]/)/+`)
)

// maxSanitizePasses bounds the number of passes SanitizeDetailed runs to
// reach a fixed point. In practice the second pass never changes anything.
const maxSanitizePasses = 4

// Sanitized is the outcome of sanitizing a raw URL.
type Sanitized struct {
	URL string `json:"url"`

	// Fallback is set when the URL could not be parsed during one of the
	// steps and plain string operations were used instead.
	Fallback bool `json:"fallback"`
}

// Sanitize normalizes a raw URL: whitespace is removed, repeated and
// embedded schemes are collapsed into a single leading https://, doubled
// path separators are collapsed, a bare origin gets a trailing slash and the
// host is lower-cased. Sanitize never fails, the empty string is only
// returned for empty input.
func Sanitize(raw string) string {
	return SanitizeDetailed(raw).URL
}

// SanitizeDetailed is like Sanitize but additionally reports whether the
// result was produced using the string fallback path.
func SanitizeDetailed(raw string) Sanitized {
	if raw == "" {
		return Sanitized{}
	}
	cur, fallback := sanitizeOnce(raw)

	for i := 0; i < maxSanitizePasses; i++ {
		next, fb := sanitizeOnce(cur)
		if next == cur {
			break
		}
		cur = next
		fallback = fallback || fb
	}
	return Sanitized{URL: cur, Fallback: fallback}
}

func sanitizeOnce(raw string) (string, bool) {
	var fallback bool

	s := strings.Join(strings.Fields(raw), "")

	s = leadingSchemes.ReplaceAllString(s, schemePrefix)

	// Labels glued in front of the URL, i.e. "Some App.https://...".
	if loc := anyScheme.FindStringIndex(s); loc != nil && loc[0] > 0 {
		s = schemePrefix + s[loc[1]:]
	}

	for {
		next := embeddedScheme.ReplaceAllString(s, "${1}")
		if next == s {
			break
		}
		s = next
	}

	if !strings.HasPrefix(s, schemePrefix) && !strings.HasPrefix(s, "http://") {
		s = schemePrefix + s
	}
	if strings.HasPrefix(s, "http://") {
		s = schemePrefix + strings.TrimPrefix(s, "http://")
	}

	s = doubledSlashes.ReplaceAllString(s, "${1}")

	if u, err := urlParser.Parse(s); err == nil {
		if p := u.Pathname(); p == "" || p == "/" {
			s = u.Protocol() + "//" + u.Host() + "/"
		}
	} else {
		fallback = true

		if !strings.HasSuffix(s, "/") && !strings.Contains(s[len(schemePrefix):], "/") {
			s += "/"
		}
	}

	if u, err := urlParser.Parse(s); err == nil {
		s = u.Href(false)
	} else {
		fallback = true
		s = strings.ToLower(s)
	}
	return s, fallback
}

// hostLabels parses a sanitized URL and returns the dot separated labels of
// its host name.
func hostLabels(sanitized string) ([]string, bool) {
	if sanitized == "" {
		return nil, false
	}
	if !strings.HasPrefix(sanitized, "http") {
		sanitized = schemePrefix + sanitized
	}
	u, err := urlParser.Parse(sanitized)
	if err != nil || u.Hostname() == "" {
		return nil, false
	}
	return strings.Split(u.Hostname(), "."), true
}

// ExtractSubdomain returns the leftmost host label of the URL, if the host
// has at least three labels. "https://foo.example.com/" yields "foo", while
// "https://example.com/" yields nothing.
func ExtractSubdomain(raw string) (string, bool) {
	labels, ok := hostLabels(Sanitize(raw))
	if !ok || len(labels) < 3 {
		return "", false
	}
	return labels[0], true
}

// subdomainOrHost is like ExtractSubdomain but falls back to the whole host
// name for hosts with less than three labels.
func subdomainOrHost(sanitized string) string {
	labels, ok := hostLabels(sanitized)
	if !ok {
		return ""
	}
	if len(labels) >= 3 {
		return labels[0]
	}
	return strings.Join(labels, ".")
}
