// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tcs := []struct {
		name     string
		raw      string
		expected string
	}{
		{"empty", "", ""},
		{"bare host", "x.example.com", "https://x.example.com/"},
		{"http upgraded", "http://x.example.com", "https://x.example.com/"},
		{"uppercase scheme", "HTTP://X.example.com", "https://x.example.com/"},
		{"host lower-cased", "https://A.EXAMPLE.COM/", "https://a.example.com/"},
		{"repeated scheme", "https://https://x.example.com", "https://x.example.com/"},
		{"mixed repeated scheme", "http://https://x.example.com/", "https://x.example.com/"},
		{"whitespace removed", "  https://foo .example.com  ", "https://foo.example.com/"},
		{"label glued in front", "Some App https://infitask.example.com", "https://infitask.example.com/"},
		{"embedded scheme", "https://a.example.comhttps://b.example.com", "https://a.example.comb.example.com/"},
		{"doubled slashes", "https://x.example.com//path///to", "https://x.example.com/path/to"},
		{"path kept", "https://x.example.com/about", "https://x.example.com/about"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Sanitize(tc.raw))
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"garbage",
		"not a url at all",
		"x.example.com",
		"http://https://http://x.example.com//a//b",
		"Some App https://infitask.example.com",
		"https://a.example.comhttps://b.example.com",
		"https://a|b.example.com",
		"https://x.example.com/a%20b",
		"HTTPS://X.EXAMPLE.COM/Path",
		"ftp://x.example.com",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestSanitizeSchemeNormalization(t *testing.T) {
	assert.True(t, strings.HasPrefix(Sanitize("http://x.example.com"), "https://"))
	assert.Equal(t, 1, strings.Count(Sanitize("https://https://x.example.com"), "https://"))
}

func TestSanitizeDetailedReportsFallback(t *testing.T) {
	s := SanitizeDetailed("https://a|b.example.com")
	assert.True(t, s.Fallback)
	assert.Equal(t, "https://a|b.example.com/", s.URL)

	s = SanitizeDetailed("https://x.example.com")
	assert.False(t, s.Fallback)
}

func TestExtractSubdomain(t *testing.T) {
	sub, ok := ExtractSubdomain("https://foo.example.com/")
	assert.True(t, ok)
	assert.Equal(t, "foo", sub)

	_, ok = ExtractSubdomain("https://example.com/")
	assert.False(t, ok)

	_, ok = ExtractSubdomain("")
	assert.False(t, ok)

	sub, ok = ExtractSubdomain("FOO.Bar.example.com/path")
	assert.True(t, ok)
	assert.Equal(t, "foo", sub)
}

func TestSubdomainOrHost(t *testing.T) {
	assert.Equal(t, "foo", subdomainOrHost("https://foo.example.com/"))
	assert.Equal(t, "example.org", subdomainOrHost("https://example.org/"))
	assert.Equal(t, "", subdomainOrHost(""))
}
