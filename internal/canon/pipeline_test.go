// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEntries = []AppEntry{
	{Name: "InfiTask", URL: "https://infitask.example.com/"},
	{Name: "N8n Tasks", URL: "https://n8n-tasks-c2i.example.com"},
	{Name: "Alpha", URL: "https://a.example.com/"},
	{Name: "Elsewhere", URL: "https://elsewhere.other.org/"},
}

func newTestPipeline(t *testing.T, entries []AppEntry) *Pipeline {
	t.Helper()

	p, err := NewPipeline(NewRegistry(entries), Config{
		Suffix:    ".example.com",
		CacheSize: 64,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return p
}

func TestNewPipelineRequiresSuffix(t *testing.T) {
	_, err := NewPipeline(nil, Config{Suffix: "  "})
	assert.ErrorIs(t, err, ErrEmptySuffix)
}

func TestNewPipelineNormalizesSuffix(t *testing.T) {
	p, err := NewPipeline(nil, Config{Suffix: " .EXAMPLE.com "})
	require.NoError(t, err)

	assert.Equal(t, ".example.com", p.Suffix())
	assert.Equal(t, 0, p.Registry().Len())
	assert.True(t, p.ValidateURL("x.example.com"))
}

func TestPipelineCacheMatchesUncached(t *testing.T) {
	p := newTestPipeline(t, nil)

	for _, raw := range []string{"x.example.com", "https://https://y.example.com", "https://a|b.example.com"} {
		expected := SanitizeDetailed(raw)

		assert.Equal(t, expected, p.SanitizeDetailed(raw))
		assert.Equal(t, expected, p.SanitizeDetailed(raw), "cached")
	}
}

func TestCanonicalURL(t *testing.T) {
	p := newTestPipeline(t, testEntries)

	for _, name := range []string{"infitask", "INFITASK", "  InfiTask\t"} {
		u, ok := p.CanonicalURL(name)
		assert.True(t, ok, name)
		assert.Equal(t, "https://infitask.example.com/", u)
	}

	u, ok := p.CanonicalURL("n8n tasks")
	assert.True(t, ok)
	assert.Equal(t, "https://n8n-tasks-c2i.example.com/", u)

	_, ok = p.CanonicalURL("unknown")
	assert.False(t, ok)
}

func TestCanonicalURLSkipsEmptyEntries(t *testing.T) {
	p := newTestPipeline(t, []AppEntry{{Name: "Empty", URL: ""}})

	_, ok := p.CanonicalURL("empty")
	assert.False(t, ok)
	assert.True(t, p.Registry().Has("empty"))
}

func TestCanonicalURLs(t *testing.T) {
	p := newTestPipeline(t, testEntries)

	assert.Equal(t, []string{
		"https://infitask.example.com/",
		"https://n8n-tasks-c2i.example.com/",
		"https://a.example.com/",
		"https://elsewhere.other.org/",
	}, p.CanonicalURLs())
}

func TestResolveTopAppURL(t *testing.T) {
	p := newTestPipeline(t, testEntries)

	u, ok := p.ResolveTopAppURL("infitask")
	assert.True(t, ok)
	assert.Equal(t, "https://infitask.example.com/", u)

	// Registered, but not on the required domain.
	_, ok = p.ResolveTopAppURL("Elsewhere")
	assert.False(t, ok)

	_, ok = p.ResolveTopAppURL("unknown")
	assert.False(t, ok)
}
