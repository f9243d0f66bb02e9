// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchValidateFiltersDropped(t *testing.T) {
	p := newTestPipeline(t, testEntries)

	results := p.BatchValidate([]BatchItem{
		{URL: "garbage"},
		{URL: "https://b.example.com/"},
	})

	assert.Equal(t, []BatchResult{
		{Original: "https://b.example.com/", Resolved: "https://b.example.com/", IsValid: true},
	}, results)
}

func TestBatchValidateKeepsOrder(t *testing.T) {
	p := newTestPipeline(t, testEntries)

	results := p.BatchValidate([]BatchItem{
		{URL: "c.example.com"},
		{URL: "garbage", AppName: "InfiTask"},
		{URL: "not a url at all"},
		{URL: "https://a.example.com/"},
	})

	assert.Equal(t, []BatchResult{
		{Original: "c.example.com", Resolved: "https://c.example.com/", IsValid: true},
		{Original: "garbage", Resolved: "https://infitask.example.com/", WasResolved: true},
		{Original: "https://a.example.com/", Resolved: "https://a.example.com/", IsValid: true},
	}, results)
}

func TestBatchValidateEmpty(t *testing.T) {
	p := newTestPipeline(t, nil)
	assert.Empty(t, p.BatchValidate(nil))
}

func TestDeduplicateURLs(t *testing.T) {
	deduped := DeduplicateURLs([]string{
		"https://a.example.com/",
		"https://A.EXAMPLE.COM/",
		"https://b.example.com/",
	})
	assert.Equal(t, []string{"https://a.example.com/", "https://b.example.com/"}, deduped)

	deduped = DeduplicateURLs([]string{"", "x.example.com", "http://x.example.com"})
	assert.Equal(t, []string{"https://x.example.com/"}, deduped)
}

func TestDeduplicateByURL(t *testing.T) {
	type link struct {
		Title string
		URL   string
	}
	items := []link{
		{"first", "https://a.example.com"},
		{"second", "a.example.com/"},
		{"third", "https://b.example.com/"},
		{"empty", ""},
	}

	deduped := DeduplicateByURL(items, func(l link) string { return l.URL })

	assert.Equal(t, []link{
		{"first", "https://a.example.com"},
		{"third", "https://b.example.com/"},
	}, deduped)
}

func TestParseBatchLine(t *testing.T) {
	tcs := []struct {
		line     string
		expected BatchItem
		ok       bool
	}{
		{"https://a.example.com/", BatchItem{URL: "https://a.example.com/"}, true},
		{"InfiTask\tgarbage", BatchItem{URL: "garbage", AppName: "InfiTask"}, true},
		{"  N8n Tasks \t https://n8n.example.com  ", BatchItem{URL: "https://n8n.example.com", AppName: "N8n Tasks"}, true},
		{"", BatchItem{}, false},
		{"   ", BatchItem{}, false},
		{"# comment", BatchItem{}, false},
	}

	for _, tc := range tcs {
		item, ok := ParseBatchLine(tc.line)

		assert.Equal(t, tc.ok, ok, tc.line)
		assert.Equal(t, tc.expected, item, tc.line)
	}
}
