// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry([]AppEntry{
		{Name: "InfiTask", URL: "https://infitask.example.com/"},
		{Name: "SECoin", URL: "https://secoin.example.com/"},
	})

	for _, name := range []string{"InfiTask", "infitask", "  INFITASK  "} {
		u, ok := r.Lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, "https://infitask.example.com/", u)
	}

	_, ok := r.Lookup("unknown")
	assert.False(t, ok)

	_, ok = r.Lookup("   ")
	assert.False(t, ok)

	assert.True(t, r.Has("secoin"))
	assert.False(t, r.Has(""))
}

func TestRegistryDuplicateNames(t *testing.T) {
	r := NewRegistry([]AppEntry{
		{Name: "A", URL: "https://one.example.com/"},
		{Name: "B", URL: "https://two.example.com/"},
		{Name: "a", URL: "https://three.example.com/"},
	})

	assert.Equal(t, []string{"A", "B", "a"}, r.Names())
	assert.Equal(t, 2, r.Len())

	u, _ := r.Lookup("A")
	assert.Equal(t, "https://three.example.com/", u)
	assert.Equal(t, []string{"https://three.example.com/", "https://two.example.com/"}, r.rawURLs())
}

func TestRegistryCopiesEntries(t *testing.T) {
	entries := []AppEntry{{Name: "A", URL: "https://one.example.com/"}}
	r := NewRegistry(entries)

	entries[0].URL = "https://changed.example.com/"
	assert.Equal(t, "https://one.example.com/", r.Entries()[0].URL)

	r.Entries()[0].URL = "https://changed.example.com/"
	assert.Equal(t, "https://one.example.com/", r.Entries()[0].URL)
}

func TestNilRegistry(t *testing.T) {
	var r *Registry

	assert.False(t, r.Has("a"))
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Names())
	assert.Empty(t, r.Entries())
}
