// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegistry = `apps:
  - name: InfiTask
    url: https://infytask-mia.caffeine.xyz
  - name: SECoin
    url: https://secoin-ep6.caffeine.xyz
`

func TestLoadRegistryDefault(t *testing.T) {
	r, err := loadRegistry(context.Background(), "", nil, http.DefaultClient)
	require.NoError(t, err)
	assert.True(t, r.Has("infitask"))
}

func TestLoadRegistryFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "apps.yaml")
	require.NoError(t, os.WriteFile(p, []byte(testRegistry), 0644))

	for _, source := range []string{p, "file://" + p} {
		r, err := loadRegistry(context.Background(), source, nil, http.DefaultClient)
		require.NoError(t, err, source)
		assert.Equal(t, []string{"InfiTask", "SECoin"}, r.Names())
	}

	_, err := loadRegistry(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), nil, http.DefaultClient)
	assert.Error(t, err)
}

func TestLoadRegistryFromRedis(t *testing.T) {
	server := miniredis.RunT(t)
	t.Cleanup(server.Close)

	conn := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})
	defer conn.Close()

	server.Set("sitemaphub:registry", testRegistry)

	r, err := loadRegistry(context.Background(), "redis://sitemaphub:registry", conn, http.DefaultClient)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	_, err = loadRegistry(context.Background(), "redis://missing", conn, http.DefaultClient)
	assert.Error(t, err)

	_, err = loadRegistry(context.Background(), "redis://sitemaphub:registry", nil, http.DefaultClient)
	assert.Error(t, err)
}

func TestLoadRegistryFromHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apps.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"name": "InfiTask", "url": "https://infytask-mia.caffeine.xyz"}]`)
	}))
	defer server.Close()

	r, err := loadRegistry(context.Background(), server.URL+"/apps.json", nil, http.DefaultClient)
	require.NoError(t, err)
	assert.Equal(t, []string{"InfiTask"}, r.Names())

	_, err = loadRegistry(context.Background(), server.URL+"/missing.json", nil, http.DefaultClient)
	assert.Error(t, err)
}

func TestLoadRegistryUnsupported(t *testing.T) {
	_, err := loadRegistry(context.Background(), "ftp://example.com/apps.yaml", nil, http.DefaultClient)
	assert.Error(t, err)
}
