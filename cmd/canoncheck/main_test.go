// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInput = `# Apps to check
https://infytask-mia.caffeine.xyz
http://https://INFYTASK-MIA.caffeine.xyz/
SECoin	https://secoin.example.com
https://nowhere.other.org/
`

func TestRun(t *testing.T) {
	var out bytes.Buffer

	err := run(nil, strings.NewReader(testInput), &out, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"https://infytask-mia.caffeine.xyz/\tvalid",
		"https://infytask-mia.caffeine.xyz/\tvalid",
		"https://secoin-ep6.caffeine.xyz/\tresolved",
		"",
	}, "\n"), out.String())
}

func TestRunDedup(t *testing.T) {
	var out bytes.Buffer

	err := run([]string{"-dedup"}, strings.NewReader(testInput), &out, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
}

func TestRunWithRegistryAndFile(t *testing.T) {
	dir := t.TempDir()

	registry := filepath.Join(dir, "apps.yaml")
	require.NoError(t, os.WriteFile(registry, []byte("- name: Shop\n  url: https://shop.example.org\n"), 0644))

	input := filepath.Join(dir, "urls.txt")
	require.NoError(t, os.WriteFile(input, []byte("Shop\thttps://wrong.other.net\nhttps://shop.example.org/cart\n"), 0644))

	var out bytes.Buffer
	err := run([]string{"-suffix", ".example.org", "-registry", registry, input}, nil, &out, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.org/\tresolved\nhttps://shop.example.org/cart\tvalid\n", out.String())
}

func TestRunInvalidFlags(t *testing.T) {
	err := run([]string{"-suffix", ""}, strings.NewReader(""), io.Discard, io.Discard)
	assert.Error(t, err)

	err = run([]string{"-unknown"}, strings.NewReader(""), io.Discard, io.Discard)
	assert.Error(t, err)
}
