// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUTF8WithDeclaredCharset(t *testing.T) {
	body, err := toUTF8([]byte("Caf\xe9\thttps://cafe.caffeine.xyz/"), "text/plain; charset=ISO-8859-1")
	require.NoError(t, err)

	assert.Equal(t, "Café\thttps://cafe.caffeine.xyz/", string(body))
}

func TestToUTF8KeepsUTF8(t *testing.T) {
	in := []byte("Café\thttps://cafe.caffeine.xyz/")

	body, err := toUTF8(in, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, in, body)

	body, err = toUTF8(in, "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, in, body)
}

func TestToUTF8DetectsCharset(t *testing.T) {
	in := []byte("Cr\xe8me br\xfbl\xe9e, caf\xe9 et th\xe9 \xe0 la fran\xe7aise pour tout le monde.\n")

	body, err := toUTF8(in, "")
	require.NoError(t, err)
	assert.True(t, len(body) > len(in), "expected multibyte UTF-8 output")
}
