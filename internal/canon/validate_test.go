// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import "testing"

func TestCheck(t *testing.T) {
	tcs := []struct {
		url      string
		suffix   string
		expected bool
	}{
		{"https://x.example.com/", ".example.com", true},
		{"https://x.example.com/about", ".example.com", true},
		{"http://x.example.com/", ".example.com", false},
		{"x.example.com", ".example.com", false},
		{"https://x.other.org/", ".example.com", false},
		{"https://x.example.com/a%20b", ".example.com", false},
		{"https://x.example.com/a b", ".example.com", false},
		{"https://x.example.com/https://y", ".example.com", false},
		{"https://x.example.com.example.com/", ".example.com", false},
		{"https://a.example.comb.example.com/", ".example.com", false},
		{"", ".example.com", false},
		{"https://x.example.com/", "", false},
	}

	for _, tc := range tcs {
		if got := Check(tc.url, tc.suffix); got != tc.expected {
			t.Errorf("Check(%q, %q): expected %v, got %v", tc.url, tc.suffix, tc.expected, got)
		}
	}
}
