// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import "strings"

// Check reports whether an already sanitized URL is a valid app URL for the
// given required domain suffix. It must start with https://, contain the
// suffix, contain neither spaces nor %20, and carry the scheme marker and the
// suffix exactly once each.
func Check(sanitized string, suffix string) bool {
	if sanitized == "" || suffix == "" {
		return false
	}
	if !strings.HasPrefix(sanitized, schemePrefix) {
		return false
	}
	if !strings.Contains(sanitized, suffix) {
		return false
	}
	if strings.Contains(sanitized, " ") || strings.Contains(sanitized, "%20") {
		return false
	}
	// Concatenated URLs, i.e. "https://a.example.comhttps://b.example.com".
	if strings.Count(sanitized, schemePrefix) != 1 {
		return false
	}
	return strings.Count(sanitized, suffix) == 1
}
