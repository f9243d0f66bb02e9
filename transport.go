// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"net/http"
)

// UserAgentTransport sets the User-Agent header on all outgoing requests.
type UserAgentTransport struct {
	Transport http.RoundTripper
	UserAgent string
}

func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.UserAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.UserAgent)
	}
	return t.Transport.RoundTrip(req)
}

// ThrottledTransport waits for the host's rate limit before passing the
// request on. Responses served from cache never reach this transport.
type ThrottledTransport struct {
	Transport http.RoundTripper
	limiter   *HostLimiter
}

func (t *ThrottledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context(), req.URL.String()); err != nil {
		return nil, err
	}
	PromDiscoveryRequestsTotal.Inc()

	return t.Transport.RoundTrip(req)
}
