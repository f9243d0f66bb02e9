// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"sitemaphub/internal/canon"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxRequestBodySize limits the size of API request bodies.
const maxRequestBodySize = 10 * 1024 * 1024

// requestValidator is implemented by all API requests.
type requestValidator interface {
	Validate() (bool, error)
}

func setupRoutes(p *canon.Pipeline, imports *ImportManager) http.Handler {
	apirouter := http.NewServeMux()

	apirouter.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		r.Body.Close()

		fmt.Fprint(w, "Hello from SitemapHub.")
	})

	apirouter.HandleFunc("POST /sanitize", func(w http.ResponseWriter, r *http.Request) {
		urls, ok := readURLs(w, r)
		if !ok {
			return
		}

		results := make([]SanitizeResponseItem, 0, len(urls))
		for _, u := range urls {
			s := p.SanitizeDetailed(u)
			if s.Fallback {
				PromFallbackTotal.Inc()
			}
			results = append(results, SanitizeResponseItem{
				Original:  u,
				Sanitized: s.URL,
				Fallback:  s.Fallback,
			})
		}
		writeJSON(w, http.StatusOK, results)
	})

	apirouter.HandleFunc("POST /validate", func(w http.ResponseWriter, r *http.Request) {
		urls, ok := readURLs(w, r)
		if !ok {
			return
		}

		results := make([]ValidateResponseItem, 0, len(urls))
		for _, u := range urls {
			s := p.Sanitize(u)

			results = append(results, ValidateResponseItem{
				URL:       u,
				Sanitized: s,
				Valid:     p.Validate(s),
			})
		}
		writeJSON(w, http.StatusOK, results)
	})

	apirouter.HandleFunc("POST /resolve", func(w http.ResponseWriter, r *http.Request) {
		var req ResolveRequest
		if !readJSON(w, r, &req) {
			return
		}

		res := p.Resolve(req.URL, req.AppName)
		observeResolution(res)

		writeJSON(w, http.StatusOK, &ResolveResponse{
			URL:   res.URL,
			State: res.State.String(),
			Via:   res.Via.String(),
		})
	})

	apirouter.HandleFunc("POST /batch", func(w http.ResponseWriter, r *http.Request) {
		req, ok := readBatch(w, r)
		if !ok {
			return
		}

		results := p.BatchValidate(req.Items)
		observeBatch(len(req.Items), results)

		writeJSON(w, http.StatusOK, results)
	})

	apirouter.HandleFunc("POST /dedup", func(w http.ResponseWriter, r *http.Request) {
		urls, ok := readURLs(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, &URLsResponse{
			URLs: canon.DeduplicateURLs(urls),
		})
	})

	apirouter.HandleFunc("GET /registry", func(w http.ResponseWriter, r *http.Request) {
		entries := p.Registry().Entries()

		for i, e := range entries {
			entries[i].URL = p.Sanitize(e.URL)
		}
		writeJSON(w, http.StatusOK, &RegistryResponse{
			Suffix: p.Suffix(),
			Apps:   entries,
		})
	})

	apirouter.HandleFunc("GET /registry/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		u, ok := p.CanonicalURL(name)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown app: %s", name))
			return
		}
		writeJSON(w, http.StatusOK, &CanonicalURLResponse{Name: name, URL: u})
	})

	apirouter.HandleFunc("GET /top-app/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		u, ok := p.ResolveTopAppURL(name)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("No valid canonical URL for app: %s", name))
			return
		}
		writeJSON(w, http.StatusOK, &CanonicalURLResponse{Name: name, URL: u})
	})

	apirouter.HandleFunc("GET /subdomain", func(w http.ResponseWriter, r *http.Request) {
		u := r.URL.Query().Get("url")
		if u == "" {
			writeError(w, http.StatusBadRequest, ErrMissingURL.Error())
			return
		}

		sub, ok := canon.ExtractSubdomain(u)
		if !ok {
			writeError(w, http.StatusNotFound, "URL has no subdomain.")
			return
		}
		writeJSON(w, http.StatusOK, &SubdomainResponse{Subdomain: sub})
	})

	apirouter.HandleFunc("POST /apps/validate", func(w http.ResponseWriter, r *http.Request) {
		var req AppsRequest
		if !readJSON(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, &AppsResponse{
			Apps: p.ValidateApps(req.Apps),
		})
	})

	apirouter.HandleFunc("POST /pages/normalize", func(w http.ResponseWriter, r *http.Request) {
		var req PagesRequest
		if !readJSON(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, &PagesResponse{
			Pages: p.NormalizePages(req.Pages),
		})
	})

	apirouter.HandleFunc("POST /pages/apps", func(w http.ResponseWriter, r *http.Request) {
		var req PagesRequest
		if !readJSON(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, &AppDataResponse{
			Apps: p.AppsFromPages(req.Pages),
		})
	})

	apirouter.HandleFunc("POST /imports", func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Handling incoming request for import...")

		// The context of the HTTP request might contain OpenTelemetry information,
		// i.e. SpanID or TraceID. If this is the case the line below creates
		// a sub span. Otherwise we'll start a new root span here.
		reqctx, span := tracer.Start(r.Context(), "receive_import_request")
		defer span.End()

		var req ImportRequest
		if !readJSON(w, r, &req) {
			return
		}

		imp, err := imports.Start(reqctx, req.App, req.IgnorePaths)
		if err != nil {
			if errors.Is(err, ErrUnknownApp) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.Error("Failed to start import.", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to start import.")
			return
		}
		writeJSON(w, http.StatusAccepted, &ImportResponse{Import: imp})
	})

	apirouter.HandleFunc("GET /imports/{id}", func(w http.ResponseWriter, r *http.Request) {
		imp, ok := imports.Get(r.Context(), r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, "Unknown import.")
			return
		}
		writeJSON(w, http.StatusOK, &ImportResponse{Import: imp})
	})

	if UseMetrics {
		apirouter.Handle("GET /metrics", promhttp.Handler())
	}

	return otelhttp.NewHandler(apirouter, "get_new_request")
}

// setupHealthcheckRoutes sets up a healthcheck route. When Redis is in use
// the service is only healthy while Redis is reachable.
func setupHealthcheckRoutes(rdb *redis.Client) http.Handler {
	hcrouter := http.NewServeMux()

	hcrouter.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		r.Body.Close()

		if rdb != nil {
			if err := rdb.Ping(r.Context()).Err(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintf(w, "Redis unhealthy: %s", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	return hcrouter
}

// readBody reads the request body and converts it to UTF-8.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	r.Body.Close()
	if err != nil {
		return nil, err
	}
	return toUTF8(body, r.Header.Get("Content-Type"))
}

// readJSON decodes and validates a JSON request. On failure an error response
// has been written and false is returned.
func readJSON(w http.ResponseWriter, r *http.Request, req requestValidator) bool {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := json.Unmarshal(body, req); err != nil {
		slog.Error("Failed to parse incoming JSON.", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return validateRequest(w, req)
}

// readBatch accepts a JSON BatchRequest or newline-delimited plaintext.
func readBatch(w http.ResponseWriter, r *http.Request) (*BatchRequest, bool) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	req := &BatchRequest{}
	if isPlaintext(body) {
		// Support newline-delimited URLs in plaintext for minimalism.
		req.Items = parsePlaintextBatch(body)
	} else if err := json.Unmarshal(body, req); err != nil {
		slog.Error("Failed to parse incoming JSON.", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req, validateRequest(w, req)
}

// readURLs accepts a JSON URLsRequest or newline-delimited plaintext.
func readURLs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	req := &URLsRequest{}
	if isPlaintext(body) {
		req.URLs = (&BatchRequest{Items: parsePlaintextBatch(body)}).GetURLs()
	} else if err := json.Unmarshal(body, req); err != nil {
		slog.Error("Failed to parse incoming JSON.", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req.URLs, validateRequest(w, req)
}

func validateRequest(w http.ResponseWriter, req requestValidator) bool {
	if ok, err := req.Validate(); !ok {
		msg := "Invalid request."
		if err != nil {
			msg = err.Error()
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response.", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, &APIError{Message: msg})
}
