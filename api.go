// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"errors"
	"strings"

	"sitemaphub/internal/canon"
)

// MaxBatchSize limits the number of URLs a single API request may carry.
const MaxBatchSize = 10_000

var (
	ErrEmptyRequest   = errors.New("request contains no URLs")
	ErrBatchTooLarge  = errors.New("request contains too many URLs")
	ErrMissingApp     = errors.New("app is required")
	ErrMissingURL     = errors.New("url is required")
	ErrMissingRecords = errors.New("request contains no records")
)

// URLsRequest is accepted by the sanitize, validate and dedup endpoints.
type URLsRequest struct {
	URLs []string `json:"urls"`
}

func (req *URLsRequest) Validate() (bool, error) {
	if len(req.URLs) == 0 {
		return false, ErrEmptyRequest
	}
	if len(req.URLs) > MaxBatchSize {
		return false, ErrBatchTooLarge
	}
	return true, nil
}

type ResolveRequest struct {
	URL     string `json:"url"`
	AppName string `json:"app_name"`
}

func (req *ResolveRequest) Validate() (bool, error) {
	if strings.TrimSpace(req.URL) == "" && strings.TrimSpace(req.AppName) == "" {
		return false, ErrMissingURL
	}
	return true, nil
}

type BatchRequest struct {
	Items []canon.BatchItem `json:"items"`
}

func (req *BatchRequest) Validate() (bool, error) {
	if len(req.Items) == 0 {
		return false, ErrEmptyRequest
	}
	if len(req.Items) > MaxBatchSize {
		return false, ErrBatchTooLarge
	}
	return true, nil
}

// GetURLs returns the URLs of the batch items, for the endpoints that do not
// use the app name hints.
func (req *BatchRequest) GetURLs() []string {
	urls := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		urls = append(urls, item.URL)
	}
	return urls
}

type AppsRequest struct {
	Apps []canon.AppRecord `json:"apps"`
}

func (req *AppsRequest) Validate() (bool, error) {
	if len(req.Apps) > MaxBatchSize {
		return false, ErrBatchTooLarge
	}
	return true, nil
}

type PagesRequest struct {
	Pages []canon.Page `json:"pages"`
}

func (req *PagesRequest) Validate() (bool, error) {
	if len(req.Pages) == 0 {
		return false, ErrMissingRecords
	}
	if len(req.Pages) > MaxBatchSize {
		return false, ErrBatchTooLarge
	}
	return true, nil
}

type ImportRequest struct {
	App         string   `json:"app"`
	IgnorePaths []string `json:"ignore_paths"`
}

func (req *ImportRequest) Validate() (bool, error) {
	if strings.TrimSpace(req.App) == "" {
		return false, ErrMissingApp
	}
	return true, nil
}

type SanitizeResponseItem struct {
	Original  string `json:"original"`
	Sanitized string `json:"sanitized"`
	Fallback  bool   `json:"fallback"`
}

type ValidateResponseItem struct {
	URL       string `json:"url"`
	Sanitized string `json:"sanitized"`
	Valid     bool   `json:"valid"`
}

type ResolveResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
	Via   string `json:"via,omitempty"`
}

type URLsResponse struct {
	URLs []string `json:"urls"`
}

type RegistryResponse struct {
	Suffix string           `json:"suffix"`
	Apps   []canon.AppEntry `json:"apps"`
}

type CanonicalURLResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type SubdomainResponse struct {
	Subdomain string `json:"subdomain"`
}

type AppsResponse struct {
	Apps []canon.AppRecord `json:"apps"`
}

type PagesResponse struct {
	Pages []canon.Page `json:"pages"`
}

type AppDataResponse struct {
	Apps []canon.AppData `json:"apps"`
}

type ImportResponse struct {
	Import SerializableImport `json:"import"`
}

type APIError struct {
	Message string `json:"message"`
}

// isPlaintext reports whether the request body is not JSON. Plaintext
// bodies carry one URL per line.
func isPlaintext(body []byte) bool {
	body = bytes.TrimSpace(body)
	return len(body) > 0 && body[0] != '{' && body[0] != '['
}

// parsePlaintextBatch parses newline-delimited batch lines, see
// canon.ParseBatchLine.
func parsePlaintextBatch(body []byte) []canon.BatchItem {
	var items []canon.BatchItem

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if item, ok := canon.ParseBatchLine(scanner.Text()); ok {
			items = append(items, item)
		}
	}
	return items
}
