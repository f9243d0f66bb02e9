// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// toUTF8 converts the body to UTF-8. The encoding is taken from the content
// type's charset parameter, or detected if there is none.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	contentType = strings.ToLower(contentType)

	if !strings.Contains(contentType, "charset") {
		if utf8.Valid(body) {
			return body, nil
		}
		r, err := chardet.NewTextDetector().DetectBest(body)
		if err != nil {
			return nil, err
		}
		slog.Debug("Detected character encoding of body.", "charset", r.Charset, "confidence", r.Confidence)

		contentType = "text/plain; charset=" + r.Charset
	}
	if strings.Contains(contentType, "utf-8") || strings.Contains(contentType, "utf8") {
		return body, nil
	}

	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
