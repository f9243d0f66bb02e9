// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var defaultRegistry []byte

var ErrEmptyRegistry = errors.New("registry file contains no apps")

type fileEntry struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Verified *bool  `yaml:"verified"`
}

type registryFile struct {
	Apps []fileEntry `yaml:"apps"`

	// Layout of the platform's integration config.
	Integration struct {
		Apps []fileEntry `yaml:"apps"`
	} `yaml:"secoinfi_integration"`
}

// ParseRegistry parses a YAML or JSON registry file. The file is either a
// list of {name, url} objects, or a mapping with such a list under "apps"
// or "secoinfi_integration.apps". Entries without a name and entries marked
// as not verified are skipped.
func ParseRegistry(data []byte) ([]AppEntry, error) {
	var raw []fileEntry

	if err := yaml.Unmarshal(data, &raw); err != nil {
		var file registryFile

		if errf := yaml.Unmarshal(data, &file); errf != nil {
			return nil, fmt.Errorf("failed to parse registry file: %w", errf)
		}
		raw = file.Apps
		if len(raw) == 0 {
			raw = file.Integration.Apps
		}
	}

	entries := make([]AppEntry, 0, len(raw))
	for _, e := range raw {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		if e.Verified != nil && !*e.Verified {
			continue
		}
		entries = append(entries, AppEntry{Name: e.Name, URL: strings.TrimSpace(e.URL)})
	}
	if len(entries) == 0 {
		return nil, ErrEmptyRegistry
	}
	return entries, nil
}

// DefaultRegistry returns the registry of the platform's known apps, as
// shipped with this package.
func DefaultRegistry() *Registry {
	entries, err := ParseRegistry(defaultRegistry)
	if err != nil {
		panic(err)
	}
	return NewRegistry(entries)
}
