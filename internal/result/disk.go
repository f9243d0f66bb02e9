// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kennygrant/sanitize"
)

type DiskConfig struct {
	OutputDir string `json:"output_dir"`
}

// LogFormat returns a string representation of the config suitable for logging
func (c DiskConfig) LogFormat() string {
	return fmt.Sprintf("disk(output_dir=%s)", c.OutputDir)
}

// NewDiskConfigFromDSN parses a DSN in the format disk://<dir> or
// disk:///<absolute dir>. When constrainPaths is true the directory must be
// below the current working directory.
func NewDiskConfigFromDSN(dsn string, constrainPaths bool) (DiskConfig, error) {
	config := DiskConfig{}

	u, err := url.Parse(dsn)
	if err != nil {
		return config, fmt.Errorf("invalid disk result reporter DSN: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return config, fmt.Errorf("invalid disk result reporter DSN: %w", err)
	}

	// If a relative single path element is provided it is parsed as the host.
	var p string
	if u.Host != "" {
		p = filepath.Join(u.Host, u.Path)
	} else {
		p = u.Path
	}
	if p == "" {
		return config, fmt.Errorf("invalid disk result reporter DSN: missing output directory")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return config, fmt.Errorf("invalid disk result reporter DSN: %w", err)
	}

	if constrainPaths && !strings.HasPrefix(abs, wd) {
		return config, fmt.Errorf("output directory (%s) must be below the current working directory (%s)", abs, wd)
	}
	config.OutputDir = abs

	return config, nil
}

// ReportToDisk stores reports on disk as JSON files, grouped by app. The
// directory structure is as follows:
//
//	<output_dir>/
//		<app>/
//			<import_uuid>.json
//
// The app directory name is the app name made safe for use as a file name.
func ReportToDisk(ctx context.Context, config DiskConfig, r *Report) error {
	logger := slog.With("import", r.Import, "app", r.App)
	logger.Debug("Result reporter: Saving report to file...")

	appDir := filepath.Join(config.OutputDir, appDirName(r.App))

	// MkdirAll ignores errors where the directory exists, so we don't need to check for it.
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(appDir, sanitize.BaseName(r.Import)+".json"), jsonData, 0644)
}

func appDirName(app string) string {
	name := strings.ToLower(sanitize.BaseName(strings.TrimSpace(app)))
	if strings.Trim(name, ".-") == "" {
		return "_unknown"
	}
	return name
}
