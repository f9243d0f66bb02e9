// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"sitemaphub/internal/canon"
	"sitemaphub/internal/result"

	"github.com/google/uuid"
	ignore "github.com/sabhiram/go-gitignore"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrUnknownApp         = errors.New("app has no canonical URL and no valid URL can be derived from it")
	ErrDisallowedByRobots = errors.New("base URL is disallowed by robots.txt")
)

type ImportStatus string

const (
	ImportStatusPending ImportStatus = "pending"
	ImportStatusRunning ImportStatus = "running"
	ImportStatusDone    ImportStatus = "done"
	ImportStatusFailed  ImportStatus = "failed"
)

// Import is a single discovery run for one app. Its URLs are discovered
// through sitemaps or links on the app's base page and run through the
// canonicalization pipeline.
//
// An Import is updated while it runs, use Snapshot to read it.
type Import struct {
	mu sync.RWMutex
	s  SerializableImport
}

// SerializableImport is the plain data of an Import. It is what gets stored
// and returned from the API.
type SerializableImport struct {
	ID          string   `json:"id"`
	App         string   `json:"app"`
	BaseURL     string   `json:"base_url"`
	IgnorePaths []string `json:"ignore_paths,omitempty"`

	Status ImportStatus `json:"status"`
	Error  string       `json:"error,omitempty"`

	Source     result.DiscoverySource `json:"source,omitempty"`
	Sitemaps   []string               `json:"sitemaps,omitempty"`
	Discovered int                    `json:"discovered"`
	Results    []canon.BatchResult    `json:"results,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (i *Import) Snapshot() SerializableImport {
	i.mu.RLock()
	defer i.mu.RUnlock()

	s := i.s
	s.IgnorePaths = slices.Clone(i.s.IgnorePaths)
	s.Sitemaps = slices.Clone(i.s.Sitemaps)
	s.Results = slices.Clone(i.s.Results)
	return s
}

func (i *Import) update(fn func(s *SerializableImport)) {
	i.mu.Lock()
	defer i.mu.Unlock()

	fn(&i.s)
}

// Importer executes imports. It is shared between all imports.
type Importer struct {
	pipeline *canon.Pipeline
	robots   *Robots
	sitemaps *Sitemaps
	client   *http.Client
	store    ImportStore
	reporter result.Reporter

	UserAgent string
	MaxURLs   int
}

func NewImporter(p *canon.Pipeline, ro *Robots, si *Sitemaps, client *http.Client, store ImportStore, rr result.Reporter) *Importer {
	return &Importer{
		pipeline:  p,
		robots:    ro,
		sitemaps:  si,
		client:    client,
		store:     store,
		reporter:  rr,
		UserAgent: UserAgent,
		MaxURLs:   MaxImportURLs,
	}
}

// BaseURL returns the URL discovery starts from. This is the app's canonical
// URL or, for unknown apps, the URL derived from using the app identifier as
// subdomain. An identifier that already is a URL is resolved as is.
func (im *Importer) BaseURL(app string) (string, error) {
	app = strings.TrimSpace(app)
	if app == "" {
		return "", ErrUnknownApp
	}
	if u, ok := im.pipeline.CanonicalURL(app); ok {
		return u, nil
	}
	if strings.Contains(app, "://") {
		if u := im.pipeline.ResolveOrDrop(app, ""); u != "" {
			return u, nil
		}
		return "", ErrUnknownApp
	}

	label := strings.ToLower(strings.Join(strings.Fields(app), "-"))
	u := im.pipeline.Sanitize("https://" + label + im.pipeline.Suffix())
	if _, ok := canon.ExtractSubdomain(u); !ok || !im.pipeline.Validate(u) {
		return "", ErrUnknownApp
	}
	return u, nil
}

// Prepare creates a new pending Import for the app.
func (im *Importer) Prepare(app string, ignorePaths []string) (*Import, error) {
	base, err := im.BaseURL(app)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, app)
	}
	return &Import{
		s: SerializableImport{
			ID:          uuid.NewString(),
			App:         strings.TrimSpace(app),
			BaseURL:     base,
			IgnorePaths: ignorePaths,
			Status:      ImportStatusPending,
			CreatedAt:   time.Now().UTC(),
		},
	}, nil
}

// Run discovers the import's URLs, validates them and reports the result.
// The import is saved to the store whenever its status changes.
func (im *Importer) Run(ctx context.Context, imp *Import) error {
	snap := imp.Snapshot()

	ctx, span := tracer.Start(ctx, "import.run", trace.WithAttributes(
		attribute.String("import.id", snap.ID),
		attribute.String("import.app", snap.App),
	))
	defer span.End()

	logger := slog.With("import", snap.ID, "app", snap.App, "url", snap.BaseURL)
	logger.Info("Import: Starting...")

	imp.update(func(s *SerializableImport) {
		s.Status = ImportStatusRunning
	})
	im.save(ctx, imp)

	source, sitemaps, items, err := im.discover(ctx, snap)
	if err != nil {
		logger.Error("Import: Failed.", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		im.finish(ctx, imp, func(s *SerializableImport) {
			s.Status = ImportStatusFailed
			s.Error = err.Error()
		})
		return err
	}

	results := im.pipeline.BatchValidate(items)
	results = canon.DeduplicateByURL(results, func(r canon.BatchResult) string {
		return r.Resolved
	})
	observeBatch(len(items), results)

	im.finish(ctx, imp, func(s *SerializableImport) {
		s.Status = ImportStatusDone
		s.Source = source
		s.Sitemaps = sitemaps
		s.Discovered = len(items)
		s.Results = results
	})
	logger.Info("Import: Finished.", "source", source, "discovered", len(items), "kept", len(results))

	snap = imp.Snapshot()
	report := &result.Report{
		Import:     snap.ID,
		App:        snap.App,
		BaseURL:    snap.BaseURL,
		Source:     snap.Source,
		Sitemaps:   snap.Sitemaps,
		Discovered: snap.Discovered,
		Results:    snap.Results,
		FinishedAt: *snap.FinishedAt,
	}
	if err := im.reporter(ctx, report); err != nil {
		logger.Error("Import: Failed to report result.", "error", err)
	}
	return nil
}

func (im *Importer) finish(ctx context.Context, imp *Import, fn func(s *SerializableImport)) {
	now := time.Now().UTC()

	imp.update(func(s *SerializableImport) {
		fn(s)
		s.FinishedAt = &now
	})
	im.save(ctx, imp)

	PromImportsTotal.WithLabelValues(string(imp.Snapshot().Status)).Inc()
}

func (im *Importer) save(ctx context.Context, imp *Import) {
	snap := imp.Snapshot()

	if err := im.store.Save(ctx, snap); err != nil {
		slog.Error("Import: Failed to save import.", "import", snap.ID, "error", err)
	}
}

// discover collects URLs for the import. Sitemaps found via robots.txt or at
// the well known location are tried first. When they yield nothing, sitemaps
// linked from the base page are tried and finally the links on the base
// page itself.
func (im *Importer) discover(ctx context.Context, imp SerializableImport) (result.DiscoverySource, []string, []canon.BatchItem, error) {
	if ok, err := im.robots.Check(ctx, im.UserAgent, imp.BaseURL); err != nil {
		return result.DiscoverySourceNone, nil, nil, err
	} else if !ok {
		return result.DiscoverySourceNone, nil, nil, ErrDisallowedByRobots
	}

	c := newURLCollector(imp.IgnorePaths, im.MaxURLs)

	source := result.DiscoverySourceSitemap
	if fromRobots, _ := im.robots.Sitemaps(ctx, imp.BaseURL); len(fromRobots) > 0 {
		source = result.DiscoverySourceRobots
	}
	sitemaps := im.sitemaps.Discover(ctx, imp.BaseURL)

	if err := im.drainAll(ctx, sitemaps, c); err != nil {
		return source, sitemaps, nil, err
	}
	if c.Len() > 0 {
		return source, sitemaps, c.Items(), nil
	}

	page, err := FetchPage(ctx, im.client, imp.BaseURL)
	if err != nil {
		slog.Warn("Import: Failed to fetch base page for link discovery.", "import", imp.ID, "error", err)
		return result.DiscoverySourceNone, sitemaps, nil, nil
	}

	if len(page.Sitemaps) > 0 {
		if err := im.drainAll(ctx, page.Sitemaps, c); err != nil {
			return result.DiscoverySourceSitemap, page.Sitemaps, nil, err
		}
		if c.Len() > 0 {
			return result.DiscoverySourceSitemap, page.Sitemaps, c.Items(), nil
		}
	}

	host := GetHostFromURL(imp.BaseURL)
	c.Add(imp.BaseURL)
	for _, l := range page.Links {
		if GetHostFromURL(l) != host {
			continue
		}
		if c.Add(l) != nil {
			break
		}
	}
	return result.DiscoverySourceLink, sitemaps, c.Items(), nil
}

func (im *Importer) drainAll(ctx context.Context, sitemaps []string, c *urlCollector) error {
	for _, s := range sitemaps {
		if c.Full() {
			return nil
		}
		if err := im.sitemaps.Drain(ctx, s, c.Add); err != nil {
			slog.Warn("Import: Failed to drain sitemap, skipping.", "url", s, "error", err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
	return nil
}

// urlCollector gathers unique URLs not matching any of the ignore patterns,
// up to a maximum. The patterns use gitignore syntax and are matched against
// the URL path.
type urlCollector struct {
	ignore *ignore.GitIgnore
	max    int

	seen  map[string]bool
	items []canon.BatchItem
}

func newURLCollector(ignorePaths []string, max int) *urlCollector {
	return &urlCollector{
		ignore: ignore.CompileIgnoreLines(ignorePaths...),
		max:    max,
		seen:   make(map[string]bool),
	}
}

// Add returns ErrStopDrain once the collector is full.
func (c *urlCollector) Add(u string) error {
	if c.Full() {
		return ErrStopDrain
	}
	u = strings.TrimSpace(u)
	if u == "" || c.seen[u] {
		return nil
	}
	c.seen[u] = true

	if p, err := url.Parse(u); err == nil && p.Path != "" && c.ignore.MatchesPath(p.Path) {
		slog.Debug("Import: Ignoring URL, path is ignored.", "url", u)
		return nil
	}
	c.items = append(c.items, canon.BatchItem{URL: u})

	if c.Full() {
		return ErrStopDrain
	}
	return nil
}

func (c *urlCollector) Full() bool {
	return c.max > 0 && len(c.items) >= c.max
}

func (c *urlCollector) Len() int {
	return len(c.items)
}

func (c *urlCollector) Items() []canon.BatchItem {
	return c.items
}
