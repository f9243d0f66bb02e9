// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ImportManager starts imports and keeps the running and recently finished
// ones in memory. Imports that have been evicted are loaded from the store.
type ImportManager struct {
	ctx context.Context // Imports outlive the request starting them.
	wg  sync.WaitGroup

	entries *lru.LRU[string, *Import] // Cannot grow unbound.

	// Shared for all imports.
	store    ImportStore
	importer *Importer
}

func NewImportManager(ctx context.Context, store ImportStore, im *Importer) *ImportManager {
	return &ImportManager{
		ctx:      ctx,
		entries:  lru.NewLRU[string, *Import](MaxParallelImports, nil, ImportTTL),
		store:    store,
		importer: im,
	}
}

// Start prepares an import for the app and runs it in the background.
func (m *ImportManager) Start(ctx context.Context, app string, ignorePaths []string) (SerializableImport, error) {
	imp, err := m.importer.Prepare(app, ignorePaths)
	if err != nil {
		return SerializableImport{}, err
	}
	snap := imp.Snapshot()

	// Make the import available in the store, before it starts running.
	if err := m.store.Save(ctx, snap); err != nil {
		return SerializableImport{}, err
	}
	m.entries.Add(snap.ID, imp)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.importer.Run(m.ctx, imp)
	}()
	return snap, nil
}

func (m *ImportManager) Get(ctx context.Context, id string) (SerializableImport, bool) {
	if imp, ok := m.entries.Get(id); ok {
		return imp.Snapshot(), true
	}
	return m.store.Load(ctx, id)
}

// Wait blocks until all started imports have finished.
func (m *ImportManager) Wait() {
	m.wg.Wait()
}
