// Copyright 2024 Factorial GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// maxStoredImports bounds the in-memory store.
const maxStoredImports = 10_000

// ImportStore stores imports for later retrieval. Stored imports expire
// after ImportTTL.
type ImportStore interface {
	Save(context.Context, SerializableImport) error
	Load(context.Context, string) (SerializableImport, bool)
	Delete(context.Context, string)
}

func CreateImportStore(redis *redis.Client) ImportStore {
	if redis != nil {
		return &RedisImportStore{conn: redis}
	}
	return &MemoryImportStore{
		imports: lru.NewLRU[string, SerializableImport](maxStoredImports, nil, ImportTTL),
	}
}

type MemoryImportStore struct {
	imports *lru.LRU[string, SerializableImport] // Internally synchronized.
}

func (s *MemoryImportStore) Save(ctx context.Context, imp SerializableImport) error {
	s.imports.Add(imp.ID, imp)
	return nil
}

func (s *MemoryImportStore) Load(ctx context.Context, id string) (SerializableImport, bool) {
	return s.imports.Get(id)
}

func (s *MemoryImportStore) Delete(ctx context.Context, id string) {
	s.imports.Remove(id)
}

type RedisImportStore struct {
	conn *redis.Client
}

func redisImportKey(id string) string {
	return fmt.Sprintf("import:%s", id)
}

func (s *RedisImportStore) Save(ctx context.Context, imp SerializableImport) error {
	b, err := json.Marshal(imp)
	if err != nil {
		return err
	}
	return s.conn.Set(ctx, redisImportKey(imp.ID), string(b), ImportTTL).Err()
}

// Load loads an import from Redis.
func (s *RedisImportStore) Load(ctx context.Context, id string) (SerializableImport, bool) {
	var imp SerializableImport

	reply := s.conn.Get(ctx, redisImportKey(id))
	if err := reply.Err(); err != nil {
		return imp, false
	}
	if err := json.Unmarshal([]byte(reply.Val()), &imp); err != nil {
		return imp, false
	}
	return imp, true
}

func (s *RedisImportStore) Delete(ctx context.Context, id string) {
	s.conn.Del(ctx, redisImportKey(id))
}
