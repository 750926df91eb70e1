// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/agentstore/core"
)

// Local is an in-process front cache over a DAO. Reads are served from
// memory when possible; writes and deletes go to both. Entries written by
// other processes are seen only after a local miss.
type Local struct {
	inner  DAO
	mem    *ristretto.Cache[string, *core.CacheEntry]
	logger *slog.Logger

	// version counts completed writes and deletes. A read-through fill is
	// dropped when it changed while the inner read was in flight.
	mu      sync.Mutex
	version uint64
}

var _ DAO = (*Local)(nil)

// NewLocal wraps inner with an in-process cache holding up to size entries.
func NewLocal(inner DAO, size int64) (*Local, error) {
	if size <= 0 {
		return nil, errors.New("local cache size must be positive")
	}
	mem, err := ristretto.NewCache(&ristretto.Config[string, *core.CacheEntry]{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Local{
		inner:  inner,
		mem:    mem,
		logger: slog.Default().With("component", "cache"),
	}, nil
}

// InsertCache implements DAO.
func (l *Local) InsertCache(ctx context.Context, entry *core.CacheEntry) (*core.CacheEntry, error) {
	stored, err := l.inner.InsertCache(ctx, entry)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.version++
	l.remember(stored)
	return stored, nil
}

// FindByID implements DAO.
func (l *Local) FindByID(ctx context.Context, key string) (*core.CacheEntry, error) {
	if e, ok := l.mem.Get(key); ok {
		l.logger.Debug("local hit", "key", key)
		c := *e
		return &c, nil
	}
	l.mu.Lock()
	seen := l.version
	l.mu.Unlock()

	e, err := l.inner.FindByID(ctx, key)
	if err != nil || e == nil {
		return e, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.version == seen {
		l.remember(e)
	}
	return e, nil
}

// DeleteCacheWithID implements DAO.
func (l *Local) DeleteCacheWithID(ctx context.Context, key string) error {
	if err := l.inner.DeleteCacheWithID(ctx, key); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.version++
	l.mem.Del(key)
	l.mem.Wait()
	return nil
}

// Close releases the in-process cache. The inner DAO is left alone.
func (l *Local) Close() {
	l.mem.Close()
}

func (l *Local) remember(e *core.CacheEntry) {
	c := *e
	l.mem.Set(e.Key, &c, 1)
}
