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
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/agentstore/core"
	"github.com/poiesic/agentstore/extjson"
)

// Option configures an entry built by New.
type Option func(*core.CacheEntry)

// WithTimestamp sets the creation time instead of now.
func WithTimestamp(t time.Time) Option {
	return func(e *core.CacheEntry) {
		e.CreatedAt = extjson.Truncate(t)
	}
}

// New builds a detached cache entry.
func New(key string, generation int, payload string, opts ...Option) *core.CacheEntry {
	e := &core.CacheEntry{
		Key:        key,
		Generation: generation,
		Payload:    payload,
		CreatedAt:  extjson.Truncate(time.Now()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fresh reports whether entry exists and was produced by generation.
func Fresh(entry *core.CacheEntry, generation int) bool {
	return entry != nil && entry.Generation == generation
}

// KeyFor derives a key from the inputs of a computation: the hex BLAKE2b-256
// digest of the length-prefixed parts. Distinct part lists give distinct
// keys even when their concatenations are equal.
func KeyFor(parts ...string) string {
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
