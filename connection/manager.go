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


// Package connection keeps a registry of named store connections.
//
// A Manager is built from a database name and a URI. Each alias connected
// through it gets its own store handle; aliases that resolve to the same
// engine share it, and the engine is closed when its last alias
// disconnects.
package connection

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/poiesic/agentstore/storage"
	"github.com/poiesic/agentstore/storage/badger"
)

// DefaultAlias is used when an alias is empty.
const DefaultAlias = "default"

// ErrUnsupportedURI indicates a URI whose scheme no engine handles.
var ErrUnsupportedURI = errors.New("unsupported connection URI")

// Engine opens the backend for a target. Replaceable in tests.
type Engine func(target string, inMemory bool) (*badger.Backend, error)

type engine struct {
	backend *badger.Backend
	refs    int
}

type connection struct {
	target string
	store  *badger.Store
}

// Manager is a mutex-guarded registry of alias connections.
type Manager struct {
	database string
	dir      string
	inMemory bool
	open     Engine

	mu      sync.Mutex
	engines map[string]*engine
	aliases map[string]*connection
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager) error

// WithEngine replaces the function that opens backends.
func WithEngine(open Engine) Option {
	return func(m *Manager) error {
		if open == nil {
			return errors.New("nil engine")
		}
		m.open = open
		return nil
	}
}

// NewManager parses uri and returns a Manager for database. Supported
// URIs are badger:///abs/dir, which keeps each database in a directory
// under dir, and memory://, which keeps everything in process memory.
func NewManager(database, uri string, opts ...Option) (*Manager, error) {
	if database == "" {
		return nil, fmt.Errorf("%w: empty database name", ErrUnsupportedURI)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedURI, err)
	}

	m := &Manager{
		database: database,
		open:     badger.OpenBackend,
		engines:  make(map[string]*engine),
		aliases:  make(map[string]*connection),
		logger:   slog.Default().With("component", "connection"),
	}

	switch u.Scheme {
	case "badger":
		if u.Host != "" || u.Path == "" {
			return nil, fmt.Errorf("%w: %q must be badger:///absolute/path", ErrUnsupportedURI, uri)
		}
		m.dir = filepath.Clean(u.Path)
	case "memory":
		m.inMemory = true
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedURI, u.Scheme)
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Database returns the logical database name.
func (m *Manager) Database() string {
	return m.database
}

func (m *Manager) target() string {
	if m.inMemory {
		return "memory://" + m.database
	}
	return filepath.Join(m.dir, m.database)
}

// Connect establishes the alias's connection, or reuses it if the alias is
// already connected.
func (m *Manager) Connect(alias string) (storage.Store, error) {
	alias = normalize(alias)

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.aliases[alias]; ok {
		return c.store, nil
	}

	target := m.target()
	e, ok := m.engines[target]
	if !ok {
		backend, err := m.open(target, m.inMemory)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrStoreUnavailable, err)
		}
		e = &engine{backend: backend}
		m.engines[target] = e
		m.logger.Info("opened engine", "target", target)
	}

	store, err := badger.NewStore(e.backend, m.database)
	if err != nil {
		if e.refs == 0 {
			e.backend.Close()
			delete(m.engines, target)
		}
		return nil, err
	}
	e.refs++
	m.aliases[alias] = &connection{target: target, store: store}
	m.logger.Debug("connected", "alias", alias, "target", target)
	return store, nil
}

// Disconnect releases the alias. Unknown aliases are ignored.
func (m *Manager) Disconnect(alias string) error {
	alias = normalize(alias)

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.disconnect(alias)
}

func (m *Manager) disconnect(alias string) error {
	c, ok := m.aliases[alias]
	if !ok {
		return nil
	}
	delete(m.aliases, alias)
	if err := c.store.Close(); err != nil {
		return err
	}

	e := m.engines[c.target]
	e.refs--
	m.logger.Debug("disconnected", "alias", alias, "target", c.target)
	if e.refs > 0 {
		return nil
	}
	delete(m.engines, c.target)
	m.logger.Info("closing engine", "target", c.target)
	return e.backend.Close()
}

// Store returns the alias's store, or storage.ErrStoreUnavailable when the
// alias is not connected.
func (m *Manager) Store(alias string) (storage.Store, error) {
	alias = normalize(alias)

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.aliases[alias]
	if !ok {
		return nil, fmt.Errorf("%w: alias %q is not connected", storage.ErrStoreUnavailable, alias)
	}
	return c.store, nil
}

// Aliases returns the connected aliases.
func (m *Manager) Aliases() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.aliases))
	for alias := range m.aliases {
		out = append(out, alias)
	}
	return out
}

// Close disconnects every alias.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for alias := range m.aliases {
		errs = append(errs, m.disconnect(alias))
	}
	return errors.Join(errs...)
}

func normalize(alias string) string {
	if alias == "" {
		return DefaultAlias
	}
	return alias
}
