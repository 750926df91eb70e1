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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/agentstore/storage"
	"github.com/tidwall/gjson"
)

// Store implements storage.Store on a Backend. Documents of one logical
// database live under keys prefixed with the database name.
type Store struct {
	backend  *Backend
	database string
	owned    bool
	closed   atomic.Bool
	logger   *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// NewStore creates a Store for database on a shared backend. Closing the
// Store leaves the backend open.
func NewStore(backend *Backend, database string) (*Store, error) {
	if err := validateName("database", database); err != nil {
		return nil, err
	}
	return &Store{
		backend:  backend,
		database: database,
		logger:   slog.Default().With("component", "store", "database", database),
	}, nil
}

// OpenStore opens a backend and a Store owning it.
func OpenStore(filePath, database string, inMemory bool) (*Store, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}
	s, err := NewStore(backend, database)
	if err != nil {
		backend.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// Database returns the logical database name.
func (s *Store) Database() string {
	return s.database
}

// Close makes every later operation fail with storage.ErrStoreUnavailable.
// The backend is closed only if the Store owns it.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.owned {
		return s.backend.Close()
	}
	return nil
}

// Insert implements storage.Store.
func (s *Store) Insert(ctx context.Context, collection string, doc []byte) ([]byte, error) {
	id := storage.DocumentID(doc)
	if id == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		id = u.String()
	}
	stored, err := storage.StampID(doc, id)
	if err != nil {
		return nil, err
	}

	err = s.run(ctx, collection, true, func(tx *badger.Txn) error {
		key := makeDocumentKey(s.database, collection, id)
		_, err := tx.Get(key)
		if err == nil {
			return fmt.Errorf("%w: %s/%s", storage.ErrDuplicateKey, collection, id)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := tx.Set(key, stored); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("inserted", "collection", collection, "id", id)
	return stored, nil
}

// Put implements storage.Store.
func (s *Store) Put(ctx context.Context, collection, id string, doc []byte) ([]byte, error) {
	if id == "" {
		return nil, storage.ErrInvalidID
	}
	stored, err := storage.StampID(doc, id)
	if err != nil {
		return nil, err
	}
	err = s.run(ctx, collection, true, func(tx *badger.Txn) error {
		if err := tx.Set(makeDocumentKey(s.database, collection, id), stored); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Get implements storage.Store.
func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if id == "" {
		return nil, storage.ErrInvalidID
	}
	var doc []byte
	err := s.run(ctx, collection, false, func(tx *badger.Txn) error {
		var err error
		doc, err = readDocument(tx, makeDocumentKey(s.database, collection, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Modify implements storage.Store.
func (s *Store) Modify(ctx context.Context, collection, id string, fn func(doc []byte) ([]byte, error)) ([]byte, error) {
	if id == "" {
		return nil, storage.ErrInvalidID
	}
	var stored []byte
	err := s.run(ctx, collection, true, func(tx *badger.Txn) error {
		key := makeDocumentKey(s.database, collection, id)
		old, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		next, err := fn(old)
		if err != nil {
			return err
		}
		if stored, err = storage.StampID(next, id); err != nil {
			return err
		}
		if err := tx.Set(key, stored); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Delete implements storage.Store.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return storage.ErrInvalidID
	}
	return s.run(ctx, collection, true, func(tx *badger.Txn) error {
		if err := tx.Delete(makeDocumentKey(s.database, collection, id)); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Scan implements storage.Store.
func (s *Store) Scan(ctx context.Context, collection string, fn func(doc []byte) error) error {
	return s.run(ctx, collection, false, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeCollectionPrefix(s.database, collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// run executes fn in a transaction after checking the context, the
// collection name and the Store state, and maps Badger errors onto the
// storage sentinels.
func (s *Store) run(ctx context.Context, collection string, isWrite bool, fn func(tx *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateName("collection", collection); err != nil {
		return err
	}
	if s.closed.Load() {
		return storage.ErrStoreUnavailable
	}
	err := s.backend.WithTx(fn, isWrite)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrConflict):
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	case errors.Is(err, badger.ErrDBClosed):
		return fmt.Errorf("%w: %w", storage.ErrStoreUnavailable, err)
	}
	return err
}

func readDocument(tx *badger.Txn, key []byte) ([]byte, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	doc, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: corrupt document at %s", storage.ErrSerializationFailed, key)
	}
	return doc, nil
}
