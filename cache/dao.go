package cache

import (
	"context"

	"github.com/poiesic/agentstore/core"
	"github.com/poiesic/agentstore/storage"
)

// DAO persists cache entries. Implementations never inspect generations.
type DAO interface {
	// InsertCache stores entry under its key, replacing any previous entry,
	// and returns the stored copy.
	InsertCache(ctx context.Context, entry *core.CacheEntry) (*core.CacheEntry, error)

	// FindByID returns the entry stored under key, or nil when there is none.
	FindByID(ctx context.Context, key string) (*core.CacheEntry, error)

	// DeleteCacheWithID removes the entry under key. Missing keys are ignored.
	DeleteCacheWithID(ctx context.Context, key string) error
}

// StoreDAO implements DAO on a storage.Store.
type StoreDAO struct {
	store   storage.Store
	entries *storage.Collection[core.CacheEntry, *core.CacheEntry]
}

var _ DAO = (*StoreDAO)(nil)

// NewDAO returns a DAO keeping entries in the store's cache collection.
func NewDAO(store storage.Store) *StoreDAO {
	return &StoreDAO{
		store:   store,
		entries: storage.NewCollection[core.CacheEntry](store, storage.CacheCollection),
	}
}

// InsertCache implements DAO.
func (d *StoreDAO) InsertCache(ctx context.Context, entry *core.CacheEntry) (*core.CacheEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	doc, err := storage.MarshalEntity(entry)
	if err != nil {
		return nil, err
	}
	stored, err := d.store.Put(ctx, storage.CacheCollection, entry.Key, doc)
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalEntity[core.CacheEntry](stored)
}

// FindByID implements DAO.
func (d *StoreDAO) FindByID(ctx context.Context, key string) (*core.CacheEntry, error) {
	return d.entries.FindByID(ctx, key)
}

// DeleteCacheWithID implements DAO.
func (d *StoreDAO) DeleteCacheWithID(ctx context.Context, key string) error {
	return d.entries.Delete(ctx, key)
}
