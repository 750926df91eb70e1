package storage

import (
	"context"
	"time"

	"github.com/poiesic/agentstore/core"
)

// Collection names used by the DAOs.
const (
	UsersCollection          = "users"
	UnreadMessagesCollection = "unread_messages"
	StrategiesCollection     = "strategies"
	TextsCollection          = "texts"
	CacheCollection          = "cache"
)

// Store is a document engine holding JSON documents in named collections.
// Every stored document carries its key in an "_id" field. Each method is
// atomic for the single document it touches.
type Store interface {
	// Insert persists doc under a freshly generated key, or under its own
	// "_id" when it already has one. Returns ErrDuplicateKey if that key is
	// taken. Returns the stored document.
	Insert(ctx context.Context, collection string, doc []byte) ([]byte, error)

	// Put stores doc under id, replacing any previous document.
	Put(ctx context.Context, collection, id string, doc []byte) ([]byte, error)

	// Get returns the document stored under id.
	// Returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, collection, id string) ([]byte, error)

	// Modify atomically replaces the document under id with the result of
	// fn applied to it. Returns ErrNotFound if the document doesn't exist.
	Modify(ctx context.Context, collection, id string, fn func(doc []byte) ([]byte, error)) ([]byte, error)

	// Delete removes the document under id. Missing documents are ignored.
	Delete(ctx context.Context, collection, id string) error

	// Scan calls fn for every document in the collection, in key order.
	Scan(ctx context.Context, collection string, fn func(doc []byte) error) error

	// Close releases the engine.
	Close() error
}

// DAO is the generic repository contract for entity type E.
type DAO[E core.Entity] interface {
	// FindByID returns the stored entity, or the zero E and a nil error
	// when nothing is stored under id.
	FindByID(ctx context.Context, id string) (E, error)

	// Insert persists a detached entity and returns its store-bound copy.
	Insert(ctx context.Context, entity E) (E, error)

	// Delete removes the entity under id. Deleting a missing id is not an
	// error.
	Delete(ctx context.Context, id string) error
}

// Updater replaces stored entities.
type Updater[E core.Entity] interface {
	// Update replaces the entity stored under id and returns the stored copy.
	// Returns ErrNotFound if the entity doesn't exist.
	Update(ctx context.Context, id string, entity E) (E, error)
}

type UserDAO interface {
	DAO[*core.User]
	Updater[*core.User]

	// FindByPlatformID returns the user linked to platformUserID on
	// platform, or nil when no user is linked.
	FindByPlatformID(ctx context.Context, platform core.ChatPlatform, platformUserID string) (*core.User, error)

	// LinkPlatform records the user's id on a messaging platform.
	// Returns ErrNotFound if the user doesn't exist.
	LinkPlatform(ctx context.Context, id string, platform core.ChatPlatform, platformUserID string) (*core.User, error)

	// CompleteRegistration marks the user registered and moves them out of
	// the registration context.
	// Returns ErrNotFound if the user doesn't exist.
	CompleteRegistration(ctx context.Context, id string) (*core.User, error)

	// Touch sets the last interaction time.
	// Returns ErrNotFound if the user doesn't exist.
	Touch(ctx context.Context, id string, at time.Time) (*core.User, error)
}

type UnreadMessageDAO interface {
	DAO[*core.UnreadMessage]
	Updater[*core.UnreadMessage]

	// FindByRecipient returns the recipient's messages, oldest first.
	FindByRecipient(ctx context.Context, recipient string) ([]*core.UnreadMessage, error)
}

type StrategyDAO interface {
	DAO[*core.Strategy]
	Updater[*core.Strategy]
}

type LocalizedTextDAO interface {
	DAO[*core.LocalizedText]
}
