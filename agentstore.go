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


// Package agentstore is the persistence layer of a conversational agent:
// users, queued messages, strategies, localized texts and a generation-tagged
// cache, kept in an embedded document store.
package agentstore

import (
	"log/slog"

	"github.com/poiesic/agentstore/cache"
	"github.com/poiesic/agentstore/config"
	"github.com/poiesic/agentstore/connection"
	"github.com/poiesic/agentstore/core"
	"github.com/poiesic/agentstore/memo"
	"github.com/poiesic/agentstore/messaging"
	"github.com/poiesic/agentstore/outbox"
	"github.com/poiesic/agentstore/storage"
)

type Database struct {
	config     *config.Config
	manager    *connection.Manager
	store      storage.Store
	users      *storage.Users
	messages   *storage.UnreadMessages
	strategies storage.StrategyDAO
	texts      storage.LocalizedTextDAO
	caches     cache.DAO
	local      *cache.Local
	logger     *slog.Logger
}

// Open connects the default alias of the store cfg points at.
func Open(cfg *config.Config, opts ...connection.Option) (*Database, error) {
	if cfg == nil {
		return nil, core.ErrMissingConfiguration
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	manager, err := connection.NewManager(cfg.Database, cfg.StoreURI, opts...)
	if err != nil {
		return nil, err
	}
	store, err := manager.Connect(connection.DefaultAlias)
	if err != nil {
		manager.Close()
		return nil, err
	}

	db := &Database{
		config:     cfg,
		manager:    manager,
		store:      store,
		users:      storage.NewUserDAO(store),
		messages:   storage.NewUnreadMessageDAO(store),
		strategies: storage.NewStrategyDAO(store),
		texts:      storage.NewLocalizedTextDAO(store),
		caches:     cache.NewDAO(store),
		logger:     slog.Default().With("component", "agentstore", "database", cfg.Database),
	}

	if cfg.LocalCacheSize > 0 {
		local, err := cache.NewLocal(db.caches, cfg.LocalCacheSize)
		if err != nil {
			manager.Close()
			return nil, err
		}
		db.local = local
		db.caches = local
	}

	db.logger.Info("database opened", "uri", cfg.StoreURI)
	return db, nil
}

func (db *Database) Close() error {
	if db.local != nil {
		db.local.Close()
	}
	if err := db.manager.Close(); err != nil {
		db.logger.Error("error closing connections", "err", err)
		return err
	}
	return nil
}

func (db *Database) Users() storage.UserDAO {
	return db.users
}

func (db *Database) UnreadMessages() storage.UnreadMessageDAO {
	return db.messages
}

func (db *Database) Strategies() storage.StrategyDAO {
	return db.strategies
}

func (db *Database) Texts() storage.LocalizedTextDAO {
	return db.texts
}

// Caches returns the cache DAO, fronted by an in-process cache when
// AGENTSTORE_LOCAL_CACHE_SIZE is set.
func (db *Database) Caches() cache.DAO {
	return db.caches
}

func (db *Database) Manager() *connection.Manager {
	return db.manager
}

// Platform builds the messaging adapter for tag from the configured token.
func (db *Database) Platform(tag core.ChatPlatform, opts ...messaging.Option) (messaging.MessagingPlatform, error) {
	return messaging.PlatformFrom(tag, db.config.PlatformToken(tag), opts...)
}

func (db *Database) NewCourier(platform messaging.MessagingPlatform, opts ...outbox.Option) (*outbox.Courier, error) {
	return outbox.NewCourier(db.users, db.messages, platform, opts...)
}

// NewCompleter builds a memoizing completer against the configured LLM host.
func (db *Database) NewCompleter(opts ...memo.ConfigOption) (*memo.Completer, error) {
	cfg := memo.DefaultConfig()
	if db.config.LLMHost != "" {
		cfg.Host = db.config.LLMHost
	}
	if db.config.LLMModel != "" {
		cfg.Model = db.config.LLMModel
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return memo.NewOpenAICompleter(cfg, db.caches)
}
