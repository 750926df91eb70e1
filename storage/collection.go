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


package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/agentstore/core"
)

// EntityPtr constrains a pointer to an entity struct.
type EntityPtr[T any] interface {
	*T
	core.Entity
}

// Collection implements DAO and Updater for one entity type on top of a
// Store collection.
type Collection[T any, PE EntityPtr[T]] struct {
	store  Store
	name   string
	logger *slog.Logger
}

// NewCollection creates a Collection over the named store collection.
func NewCollection[T any, PE EntityPtr[T]](store Store, name string) *Collection[T, PE] {
	return &Collection[T, PE]{
		store:  store,
		name:   name,
		logger: slog.Default().With("component", "storage", "collection", name),
	}
}

// Name returns the collection name.
func (c *Collection[T, PE]) Name() string {
	return c.name
}

// FindByID implements DAO.
func (c *Collection[T, PE]) FindByID(ctx context.Context, id string) (PE, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return UnmarshalEntity[T, PE](doc)
}

// Insert implements DAO. The argument is left detached.
func (c *Collection[T, PE]) Insert(ctx context.Context, entity PE) (PE, error) {
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	doc, err := MarshalEntity(entity)
	if err != nil {
		return nil, err
	}
	stored, err := c.store.Insert(ctx, c.name, doc)
	if err != nil {
		return nil, err
	}
	out, err := UnmarshalEntity[T, PE](stored)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("inserted document", "id", DocumentID(stored))
	return out, nil
}

// Delete implements DAO.
func (c *Collection[T, PE]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	return c.store.Delete(ctx, c.name, id)
}

// Update implements Updater.
func (c *Collection[T, PE]) Update(ctx context.Context, id string, entity PE) (PE, error) {
	return c.Replace(ctx, id, entity, nil)
}

// Replace stores entity under id. When merge is non-nil it receives the
// previous and the new document and returns the document to store.
func (c *Collection[T, PE]) Replace(ctx context.Context, id string, entity PE, merge func(old, next []byte) ([]byte, error)) (PE, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	doc, err := MarshalEntity(entity)
	if err != nil {
		return nil, err
	}
	return c.Modify(ctx, id, func(old []byte) ([]byte, error) {
		if merge == nil {
			return doc, nil
		}
		return merge(old, doc)
	})
}

// Modify applies fn to the stored document under id and returns the
// resulting entity.
func (c *Collection[T, PE]) Modify(ctx context.Context, id string, fn func(doc []byte) ([]byte, error)) (PE, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	stored, err := c.store.Modify(ctx, c.name, id, fn)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.name, id, err)
	}
	return UnmarshalEntity[T, PE](stored)
}

// Scan decodes every document in the collection for which keep returns
// true. A nil keep accepts everything.
func (c *Collection[T, PE]) Scan(ctx context.Context, keep func(doc []byte) bool) ([]PE, error) {
	var out []PE
	err := c.store.Scan(ctx, c.name, func(doc []byte) error {
		if keep != nil && !keep(doc) {
			return nil
		}
		e, err := UnmarshalEntity[T, PE](doc)
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var (
	_ StrategyDAO      = (*Collection[core.Strategy, *core.Strategy])(nil)
	_ LocalizedTextDAO = (*Collection[core.LocalizedText, *core.LocalizedText])(nil)
)

// NewStrategyDAO returns the DAO for strategies.
func NewStrategyDAO(store Store) StrategyDAO {
	return NewCollection[core.Strategy](store, StrategiesCollection)
}

// NewLocalizedTextDAO returns the DAO for localized texts.
func NewLocalizedTextDAO(store Store) LocalizedTextDAO {
	return NewCollection[core.LocalizedText](store, TextsCollection)
}
