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
	"encoding/json"
	"fmt"
	"time"

	"github.com/poiesic/agentstore/core"
	"github.com/poiesic/agentstore/extjson"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Paths of the store-only user fields.
const (
	platformIDsPath     = "platform_ids"
	registeredPath      = "registered"
	workingContextPath  = "working_context"
	lastInteractionPath = "last_interaction"
)

// Users implements UserDAO.
type Users struct {
	*Collection[core.User, *core.User]
}

var _ UserDAO = (*Users)(nil)

// NewUserDAO returns the DAO for users.
func NewUserDAO(store Store) *Users {
	return &Users{Collection: NewCollection[core.User](store, UsersCollection)}
}

// Insert stores a new user. Platform links and the registration flag are
// never taken from the argument.
func (u *Users) Insert(ctx context.Context, user *core.User) (*core.User, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: user is nil", core.ErrInvalidEntity)
	}
	return u.Collection.Insert(ctx, user.ProfileOnly())
}

// Update replaces the user's profile fields, keeping its platform links and
// registration flag.
func (u *Users) Update(ctx context.Context, id string, user *core.User) (*core.User, error) {
	return u.Replace(ctx, id, user, keepStoreOnlyFields)
}

func keepStoreOnlyFields(old, next []byte) ([]byte, error) {
	var err error
	for _, path := range []string{platformIDsPath, registeredPath} {
		prev := gjson.GetBytes(old, path)
		if prev.Exists() {
			next, err = sjson.SetRawBytes(next, path, []byte(prev.Raw))
		} else {
			next, err = sjson.DeleteBytes(next, path)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
	}
	return next, nil
}

// FindByPlatformID implements UserDAO.
func (u *Users) FindByPlatformID(ctx context.Context, platform core.ChatPlatform, platformUserID string) (*core.User, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: platform %q", core.ErrUnknownTag, platform)
	}
	if platformUserID == "" {
		return nil, ErrInvalidID
	}
	path := platformIDsPath + "." + string(platform)
	found, err := u.Scan(ctx, func(doc []byte) bool {
		return gjson.GetBytes(doc, path).String() == platformUserID
	})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// LinkPlatform implements UserDAO. A platform id belongs to at most one
// user; linking it to another fails with ErrDuplicateKey.
func (u *Users) LinkPlatform(ctx context.Context, id string, platform core.ChatPlatform, platformUserID string) (*core.User, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: platform %q", core.ErrUnknownTag, platform)
	}
	if platformUserID == "" {
		return nil, ErrInvalidID
	}
	owner, err := u.FindByPlatformID(ctx, platform, platformUserID)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		if ownerID, _ := owner.ID(); ownerID != id {
			return nil, fmt.Errorf("%w: %s id %s is linked to user %s", ErrDuplicateKey, platform, platformUserID, ownerID)
		}
	}
	return u.set(ctx, id, map[string]any{
		platformIDsPath + "." + string(platform): platformUserID,
	})
}

// CompleteRegistration implements UserDAO.
func (u *Users) CompleteRegistration(ctx context.Context, id string) (*core.User, error) {
	return u.Modify(ctx, id, func(doc []byte) ([]byte, error) {
		out, err := sjson.SetBytes(doc, registeredPath, true)
		if err != nil {
			return nil, err
		}
		ctxTag := gjson.GetBytes(doc, workingContextPath).String()
		if ctxTag == "" || ctxTag == string(core.WorkingContextRegistration) {
			return sjson.SetBytes(out, workingContextPath, string(core.WorkingContextConversation))
		}
		return out, nil
	})
}

// Touch implements UserDAO.
func (u *Users) Touch(ctx context.Context, id string, at time.Time) (*core.User, error) {
	raw, err := json.Marshal(extjson.NewTime(at))
	if err != nil {
		return nil, err
	}
	return u.Modify(ctx, id, func(doc []byte) ([]byte, error) {
		return sjson.SetRawBytes(doc, lastInteractionPath, raw)
	})
}

func (u *Users) set(ctx context.Context, id string, fields map[string]any) (*core.User, error) {
	return u.Modify(ctx, id, func(doc []byte) ([]byte, error) {
		var err error
		for path, v := range fields {
			if doc, err = sjson.SetBytes(doc, path, v); err != nil {
				return nil, err
			}
		}
		return doc, nil
	})
}
