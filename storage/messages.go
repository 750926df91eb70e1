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
	"slices"

	"github.com/poiesic/agentstore/core"
	"github.com/tidwall/gjson"
)

// UnreadMessages implements UnreadMessageDAO.
type UnreadMessages struct {
	*Collection[core.UnreadMessage, *core.UnreadMessage]
}

var _ UnreadMessageDAO = (*UnreadMessages)(nil)

// NewUnreadMessageDAO returns the DAO for unread messages.
func NewUnreadMessageDAO(store Store) *UnreadMessages {
	return &UnreadMessages{Collection: NewCollection[core.UnreadMessage](store, UnreadMessagesCollection)}
}

// FindByRecipient implements UnreadMessageDAO.
func (m *UnreadMessages) FindByRecipient(ctx context.Context, recipient string) ([]*core.UnreadMessage, error) {
	if recipient == "" {
		return nil, ErrInvalidID
	}
	msgs, err := m.Scan(ctx, func(doc []byte) bool {
		return gjson.GetBytes(doc, "recipient").String() == recipient
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(msgs, func(a, b *core.UnreadMessage) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return msgs, nil
}
