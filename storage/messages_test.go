package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/agentstore/core"
	"github.com/poiesic/agentstore/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadMessages_FindByRecipient(t *testing.T) {
	ctx := context.Background()
	dao := storage.NewUnreadMessageDAO(newStore(t))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, offset := range []int{3, 1, 2} {
		m, err := core.NewUnreadMessage("bob", map[string]any{"text": offset})
		require.NoError(t, err)
		m.CreatedAt = base.Add(time.Duration(offset) * time.Minute)
		_, err = dao.Insert(ctx, m)
		require.NoError(t, err, "message %d", i)
	}
	other, err := core.NewUnreadMessage("alice", "hi")
	require.NoError(t, err)
	_, err = dao.Insert(ctx, other)
	require.NoError(t, err)

	msgs, err := dao.FindByRecipient(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, "bob", m.Recipient)
		assert.Equal(t, base.Add(time.Duration(i+1)*time.Minute), m.CreatedAt)
	}

	none, err := dao.FindByRecipient(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUnreadMessages_UpdatePayload(t *testing.T) {
	ctx := context.Background()
	dao := storage.NewUnreadMessageDAO(newStore(t))

	m, err := core.NewUnreadMessage("bob", map[string]any{"text": "v1"})
	require.NoError(t, err)
	stored, err := dao.Insert(ctx, m)
	require.NoError(t, err)
	id, err := stored.ID()
	require.NoError(t, err)

	require.NoError(t, stored.SetPayload(map[string]any{"text": "v2"}))
	_, err = dao.Update(ctx, id, stored)
	require.NoError(t, err)

	found, err := dao.FindByID(ctx, id)
	require.NoError(t, err)
	var body struct {
		Text string `json:"text"`
	}
	require.NoError(t, found.DecodePayload(&body))
	assert.Equal(t, "v2", body.Text)

	_, err = dao.Update(ctx, "missing", stored)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUnreadMessages_RoundTripMatchesInsertedFields(t *testing.T) {
	ctx := context.Background()
	dao := storage.NewUnreadMessageDAO(newStore(t))

	m, err := core.NewUnreadMessage("bob", map[string]any{"text": "hello", "options": []string{"yes", "no"}})
	require.NoError(t, err)
	stored, err := dao.Insert(ctx, m)
	require.NoError(t, err)
	id, err := stored.ID()
	require.NoError(t, err)

	found, err := dao.FindByID(ctx, id)
	require.NoError(t, err)

	want, err := m.ToJSON()
	require.NoError(t, err)
	got, err := found.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, id, got["_id"])
	delete(got, "_id")
	assert.Equal(t, want, got)
}
