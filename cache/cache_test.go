package cache

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/agentstore/core"
	"github.com/poiesic/agentstore/storage"
	"github.com/poiesic/agentstore/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDAO(t *testing.T) *StoreDAO {
	t.Helper()
	s, err := badger.NewMemoryStore("test")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewDAO(s)
}

func TestNew(t *testing.T) {
	before := time.Now().Add(-time.Second)
	e := New("k1", 3, "payload")

	assert.Equal(t, "k1", e.Key)
	assert.Equal(t, 3, e.Generation)
	assert.Equal(t, "payload", e.Payload)
	assert.True(t, e.CreatedAt.After(before))
	assert.False(t, e.Bound())

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, at, New("k", 0, "", WithTimestamp(at)).CreatedAt)
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	dao := newDAO(t)

	stored, err := dao.InsertCache(ctx, New("k1", 3, "payload"))
	require.NoError(t, err)
	id, err := stored.ID()
	require.NoError(t, err)
	assert.Equal(t, "k1", id)

	found, err := dao.FindByID(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 3, found.Generation)
	assert.Equal(t, "payload", found.Payload)

	require.NoError(t, dao.DeleteCacheWithID(ctx, "k1"))
	gone, err := dao.FindByID(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, dao.DeleteCacheWithID(ctx, "k1"))
}

func TestInsertCache_Overwrites(t *testing.T) {
	ctx := context.Background()
	dao := newDAO(t)

	_, err := dao.InsertCache(ctx, New("k", 1, "old"))
	require.NoError(t, err)
	_, err = dao.InsertCache(ctx, New("k", 2, "new"))
	require.NoError(t, err)

	found, err := dao.FindByID(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, found.Generation)
	assert.Equal(t, "new", found.Payload)
}

func TestFindByID_IgnoresGeneration(t *testing.T) {
	ctx := context.Background()
	dao := newDAO(t)

	_, err := dao.InsertCache(ctx, New("k", 1, "v1"))
	require.NoError(t, err)

	found, err := dao.FindByID(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, found, "stale entries are still returned")
	assert.True(t, Fresh(found, 1))
	assert.False(t, Fresh(found, 2))
	assert.False(t, Fresh(nil, 1))
}

func TestInsertCache_Validates(t *testing.T) {
	dao := newDAO(t)
	_, err := dao.InsertCache(context.Background(), New("", 1, "x"))
	assert.ErrorIs(t, err, core.ErrEmptyCacheKey)
}

func TestInsertCache_StoreUnavailable(t *testing.T) {
	s, err := badger.NewMemoryStore("test")
	require.NoError(t, err)
	dao := NewDAO(s)
	require.NoError(t, s.Close())

	_, err = dao.InsertCache(context.Background(), New("k", 1, "x"))
	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
}

func TestKeyFor(t *testing.T) {
	k := KeyFor("completion", "gpt", "hello")
	assert.Len(t, k, 64)
	assert.Equal(t, k, KeyFor("completion", "gpt", "hello"))
	assert.NotEqual(t, k, KeyFor("completion", "gpt", "hello!"))
	assert.NotEqual(t, KeyFor("ab", "c"), KeyFor("a", "bc"))
	assert.NotEqual(t, KeyFor(), KeyFor(""))
}
