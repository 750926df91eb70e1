package connection

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/poiesic/agentstore/storage"
	"github.com/poiesic/agentstore/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingEngine(opens *atomic.Int32) Option {
	return WithEngine(func(target string, inMemory bool) (*badger.Backend, error) {
		opens.Add(1)
		return badger.OpenBackend(target, inMemory)
	})
}

func TestNewManager_URIs(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{name: "memory", uri: "memory://"},
		{name: "badger", uri: "badger:///var/lib/agentstore"},
		{name: "relative badger", uri: "badger://relative/dir", wantErr: true},
		{name: "mongo", uri: "mongodb://localhost:27017", wantErr: true},
		{name: "no scheme", uri: "/tmp/db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager("agents", tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "agents", m.Database())
		})
	}

	_, err := NewManager("", "memory://")
	assert.ErrorIs(t, err, ErrUnsupportedURI)
}

func TestConnect_TwiceReusesConnection(t *testing.T) {
	var opens atomic.Int32
	m, err := NewManager("agents", "memory://", countingEngine(&opens))
	require.NoError(t, err)
	defer m.Close()

	first, err := m.Connect(DefaultAlias)
	require.NoError(t, err)
	second, err := m.Connect("")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), opens.Load())

	ctx := context.Background()
	_, err = first.Put(ctx, "things", "a", []byte(`{}`))
	require.NoError(t, err)
	_, err = second.Get(ctx, "things", "a")
	require.NoError(t, err)
}

func TestDisconnect_UnknownAliasIsNoop(t *testing.T) {
	m, err := NewManager("agents", "memory://")
	require.NoError(t, err)

	assert.NoError(t, m.Disconnect("unused-alias"))
	assert.NoError(t, m.Disconnect("unused-alias"))
}

func TestAliases_ShareEngine(t *testing.T) {
	var opens atomic.Int32
	m, err := NewManager("agents", "memory://", countingEngine(&opens))
	require.NoError(t, err)
	defer m.Close()

	ctx := context.Background()
	a, err := m.Connect("a")
	require.NoError(t, err)
	b, err := m.Connect("b")
	require.NoError(t, err)
	assert.Equal(t, int32(1), opens.Load())
	assert.ElementsMatch(t, []string{"a", "b"}, m.Aliases())

	_, err = a.Put(ctx, "things", "k", []byte(`{}`))
	require.NoError(t, err)

	require.NoError(t, m.Disconnect("a"))
	_, err = a.Get(ctx, "things", "k")
	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)

	// The engine stays open for b.
	_, err = b.Get(ctx, "things", "k")
	assert.NoError(t, err)

	_, err = m.Store("a")
	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	got, err := m.Store("b")
	require.NoError(t, err)
	assert.Same(t, b, got)
}

func TestLastDisconnectClosesEngine(t *testing.T) {
	var opens atomic.Int32
	m, err := NewManager("agents", "memory://", countingEngine(&opens))
	require.NoError(t, err)

	_, err = m.Connect("a")
	require.NoError(t, err)
	require.NoError(t, m.Disconnect("a"))

	// Reconnecting opens a fresh engine.
	s, err := m.Connect("a")
	require.NoError(t, err)
	assert.Equal(t, int32(2), opens.Load())

	require.NoError(t, m.Close())
	_, err = s.Get(context.Background(), "things", "k")
	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	assert.Empty(t, m.Aliases())
}

func TestBadgerURI_PersistsAcrossManagers(t *testing.T) {
	dir := t.TempDir()
	uri := "badger://" + filepath.ToSlash(dir)
	ctx := context.Background()

	m, err := NewManager("agents", uri)
	require.NoError(t, err)
	s, err := m.Connect("")
	require.NoError(t, err)
	_, err = s.Put(ctx, "things", "k", []byte(`{"v":1}`))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m2, err := NewManager("agents", uri)
	require.NoError(t, err)
	defer m2.Close()
	s2, err := m2.Connect("")
	require.NoError(t, err)
	doc, err := s2.Get(ctx, "things", "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"k","v":1}`, string(doc))

	assert.DirExists(t, filepath.Join(dir, "agents"))
}

func TestConnect_Concurrent(t *testing.T) {
	var opens atomic.Int32
	m, err := NewManager("agents", "memory://", countingEngine(&opens))
	require.NoError(t, err)
	defer m.Close()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			alias := []string{"a", "b"}[i%2]
			_, err := m.Connect(alias)
			assert.NoError(t, err)
			if i%4 == 0 {
				assert.NoError(t, m.Disconnect("unused"))
			}
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []string{"a", "b"}, m.Aliases())
	assert.Equal(t, int32(1), opens.Load())
}
