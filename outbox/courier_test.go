package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/agentstore/core"
	"github.com/poiesic/agentstore/messaging"
	"github.com/poiesic/agentstore/storage"
	"github.com/poiesic/agentstore/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type delivery struct {
	recipient string
	msg       messaging.OutboundMessage
}

// testPlatform records what it sends and fails for recipients in failFor.
type testPlatform struct {
	mu      sync.Mutex
	sent    []delivery
	failFor map[string]bool
}

func (p *testPlatform) Platform() core.ChatPlatform { return core.Telegram }

func (p *testPlatform) SendText(ctx context.Context, recipient, text string) error {
	return p.SendMessage(ctx, recipient, messaging.OutboundMessage{Text: text})
}

func (p *testPlatform) SendMessage(ctx context.Context, recipient string, msg messaging.OutboundMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFor[recipient] {
		return &messaging.APIError{Platform: core.Telegram, Status: 403, Description: "blocked"}
	}
	p.sent = append(p.sent, delivery{recipient: recipient, msg: msg})
	return nil
}

func (p *testPlatform) UserProfile(ctx context.Context, platformUserID string) (*messaging.Profile, error) {
	return nil, messaging.ErrCapabilityUnsupported
}

func (p *testPlatform) sentTo(recipient string) []messaging.OutboundMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []messaging.OutboundMessage
	for _, s := range p.sent {
		if s.recipient == recipient {
			out = append(out, s.msg)
		}
	}
	return out
}

type fixture struct {
	users    *storage.Users
	messages *storage.UnreadMessages
	platform *testPlatform
	courier  *Courier
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store, err := badger.NewMemoryStore("test")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := &fixture{
		users:    storage.NewUserDAO(store),
		messages: storage.NewUnreadMessageDAO(store),
		platform: &testPlatform{failFor: map[string]bool{}},
	}
	f.courier, err = NewCourier(f.users, f.messages, f.platform, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(f.courier.Release)
	return f
}

func (f *fixture) linkedUser(t *testing.T, chatID string) string {
	t.Helper()
	ctx := context.Background()
	u, err := f.users.Insert(ctx, core.NewUser("Ada", "Lovelace", language.English))
	require.NoError(t, err)
	id, err := u.ID()
	require.NoError(t, err)
	_, err = f.users.LinkPlatform(ctx, id, core.Telegram, chatID)
	require.NoError(t, err)
	return id
}

func TestNewCourier_Validation(t *testing.T) {
	store, err := badger.NewMemoryStore("test")
	require.NoError(t, err)
	defer store.Close()
	users := storage.NewUserDAO(store)
	messages := storage.NewUnreadMessageDAO(store)
	platform := &testPlatform{}

	tests := []struct {
		name     string
		users    storage.UserDAO
		messages storage.UnreadMessageDAO
		platform messaging.MessagingPlatform
		wantErr  error
	}{
		{"missing users", nil, messages, platform, ErrUserDAORequired},
		{"missing messages", users, nil, platform, ErrMessageDAORequired},
		{"missing platform", users, messages, nil, ErrPlatformRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCourier(tt.users, tt.messages, tt.platform)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, c)
		})
	}

	c, err := NewCourier(users, messages, platform, WithPoolSize(0), WithLogger(nil))
	require.NoError(t, err)
	c.Release()
}

func TestCourier_DeliverInOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.linkedUser(t, "42")

	_, err := f.courier.Enqueue(ctx, id, messaging.OutboundMessage{Text: "first"})
	require.NoError(t, err)
	_, err = f.courier.Enqueue(ctx, id, messaging.OutboundMessage{Text: "second", Options: []string{"yes", "no"}})
	require.NoError(t, err)

	n, err := f.courier.Deliver(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := f.platform.sentTo("42")
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
	assert.Equal(t, []string{"yes", "no"}, got[1].Options)

	left, err := f.messages.FindByRecipient(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestCourier_PlainStringPayload(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.linkedUser(t, "7")

	m, err := core.NewUnreadMessage(id, "hello")
	require.NoError(t, err)
	_, err = f.messages.Insert(ctx, m)
	require.NoError(t, err)

	n, err := f.courier.Deliver(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got := f.platform.sentTo("7")
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
}

func TestCourier_MalformedPayloadStaysQueued(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.linkedUser(t, "7")

	m, err := core.NewUnreadMessage(id, map[string]any{"kind": "no text"})
	require.NoError(t, err)
	_, err = f.messages.Insert(ctx, m)
	require.NoError(t, err)

	n, err := f.courier.Deliver(ctx, id)
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Zero(t, n)

	left, err := f.messages.FindByRecipient(ctx, id)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestCourier_FailuresArePerRecipient(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ok := f.linkedUser(t, "1")
	blocked := f.linkedUser(t, "2")
	f.platform.failFor["2"] = true

	unlinked, err := f.users.Insert(ctx, core.NewUser("Bob", "", language.English))
	require.NoError(t, err)
	unlinkedID, err := unlinked.ID()
	require.NoError(t, err)

	for _, id := range []string{ok, blocked, unlinkedID} {
		_, err := f.courier.Enqueue(ctx, id, messaging.OutboundMessage{Text: "hi"})
		require.NoError(t, err)
	}

	n, err := f.courier.Deliver(ctx, ok, blocked, unlinkedID, "missing")
	require.Error(t, err)
	assert.Equal(t, 1, n)

	var apiErr *messaging.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.ErrorIs(t, err, ErrNotLinked)
	assert.ErrorIs(t, err, ErrUnknownRecipient)
	assert.Contains(t, err.Error(), "recipient "+blocked)

	left, err := f.messages.FindByRecipient(ctx, blocked)
	require.NoError(t, err)
	assert.Len(t, left, 1)
	left, err = f.messages.FindByRecipient(ctx, ok)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestCourier_EnqueueRejectsEmptyText(t *testing.T) {
	f := setup(t)
	_, err := f.courier.Enqueue(context.Background(), "u1", messaging.OutboundMessage{})
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
