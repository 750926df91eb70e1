package messaging

import (
	"context"
	"io"
	"sync"

	"github.com/poiesic/agentstore/core"
)

// lazy builds a platform client once, on first use, and delegates every
// capability to it.
type lazy struct {
	platform core.ChatPlatform
	build    func() MessagingPlatform

	once sync.Once
	mu   sync.Mutex
	impl MessagingPlatform
}

// MessagingPlatform returns the concrete client, building it if needed.
func (l *lazy) MessagingPlatform() MessagingPlatform {
	l.once.Do(func() {
		impl := l.build()
		l.mu.Lock()
		l.impl = impl
		l.mu.Unlock()
	})
	return l.impl
}

func (l *lazy) Platform() core.ChatPlatform {
	return l.platform
}

func (l *lazy) SendText(ctx context.Context, recipient, text string) error {
	return l.MessagingPlatform().SendText(ctx, recipient, text)
}

func (l *lazy) SendMessage(ctx context.Context, recipient string, msg OutboundMessage) error {
	return l.MessagingPlatform().SendMessage(ctx, recipient, msg)
}

func (l *lazy) UserProfile(ctx context.Context, platformUserID string) (*Profile, error) {
	return l.MessagingPlatform().UserProfile(ctx, platformUserID)
}

// Close releases the client if it was built and holds resources.
func (l *lazy) Close() error {
	l.mu.Lock()
	impl := l.impl
	l.mu.Unlock()
	if c, ok := impl.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// TelegramAdapter drives the Telegram Bot API.
type TelegramAdapter struct {
	lazy
	token string
}

// NewTelegramAdapter creates an adapter for a bot token.
func NewTelegramAdapter(token string, opts ...Option) *TelegramAdapter {
	return &TelegramAdapter{
		token: token,
		lazy: lazy{
			platform: core.Telegram,
			build: func() MessagingPlatform {
				return newTelegramClient(token, buildOptions(core.Telegram, defaultTelegramURL, opts))
			},
		},
	}
}

// MessengerAdapter drives the Facebook Messenger Send API.
type MessengerAdapter struct {
	lazy
	token string
}

// NewMessengerAdapter creates an adapter for a page access token.
func NewMessengerAdapter(token string, opts ...Option) *MessengerAdapter {
	return &MessengerAdapter{
		token: token,
		lazy: lazy{
			platform: core.FacebookMessenger,
			build: func() MessagingPlatform {
				return newMessengerClient(token, buildOptions(core.FacebookMessenger, defaultMessengerURL, opts))
			},
		},
	}
}

// CustomChatAdapter drives the internal chat service over a WebSocket.
type CustomChatAdapter struct {
	lazy
	token string
}

// NewCustomChatAdapter creates an adapter authenticating with token.
func NewCustomChatAdapter(token string, opts ...Option) *CustomChatAdapter {
	return &CustomChatAdapter{
		token: token,
		lazy: lazy{
			platform: core.CustomChat,
			build: func() MessagingPlatform {
				return newCustomChatClient(token, buildOptions(core.CustomChat, defaultCustomChatURL, opts))
			},
		},
	}
}

var (
	_ MessagingPlatform = (*TelegramAdapter)(nil)
	_ MessagingPlatform = (*MessengerAdapter)(nil)
	_ MessagingPlatform = (*CustomChatAdapter)(nil)
	_ io.Closer         = (*CustomChatAdapter)(nil)
)
