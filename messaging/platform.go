package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/poiesic/agentstore/core"
	"golang.org/x/text/language"
)

var (
	// ErrUnsupportedPlatform indicates a tag with no adapter.
	ErrUnsupportedPlatform = errors.New("unsupported messaging platform")

	// ErrCapabilityUnsupported indicates an operation the platform cannot
	// perform.
	ErrCapabilityUnsupported = errors.New("capability not supported by platform")
)

// APIError is a failure reported by a platform's API.
type APIError struct {
	Platform    core.ChatPlatform
	Status      int // HTTP status, 0 when not applicable
	Code        int // platform error code, 0 when absent
	Description string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s api error (status %d, code %d): %s", e.Platform, e.Status, e.Code, e.Description)
	}
	return fmt.Sprintf("%s api error (status %d): %s", e.Platform, e.Status, e.Description)
}

// OutboundMessage is a text with optional quick-reply options.
type OutboundMessage struct {
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// Profile is what a platform tells about one of its users.
type Profile struct {
	PlatformUserID string
	FirstName      string
	LastName       string
	Username       string
	Language       language.Tag // language.Und when unknown
}

// MessagingPlatform is the capability set every chat channel offers.
type MessagingPlatform interface {
	// Platform returns the tag of the channel.
	Platform() core.ChatPlatform

	// SendText sends plain text to recipient, a platform user or chat id.
	SendText(ctx context.Context, recipient, text string) error

	// SendMessage sends text with quick-reply options.
	SendMessage(ctx context.Context, recipient string, msg OutboundMessage) error

	// UserProfile looks up a platform user.
	UserProfile(ctx context.Context, platformUserID string) (*Profile, error)
}

type options struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     *slog.Logger
}

// Option configures an adapter.
type Option func(*options)

// WithBaseURL overrides the platform endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithHTTPClient sets the client used for HTTP platforms.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithDialer sets the dialer used for WebSocket platforms.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(platform core.ChatPlatform, defaultURL string, opts []Option) *options {
	o := &options{
		baseURL:    defaultURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "messaging", "platform", string(platform))
	return o
}

var constructors = map[core.ChatPlatform]func(token string, opts ...Option) MessagingPlatform{
	core.Telegram: func(token string, opts ...Option) MessagingPlatform {
		return NewTelegramAdapter(token, opts...)
	},
	core.FacebookMessenger: func(token string, opts ...Option) MessagingPlatform {
		return NewMessengerAdapter(token, opts...)
	},
	core.CustomChat: func(token string, opts ...Option) MessagingPlatform {
		return NewCustomChatAdapter(token, opts...)
	},
}

// PlatformFrom returns the adapter for tag. Nothing is contacted until the
// first capability call.
func PlatformFrom(tag core.ChatPlatform, token string, opts ...Option) (MessagingPlatform, error) {
	build, ok := constructors[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, tag)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: %s token", core.ErrMissingConfiguration, tag)
	}
	return build(token, opts...), nil
}
