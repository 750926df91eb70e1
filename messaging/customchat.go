package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/poiesic/agentstore/core"
)

const (
	defaultCustomChatURL = "ws://localhost:8081/ws"
	customChatTimeout    = 10 * time.Second
)

// customChatClient keeps one WebSocket to the internal chat service and
// sends one frame per message, waiting for its acknowledgement. A broken
// connection is dropped and redialed on the next send.
type customChatClient struct {
	token  string
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int64
	closed bool
}

type customChatFrame struct {
	ID        int64    `json:"id"`
	Type      string   `json:"type"`
	Recipient string   `json:"recipient"`
	Text      string   `json:"text"`
	Options   []string `json:"options,omitempty"`
}

type customChatAck struct {
	ID    int64  `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func newCustomChatClient(token string, o *options) *customChatClient {
	return &customChatClient{
		token:  token,
		url:    o.baseURL,
		dialer: o.dialer,
		logger: o.logger,
	}
}

func (c *customChatClient) Platform() core.ChatPlatform { return core.CustomChat }

func (c *customChatClient) SendText(ctx context.Context, recipient, text string) error {
	return c.SendMessage(ctx, recipient, OutboundMessage{Text: text})
}

func (c *customChatClient) SendMessage(ctx context.Context, recipient string, msg OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("custom chat: client closed")
	}
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}

	c.nextID++
	frame := customChatFrame{
		ID:        c.nextID,
		Type:      "message",
		Recipient: recipient,
		Text:      msg.Text,
		Options:   msg.Options,
	}

	deadline := time.Now().Add(customChatTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)

	if err := conn.WriteJSON(frame); err != nil {
		c.drop()
		return fmt.Errorf("custom chat: write: %w", err)
	}
	var ack customChatAck
	if err := conn.ReadJSON(&ack); err != nil {
		c.drop()
		return fmt.Errorf("custom chat: read ack: %w", err)
	}
	if ack.ID != frame.ID {
		c.drop()
		return fmt.Errorf("custom chat: ack for %d, want %d", ack.ID, frame.ID)
	}
	if !ack.OK {
		return &APIError{Platform: core.CustomChat, Description: ack.Error}
	}
	c.logger.Debug("sent message", "recipient", recipient, "id", frame.ID)
	return nil
}

// UserProfile is not offered by the internal chat service.
func (c *customChatClient) UserProfile(ctx context.Context, platformUserID string) (*Profile, error) {
	return nil, fmt.Errorf("%w: %s user profiles", ErrCapabilityUnsupported, core.CustomChat)
}

// Close closes the connection, if any. Later sends fail.
func (c *customChatClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn == nil {
		return nil
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

// connect returns the open connection or dials a new one. Callers hold mu.
func (c *customChatClient) connect(ctx context.Context) (*websocket.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	header := http.Header{"Authorization": {"Bearer " + c.token}}
	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil {
			return nil, &APIError{
				Platform:    core.CustomChat,
				Status:      resp.StatusCode,
				Description: fmt.Sprintf("handshake failed: %v", err),
			}
		}
		return nil, fmt.Errorf("custom chat: dial: %w", err)
	}
	c.logger.Info("connected", "url", c.url)
	c.conn = conn
	return conn, nil
}

// drop discards a connection after an I/O failure. Callers hold mu.
func (c *customChatClient) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
