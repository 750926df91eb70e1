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


package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/agentstore/core"
	"github.com/poiesic/agentstore/messaging"
	"github.com/poiesic/agentstore/storage"
)

// Courier delivers unread messages over one platform, serving several
// recipients concurrently from a bounded worker pool.
type Courier struct {
	users    storage.UserDAO
	messages storage.UnreadMessageDAO
	platform messaging.MessagingPlatform
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a Courier.
type Option func(*Courier) error

// WithPoolSize sets the number of recipients served concurrently.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *Courier) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if c.pool != nil {
			c.pool.Release()
		}
		c.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Courier) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCourier creates a Courier. Release it when done.
func NewCourier(
	users storage.UserDAO,
	messages storage.UnreadMessageDAO,
	platform messaging.MessagingPlatform,
	opts ...Option,
) (*Courier, error) {
	if users == nil {
		return nil, ErrUserDAORequired
	}
	if messages == nil {
		return nil, ErrMessageDAORequired
	}
	if platform == nil {
		return nil, ErrPlatformRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
	if err != nil {
		return nil, err
	}

	c := &Courier{
		users:    users,
		messages: messages,
		platform: platform,
		pool:     pool,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}
	c.logger = c.logger.With("component", "outbox", "platform", string(platform.Platform()))
	return c, nil
}

// Enqueue queues msg for the user with id userID.
func (c *Courier) Enqueue(ctx context.Context, userID string, msg messaging.OutboundMessage) (*core.UnreadMessage, error) {
	if msg.Text == "" {
		return nil, ErrMalformedPayload
	}
	m, err := core.NewUnreadMessage(userID, msg)
	if err != nil {
		return nil, err
	}
	return c.messages.Insert(ctx, m)
}

// Deliver sends the queued messages of every listed user and returns how
// many were sent. Failures are reported per recipient and joined; they do
// not stop delivery to other recipients.
func (c *Courier) Deliver(ctx context.Context, userIDs ...string) (int, error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sent int
		errs []error
	)
	record := func(userID string, n int, err error) {
		mu.Lock()
		defer mu.Unlock()
		sent += n
		if err != nil {
			errs = append(errs, fmt.Errorf("recipient %s: %w", userID, err))
		}
	}

	for _, userID := range userIDs {
		wg.Add(1)
		submitErr := c.pool.Submit(func() {
			defer wg.Done()
			n, err := c.deliverTo(ctx, userID)
			record(userID, n, err)
		})
		if submitErr != nil {
			wg.Done()
			record(userID, 0, submitErr)
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		c.logger.Warn("delivery incomplete", "sent", sent, "failed", len(errs))
	}
	return sent, errors.Join(errs...)
}

func (c *Courier) deliverTo(ctx context.Context, userID string) (int, error) {
	user, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUnknownRecipient
	}
	platformID, ok := user.PlatformID(c.platform.Platform())
	if !ok {
		return 0, ErrNotLinked
	}

	msgs, err := c.messages.FindByRecipient(ctx, userID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range msgs {
		out, err := outbound(m)
		if err != nil {
			return sent, err
		}
		if err := c.platform.SendMessage(ctx, platformID, out); err != nil {
			return sent, err
		}
		id, err := m.ID()
		if err != nil {
			return sent, err
		}
		if err := c.messages.Delete(ctx, id); err != nil {
			return sent, err
		}
		sent++
	}
	if sent > 0 {
		c.logger.Debug("delivered", "user", userID, "count", sent)
	}
	return sent, nil
}

// outbound reads a queued payload: either an object with "text" and
// optional "options", or a bare string.
func outbound(m *core.UnreadMessage) (messaging.OutboundMessage, error) {
	var out messaging.OutboundMessage
	if err := m.DecodePayload(&out); err != nil {
		var text string
		if json.Unmarshal(m.RawPayload(), &text) != nil {
			return out, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		out.Text = text
	}
	if out.Text == "" {
		return out, ErrMalformedPayload
	}
	return out, nil
}

// Release releases the worker pool.
// The courier should not be used after calling Release.
func (c *Courier) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}
