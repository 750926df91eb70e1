package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/poiesic/agentstore/core"
	"golang.org/x/text/language"
)

const defaultMessengerURL = "https://graph.facebook.com/v19.0"

// messengerClient calls the Graph API Send and User Profile endpoints.
type messengerClient struct {
	token   string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func newMessengerClient(token string, o *options) *messengerClient {
	return &messengerClient{
		token:   token,
		baseURL: strings.TrimSuffix(o.baseURL, "/"),
		http:    o.httpClient,
		logger:  o.logger,
	}
}

func (c *messengerClient) Platform() core.ChatPlatform { return core.FacebookMessenger }

func (c *messengerClient) SendText(ctx context.Context, recipient, text string) error {
	return c.SendMessage(ctx, recipient, OutboundMessage{Text: text})
}

func (c *messengerClient) SendMessage(ctx context.Context, recipient string, msg OutboundMessage) error {
	req := messengerSend{
		Recipient:     messengerRecipient{ID: recipient},
		MessagingType: "RESPONSE",
		Message:       messengerMessage{Text: msg.Text},
	}
	for _, opt := range msg.Options {
		req.Message.QuickReplies = append(req.Message.QuickReplies, messengerQuickReply{
			ContentType: "text",
			Title:       opt,
			Payload:     opt,
		})
	}
	if err := c.call(ctx, http.MethodPost, "me/messages", nil, req, nil); err != nil {
		return err
	}
	c.logger.Debug("sent message", "psid", recipient, "options", len(msg.Options))
	return nil
}

func (c *messengerClient) UserProfile(ctx context.Context, platformUserID string) (*Profile, error) {
	var p messengerProfile
	query := url.Values{"fields": {"first_name,last_name,locale"}}
	if err := c.call(ctx, http.MethodGet, url.PathEscape(platformUserID), query, nil, &p); err != nil {
		return nil, err
	}
	lang := language.Und
	if p.Locale != "" {
		if tag, err := language.Parse(strings.ReplaceAll(p.Locale, "_", "-")); err == nil {
			lang = tag
		}
	}
	return &Profile{
		PlatformUserID: p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Language:       lang,
	}, nil
}

func (c *messengerClient) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", c.token)
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, path, query.Encode())

	status, raw, err := doJSON(ctx, c.http, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("messenger %s: %w", path, stripURL(err))
	}

	if status >= 300 {
		var e messengerErrorResponse
		apiErr := &APIError{Platform: core.FacebookMessenger, Status: status, Description: http.StatusText(status)}
		if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
			apiErr.Code = e.Error.Code
			apiErr.Description = e.Error.Message
		}
		return apiErr
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("messenger %s: unmarshal result: %w", path, err)
		}
	}
	return nil
}

// --- Graph API types (minimal subset) ---

type messengerSend struct {
	Recipient     messengerRecipient `json:"recipient"`
	MessagingType string             `json:"messaging_type"`
	Message       messengerMessage   `json:"message"`
}

type messengerRecipient struct {
	ID string `json:"id"`
}

type messengerMessage struct {
	Text         string                `json:"text"`
	QuickReplies []messengerQuickReply `json:"quick_replies,omitempty"`
}

type messengerQuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

type messengerProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Locale    string `json:"locale"`
}

type messengerErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}
