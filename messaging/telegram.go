package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/agentstore/core"
	"golang.org/x/text/language"
)

const defaultTelegramURL = "https://api.telegram.org"

// telegramClient calls the Bot API directly.
type telegramClient struct {
	token   string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func newTelegramClient(token string, o *options) *telegramClient {
	return &telegramClient{
		token:   token,
		baseURL: strings.TrimSuffix(o.baseURL, "/"),
		http:    o.httpClient,
		logger:  o.logger,
	}
}

func (c *telegramClient) Platform() core.ChatPlatform { return core.Telegram }

func (c *telegramClient) SendText(ctx context.Context, recipient, text string) error {
	return c.SendMessage(ctx, recipient, OutboundMessage{Text: text})
}

func (c *telegramClient) SendMessage(ctx context.Context, recipient string, msg OutboundMessage) error {
	req := telegramSendMessage{ChatID: recipient, Text: msg.Text}
	if len(msg.Options) > 0 {
		kb := &telegramReplyKeyboard{OneTimeKeyboard: true, ResizeKeyboard: true}
		for _, opt := range msg.Options {
			kb.Keyboard = append(kb.Keyboard, []telegramKeyboardButton{{Text: opt}})
		}
		req.ReplyMarkup = kb
	}
	if err := c.call(ctx, "sendMessage", req, nil); err != nil {
		return err
	}
	c.logger.Debug("sent message", "chat_id", recipient, "options", len(msg.Options))
	return nil
}

func (c *telegramClient) UserProfile(ctx context.Context, platformUserID string) (*Profile, error) {
	var chat telegramChat
	if err := c.call(ctx, "getChat", map[string]string{"chat_id": platformUserID}, &chat); err != nil {
		return nil, err
	}
	return &Profile{
		PlatformUserID: fmt.Sprintf("%d", chat.ID),
		FirstName:      chat.FirstName,
		LastName:       chat.LastName,
		Username:       chat.Username,
		Language:       language.Und,
	}, nil
}

// call invokes a Bot API method and decodes its result into out.
func (c *telegramClient) call(ctx context.Context, method string, body, out any) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	status, raw, err := doJSON(ctx, c.http, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, stripURL(err))
	}

	var resp telegramResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return &APIError{Platform: core.Telegram, Status: status, Description: "malformed response"}
	}
	if !resp.OK {
		return &APIError{
			Platform:    core.Telegram,
			Status:      status,
			Code:        resp.ErrorCode,
			Description: resp.Description,
		}
	}
	if out != nil {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("telegram %s: unmarshal result: %w", method, err)
		}
	}
	return nil
}

// --- Telegram API types (minimal subset) ---

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type telegramSendMessage struct {
	ChatID      string                 `json:"chat_id"`
	Text        string                 `json:"text"`
	ReplyMarkup *telegramReplyKeyboard `json:"reply_markup,omitempty"`
}

type telegramReplyKeyboard struct {
	Keyboard        [][]telegramKeyboardButton `json:"keyboard"`
	OneTimeKeyboard bool                       `json:"one_time_keyboard"`
	ResizeKeyboard  bool                       `json:"resize_keyboard"`
}

type telegramKeyboardButton struct {
	Text string `json:"text"`
}

type telegramChat struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}
