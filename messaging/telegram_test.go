package messaging

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/agentstore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type recordedRequest struct {
	Path string
	Body map[string]any
}

func telegramServer(t *testing.T, handler func(method string, body map[string]any) (int, string)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(data, &body))
		seen = append(seen, recordedRequest{Path: r.URL.Path, Body: body})

		method := r.URL.Path[len("/botTOKEN/"):]
		status, resp := handler(method, body)
		w.WriteHeader(status)
		io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestTelegram_SendText(t *testing.T) {
	srv, seen := telegramServer(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"ok":true,"result":{"message_id":1}}`
	})
	p, err := PlatformFrom(core.Telegram, "TOKEN", WithBaseURL(srv.URL))
	require.NoError(t, err)

	require.NoError(t, p.SendText(context.Background(), "42", "hello"))

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, "/botTOKEN/sendMessage", req.Path)
	assert.Equal(t, "42", req.Body["chat_id"])
	assert.Equal(t, "hello", req.Body["text"])
	assert.NotContains(t, req.Body, "reply_markup")
}

func TestTelegram_SendMessageWithOptions(t *testing.T) {
	srv, seen := telegramServer(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"ok":true,"result":{}}`
	})
	p := NewTelegramAdapter("TOKEN", WithBaseURL(srv.URL))

	err := p.SendMessage(context.Background(), "42", OutboundMessage{Text: "pick", Options: []string{"yes", "no"}})
	require.NoError(t, err)

	markup := (*seen)[0].Body["reply_markup"].(map[string]any)
	assert.Equal(t, []any{
		[]any{map[string]any{"text": "yes"}},
		[]any{map[string]any{"text": "no"}},
	}, markup["keyboard"])
	assert.Equal(t, true, markup["one_time_keyboard"])
}

func TestTelegram_APIError(t *testing.T) {
	srv, _ := telegramServer(t, func(string, map[string]any) (int, string) {
		return http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
	})
	p := NewTelegramAdapter("TOKEN", WithBaseURL(srv.URL))

	err := p.SendText(context.Background(), "0", "hello")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "Bad Request: chat not found", apiErr.Description)
	assert.Equal(t, core.Telegram, apiErr.Platform)
}

func TestTelegram_UserProfile(t *testing.T) {
	srv, seen := telegramServer(t, func(method string, body map[string]any) (int, string) {
		return http.StatusOK, `{"ok":true,"result":{"id":42,"first_name":"Ada","last_name":"Lovelace","username":"ada"}}`
	})
	p := NewTelegramAdapter("TOKEN", WithBaseURL(srv.URL))

	profile, err := p.UserProfile(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, &Profile{
		PlatformUserID: "42",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Username:       "ada",
		Language:       language.Und,
	}, profile)
	assert.Equal(t, "/botTOKEN/getChat", (*seen)[0].Path)
}

func TestTelegram_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewTelegramAdapter("SECRET", WithBaseURL(url))
	err := p.SendText(context.Background(), "1", "x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET")
}
