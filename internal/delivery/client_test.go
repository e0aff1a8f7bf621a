package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(apiURL string) *Client {
	logger := zerolog.Nop()

	return New(apiURL, "secret-key", "agent-1", 100, &logger)
}

func TestSend(t *testing.T) {
	var (
		gotPath   string
		gotAPIKey string
		gotBody   map[string]any
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messageId":"msg-42"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	blocks := []RichContentBlock{
		{Type: BlockTypeSocialShare, Data: BlockData{Platform: "tiktok", URL: "https://example.com/v"}, Order: 0},
	}

	result, err := client.Send(context.Background(), "chat-1", "hello", blocks)

	require.NoError(t, err)
	assert.Equal(t, "msg-42", result.MessageID)
	assert.Equal(t, "/agent-1/send", gotPath)
	assert.Equal(t, "secret-key", gotAPIKey)
	assert.Equal(t, "chat-1", gotBody["chatId"])
	assert.Equal(t, "hello", gotBody["content"])
	assert.Len(t, gotBody["richContentBlocks"], 1)
}

func TestSendOmitsEmptyBlocks(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Send(context.Background(), "chat-1", "hello", nil)

	require.NoError(t, err)
	assert.NotContains(t, gotBody, "richContentBlocks")
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Send(context.Background(), "chat-1", "hello", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestHistory(t *testing.T) {
	var gotPath, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[
			{"senderId":"user-1","senderName":"Minh","isAgent":false,"content":"best pho?"},
			{"senderId":"agent-1","isAgent":true,"content":"Try Pho 24"},
			{"senderId":"user-1","isAgent":false,"content":{"type":"image"}}
		]}`))
	}))
	defer srv.Close()

	messages, err := newTestClient(srv.URL).History(context.Background(), "chat-1", 10)

	require.NoError(t, err)
	assert.Equal(t, "/agent-1/chat/chat-1", gotPath)
	assert.Equal(t, "limit=10", gotQuery)
	require.Len(t, messages, 3)
	assert.Equal(t, "best pho?", messages[0].Content)
	assert.True(t, messages[1].IsAgent)

	_, isString := messages[2].Content.(string)
	assert.False(t, isString)
}

func TestHistoryErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).History(context.Background(), "chat-1", 10)

	require.Error(t, err)
}
