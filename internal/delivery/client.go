package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/a1zap/webhook-relay/internal/observability"
)

// BlockTypeSocialShare marks a rich content block as an embeddable social
// media post.
const BlockTypeSocialShare = "social_share"

const (
	headerAPIKey     = "X-API-Key"
	requestTimeout   = 30 * time.Second
	rateLimiterBurst = 5

	statusOK    = "ok"
	statusError = "error"
)

// BlockData is the payload of a rich content block.
type BlockData struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// RichContentBlock is one renderable media attachment.
type RichContentBlock struct {
	Type  string    `json:"type"`
	Data  BlockData `json:"data"`
	Order int       `json:"order"`
}

// SendResult is the platform's acknowledgement of a sent message.
type SendResult struct {
	MessageID string `json:"messageId"`
}

// Message is one entry of a chat's history. Content is any because the
// platform interleaves rich payloads with plain text; callers skip
// non-string content.
type Message struct {
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	IsAgent    bool      `json:"isAgent"`
	Content    any       `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// Client talks to the chat platform's agent API.
type Client struct {
	apiURL     string
	apiKey     string
	agentID    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger
}

func New(apiURL, apiKey, agentID string, rps int, logger *zerolog.Logger) *Client {
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		agentID:    agentID,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(rps)), rateLimiterBurst),
		logger:     logger,
	}
}

type sendPayload struct {
	ChatID            string             `json:"chatId"`
	Content           string             `json:"content"`
	Metadata          sendMetadata       `json:"metadata"`
	RichContentBlocks []RichContentBlock `json:"richContentBlocks,omitempty"`
}

type sendMetadata struct {
	Source string `json:"source"`
	Agent  string `json:"agent"`
}

// Send posts a message, optionally with rich content blocks, to the chat.
func (c *Client) Send(ctx context.Context, chatID, content string, blocks []RichContentBlock) (SendResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return SendResult{}, fmt.Errorf("rate limiter error: %w", err)
	}

	payload := sendPayload{
		ChatID:            chatID,
		Content:           content,
		Metadata:          sendMetadata{Source: "webhook-relay", Agent: c.agentID},
		RichContentBlocks: blocks,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return SendResult{}, fmt.Errorf("marshal send payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/send", c.apiURL, c.agentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("build send request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.DeliverySends.WithLabelValues(statusError).Inc()

		return SendResult{}, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		observability.DeliverySends.WithLabelValues(statusError).Inc()

		return SendResult{}, fmt.Errorf("send message: unexpected status %d", resp.StatusCode)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && !errors.Is(err, io.EOF) {
		observability.DeliverySends.WithLabelValues(statusError).Inc()

		return SendResult{}, fmt.Errorf("decode send response: %w", err)
	}

	observability.DeliverySends.WithLabelValues(statusOK).Inc()
	c.logger.Debug().Str("chat_id", chatID).Int("blocks", len(blocks)).Msg("message delivered")

	return result, nil
}

// History fetches up to limit recent messages of the chat, oldest first.
func (c *Client) History(ctx context.Context, chatID string, limit int) ([]Message, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	url := fmt.Sprintf("%s/%s/chat/%s?limit=%d", c.apiURL, c.agentID, chatID, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}

	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch history: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Messages []Message `json:"messages"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode history response: %w", err)
	}

	return payload.Messages, nil
}
