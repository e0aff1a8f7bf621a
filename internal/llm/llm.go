package llm

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/a1zap/webhook-relay/internal/config"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation history.
type Turn struct {
	Role    Role
	Content string
}

// Options tune a single generation call. Zero values mean provider defaults.
type Options struct {
	Temperature  float32
	MaxTokens    int
	SystemPrompt string
}

// ErrEmptyCompletion is returned when a provider answers with no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// Client generates text. Providers may hold registered grounding documents;
// the selected document is implicitly attached as system context to every
// call until deselected.
type Client interface {
	GenerateText(ctx context.Context, prompt string, opts Options) (string, error)
	ChatWithHistory(ctx context.Context, turns []Turn, opts Options) (string, error)
	RegisterDocument(id, name, content string)
	UseDocument(id string)
}

const apiKeyMock = "mock"

// New picks a provider from configured credentials. Anthropic wins when both
// are set; without any key a mock client keeps local flows moving.
func New(cfg *config.Config, logger *zerolog.Logger) Client {
	switch {
	case cfg.AnthropicAPIKey != "":
		return NewAnthropic(cfg, logger)
	case cfg.LLMAPIKey != "" && cfg.LLMAPIKey != apiKeyMock:
		return NewOpenAI(cfg, logger)
	default:
		logger.Warn().Msg("no completion provider configured, using mock client")

		return NewMock()
	}
}
