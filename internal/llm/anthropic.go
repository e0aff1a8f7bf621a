package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/a1zap/webhook-relay/internal/config"
	"github.com/a1zap/webhook-relay/internal/observability"
)

const (
	defaultAnthropicModel = "claude-haiku-4.5"

	anthropicRateLimiterBurst = 5
	anthropicMaxTokensDefault = 4096
	providerNameAnthropic     = "anthropic"
	anthropicContentTypeText  = "text"
)

type anthropicClient struct {
	*documentStore

	cfg         *config.Config
	client      anthropic.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     *circuitBreaker
}

func NewAnthropic(cfg *config.Config, logger *zerolog.Logger) Client {
	rateLimit := cfg.RateLimitRPS
	if rateLimit == 0 {
		rateLimit = 1
	}

	return &anthropicClient{
		documentStore: newDocumentStore(),
		cfg:           cfg,
		client:        anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		logger:        logger,
		rateLimiter:   rate.NewLimiter(rate.Limit(float64(rateLimit)), anthropicRateLimiterBurst),
		breaker:       newCircuitBreaker(logger),
	}
}

func (c *anthropicClient) GenerateText(ctx context.Context, prompt string, opts Options) (string, error) {
	msgs := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}

	return c.complete(ctx, msgs, opts)
}

func (c *anthropicClient) ChatWithHistory(ctx context.Context, turns []Turn, opts Options) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, len(turns))

	for _, turn := range turns {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Role == RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}

	return c.complete(ctx, msgs, opts)
}

func (c *anthropicClient) complete(ctx context.Context, msgs []anthropic.MessageParam, opts Options) (string, error) {
	if err := c.breaker.check(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = anthropicMaxTokensDefault
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model()),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}

	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(opts.Temperature))
	}

	if system := c.groundedSystemPrompt(opts.SystemPrompt); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	start := time.Now()

	resp, err := c.client.Messages.New(ctx, params)

	observability.LLMRequestDuration.WithLabelValues(providerNameAnthropic).Observe(time.Since(start).Seconds())

	if err != nil {
		c.breaker.recordFailure()

		return "", fmt.Errorf("anthropic chat completion: %w", err)
	}

	c.breaker.recordSuccess()

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug().
		Str("model", c.model()).
		Int64("input_tokens", resp.Usage.InputTokens).
		Int64("output_tokens", resp.Usage.OutputTokens).
		Msg("anthropic completion")

	return text, nil
}

func (c *anthropicClient) model() string {
	if c.cfg.AnthropicModel != "" {
		return c.cfg.AnthropicModel
	}

	return defaultAnthropicModel
}

func extractText(resp *anthropic.Message) string {
	var b strings.Builder

	for _, block := range resp.Content {
		if block.Type == anthropicContentTypeText {
			b.WriteString(block.Text)
		}
	}

	return b.String()
}
