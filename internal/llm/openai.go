package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/a1zap/webhook-relay/internal/config"
	"github.com/a1zap/webhook-relay/internal/observability"
)

const (
	openaiRateLimiterBurst = 5
	providerNameOpenAI     = "openai"
)

type openaiClient struct {
	*documentStore

	cfg         *config.Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
	breaker     *circuitBreaker
}

func NewOpenAI(cfg *config.Config, logger *zerolog.Logger) Client {
	rateLimit := cfg.RateLimitRPS
	if rateLimit == 0 {
		rateLimit = 1
	}

	return &openaiClient{
		documentStore: newDocumentStore(),
		cfg:           cfg,
		client:        openai.NewClient(cfg.LLMAPIKey),
		logger:        logger,
		rateLimiter:   rate.NewLimiter(rate.Limit(float64(rateLimit)), openaiRateLimiterBurst),
		breaker:       newCircuitBreaker(logger),
	}
}

func (c *openaiClient) GenerateText(ctx context.Context, prompt string, opts Options) (string, error) {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}

	return c.complete(ctx, msgs, opts)
}

func (c *openaiClient) ChatWithHistory(ctx context.Context, turns []Turn, opts Options) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns))

	for _, turn := range turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}

		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}

	return c.complete(ctx, msgs, opts)
}

func (c *openaiClient) complete(ctx context.Context, msgs []openai.ChatCompletionMessage, opts Options) (string, error) {
	if err := c.breaker.check(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	if system := c.groundedSystemPrompt(opts.SystemPrompt); system != "" {
		msgs = append([]openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
		}, msgs...)
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model(),
		Messages:    msgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})

	observability.LLMRequestDuration.WithLabelValues(providerNameOpenAI).Observe(time.Since(start).Seconds())

	if err != nil {
		c.breaker.recordFailure()

		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	c.breaker.recordSuccess()

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug().
		Str("model", c.model()).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("openai completion")

	return resp.Choices[0].Message.Content, nil
}

func (c *openaiClient) model() string {
	if c.cfg.LLMModel != "" {
		return c.cfg.LLMModel
	}

	return openai.GPT4oMini
}
