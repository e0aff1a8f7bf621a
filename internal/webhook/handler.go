package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/a1zap/webhook-relay/internal/agent"
	"github.com/a1zap/webhook-relay/internal/delivery"
	"github.com/a1zap/webhook-relay/internal/links"
	"github.com/a1zap/webhook-relay/internal/llm"
	"github.com/a1zap/webhook-relay/internal/observability"
)

const (
	defaultHistoryLimit   = 10
	defaultTestChatPrefix = "test-"

	reasonDuplicate = "duplicate_message"

	boundaryMessage = "Hey! I'm here to help with Brandon's food reviews and restaurant recommendations. What would you like to know about places Brandon has tried? 🍕"

	platformTikTok = "tiktok"
)

// Metric outcome labels.
const (
	outcomeOK              = "ok"
	outcomeValidation      = "validation_error"
	outcomeDuplicate       = "duplicate"
	outcomeEasterEgg       = "easter_egg"
	outcomeOffTopic        = "off_topic"
	outcomeGenerationError = "generation_error"
)

// DeliveryChannel pushes replies out and reads chat history back.
type DeliveryChannel interface {
	Send(ctx context.Context, chatID, content string, blocks []delivery.RichContentBlock) (delivery.SendResult, error)
	History(ctx context.Context, chatID string, limit int) ([]delivery.Message, error)
}

// TopicClassifier runs the cheap relevance checks.
type TopicClassifier interface {
	IsOnTopic(ctx context.Context, question string) bool
	DiscussesEntities(ctx context.Context, response string) bool
}

// LinkResolver maps a reply to follow-up media links.
type LinkResolver interface {
	Resolve(ctx context.Context, responseText string) []links.ResolvedLink
}

// Gatekeeper decides whether an inbound message id gets processed.
type Gatekeeper interface {
	ShouldProcess(messageID string) bool
}

// ContextStore is the conversation cache used as fallback history.
type ContextStore interface {
	Store(chatID, text string)
	Recent(chatID string, n int) []string
}

type Config struct {
	TestChatPrefix string
	HistoryLimit   int
	BaseFile       string
}

// Handler orchestrates the full pipeline for one inbound webhook request.
type Handler struct {
	cfg        Config
	gate       Gatekeeper
	llm        llm.Client
	classifier TopicClassifier
	resolver   LinkResolver
	contexts   ContextStore
	channel    DeliveryChannel
	persona    agent.Agent
	caser      cases.Caser
	logger     *zerolog.Logger
}

func NewHandler(
	cfg Config,
	gate Gatekeeper,
	client llm.Client,
	classifier TopicClassifier,
	resolver LinkResolver,
	contexts ContextStore,
	channel DeliveryChannel,
	persona agent.Agent,
	logger *zerolog.Logger,
) *Handler {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}

	if cfg.TestChatPrefix == "" {
		cfg.TestChatPrefix = defaultTestChatPrefix
	}

	return &Handler{
		cfg:        cfg,
		gate:       gate,
		llm:        client,
		classifier: classifier,
		resolver:   resolver,
		contexts:   contexts,
		channel:    channel,
		persona:    persona,
		caser:      cases.Fold(),
		logger:     logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.WebhookRequests.WithLabelValues(outcomeValidation).Inc()
		writeJSON(w, http.StatusBadRequest, Response{Error: "invalid JSON payload"})

		return
	}

	logger := h.logger.With().
		Str("request_id", uuid.NewString()).
		Str("chat_id", req.Chat.ID).
		Logger()

	resp, status := h.process(r.Context(), &logger, req)
	writeJSON(w, status, resp)
}

func (h *Handler) process(ctx context.Context, logger *zerolog.Logger, req Request) (Response, int) {
	if req.Chat.ID == "" {
		observability.WebhookRequests.WithLabelValues(outcomeValidation).Inc()

		return Response{Error: "Missing chat.id in webhook payload"}, http.StatusBadRequest
	}

	if req.Message.Content == "" {
		observability.WebhookRequests.WithLabelValues(outcomeValidation).Inc()

		return Response{Error: "Missing message.content in webhook payload"}, http.StatusBadRequest
	}

	if !h.gate.ShouldProcess(req.Message.ID) {
		logger.Info().Str("message_id", req.Message.ID).Msg("duplicate message skipped")
		observability.WebhookRequests.WithLabelValues(outcomeDuplicate).Inc()

		return Response{
			Success:   true,
			Skipped:   true,
			Reason:    reasonDuplicate,
			MessageID: req.Message.ID,
		}, http.StatusOK
	}

	testMode := strings.HasPrefix(req.Chat.ID, h.cfg.TestChatPrefix)

	if isEasterEgg(req.Message.Content, h.caser) {
		observability.WebhookRequests.WithLabelValues(outcomeEasterEgg).Inc()

		return h.handleEasterEgg(ctx, logger, req.Chat.ID), http.StatusOK
	}

	if !h.classifier.IsOnTopic(ctx, req.Message.Content) {
		logger.Info().Msg("off-topic question, sending boundary reply")

		if !testMode {
			if _, err := h.channel.Send(ctx, req.Chat.ID, boundaryMessage, nil); err != nil {
				logger.Warn().Err(err).Msg("boundary message delivery failed")
			}
		}

		observability.WebhookRequests.WithLabelValues(outcomeOffTopic).Inc()

		return Response{
			Success:  true,
			Agent:    h.persona.Name,
			Response: boundaryMessage,
			OffTopic: true,
			TestMode: testMode,
		}, http.StatusOK
	}

	response, err := h.generate(ctx, logger, req)
	if err != nil {
		logger.Error().Err(err).Msg("response generation failed")
		observability.WebhookRequests.WithLabelValues(outcomeGenerationError).Inc()

		return Response{Error: "response generation failed"}, http.StatusInternalServerError
	}

	h.contexts.Store(req.Chat.ID, req.Message.Content)

	var messageID string

	if testMode {
		logger.Debug().Msg("test chat, skipping delivery")
	} else {
		sent, err := h.channel.Send(ctx, req.Chat.ID, response, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("primary reply delivery failed")
		} else {
			messageID = sent.MessageID
		}

		h.deliverLinks(ctx, logger, req.Chat.ID, response)
	}

	observability.WebhookRequests.WithLabelValues(outcomeOK).Inc()

	return Response{
		Success:   true,
		Agent:     h.persona.Name,
		Response:  response,
		TestMode:  testMode,
		BaseFile:  h.cfg.BaseFile,
		MessageID: messageID,
	}, http.StatusOK
}

func (h *Handler) handleEasterEgg(ctx context.Context, logger *zerolog.Logger, chatID string) Response {
	logger.Info().Msg("easter egg triggered")

	resp := Response{
		Success:     true,
		Agent:       h.persona.Name,
		Response:    easterEggMessage,
		RichContent: true,
		EasterEgg:   easterEggTrigger,
	}

	sent, err := h.channel.Send(ctx, chatID, easterEggMessage, easterEggBlocks())
	if err != nil {
		logger.Warn().Err(err).Msg("easter egg delivery failed")

		return resp
	}

	resp.MessageID = sent.MessageID

	return resp
}

func (h *Handler) generate(ctx context.Context, logger *zerolog.Logger, req Request) (string, error) {
	conversation := h.buildConversation(ctx, logger, req)

	opts := llm.Options{
		Temperature:  h.persona.Temperature,
		MaxTokens:    h.persona.MaxTokens,
		SystemPrompt: h.persona.SystemPrompt,
	}

	if len(conversation) > 1 {
		return h.llm.ChatWithHistory(ctx, conversation, opts)
	}

	return h.llm.GenerateText(ctx, req.Message.Content, opts)
}

// buildConversation assembles the model's view of the chat: platform
// history when reachable, cached recent requests otherwise, then the
// current message as the final user turn.
func (h *Handler) buildConversation(ctx context.Context, logger *zerolog.Logger, req Request) []llm.Turn {
	var turns []llm.Turn

	history, err := h.channel.History(ctx, req.Chat.ID, h.cfg.HistoryLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("history fetch failed, using cached context")

		for _, text := range h.contexts.Recent(req.Chat.ID, h.cfg.HistoryLimit) {
			turns = append(turns, llm.Turn{Role: llm.RoleUser, Content: text})
		}

		return append(turns, llm.Turn{Role: llm.RoleUser, Content: req.Message.Content})
	}

	for _, msg := range history {
		content, ok := msg.Content.(string)
		if !ok || strings.TrimSpace(content) == "" {
			// Rich payloads cannot be replayed as plain turns.
			continue
		}

		role := llm.RoleUser
		if msg.IsAgent || (req.Agent.ID != "" && msg.SenderID == req.Agent.ID) {
			role = llm.RoleAssistant
		}

		if role == llm.RoleUser && msg.SenderName != "" {
			content = msg.SenderName + ": " + content
		}

		turns = append(turns, llm.Turn{Role: role, Content: content})
	}

	return append(turns, llm.Turn{Role: llm.RoleUser, Content: req.Message.Content})
}

func (h *Handler) deliverLinks(ctx context.Context, logger *zerolog.Logger, chatID, response string) {
	if !h.classifier.DiscussesEntities(ctx, response) {
		logger.Debug().Msg("response names no specific places, skipping links")
		return
	}

	resolved := h.resolver.Resolve(ctx, response)
	if len(resolved) == 0 {
		logger.Debug().Msg("no relevant media links for response")
		return
	}

	blocks := make([]delivery.RichContentBlock, len(resolved))
	for i, link := range resolved {
		blocks[i] = delivery.RichContentBlock{
			Type:  delivery.BlockTypeSocialShare,
			Data:  delivery.BlockData{Platform: platformTikTok, URL: link.URL},
			Order: i,
		}
	}

	if _, err := h.channel.Send(ctx, chatID, followUpMessage(resolved), blocks); err != nil {
		logger.Warn().Err(err).Msg("follow-up delivery failed")
		return
	}

	logger.Info().Int("links", len(resolved)).Msg("media links delivered")
}

// followUpMessage picks singular or plural phrasing. Alternative
// suggestions lead with the classifier's context sentence.
func followUpMessage(resolved []links.ResolvedLink) string {
	if contextMessage := resolved[0].ContextMessage; contextMessage != "" {
		if len(resolved) == 1 {
			return fmt.Sprintf("💡 %s\n\n🎥 Check out %s:", contextMessage, resolved[0].Name)
		}

		return fmt.Sprintf("💡 %s\n\n🎥 Here are %d videos:", contextMessage, len(resolved))
	}

	if len(resolved) == 1 {
		return fmt.Sprintf("🎥 Here's a video about %s!", resolved[0].Name)
	}

	return fmt.Sprintf("🎥 Here are %d videos about these places!", len(resolved))
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
