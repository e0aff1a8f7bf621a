package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a1zap/webhook-relay/internal/agent"
	"github.com/a1zap/webhook-relay/internal/delivery"
	"github.com/a1zap/webhook-relay/internal/links"
	"github.com/a1zap/webhook-relay/internal/llm"
)

type sentMessage struct {
	chatID  string
	content string
	blocks  []delivery.RichContentBlock
}

type stubChannel struct {
	sent       []sentMessage
	sendErr    error
	history    []delivery.Message
	historyErr error
}

func (s *stubChannel) Send(_ context.Context, chatID, content string, blocks []delivery.RichContentBlock) (delivery.SendResult, error) {
	if s.sendErr != nil {
		return delivery.SendResult{}, s.sendErr
	}

	s.sent = append(s.sent, sentMessage{chatID: chatID, content: content, blocks: blocks})

	return delivery.SendResult{MessageID: "msg-42"}, nil
}

func (s *stubChannel) History(_ context.Context, _ string, _ int) ([]delivery.Message, error) {
	return s.history, s.historyErr
}

type stubClassifier struct {
	onTopic   bool
	discusses bool
}

func (s *stubClassifier) IsOnTopic(_ context.Context, _ string) bool         { return s.onTopic }
func (s *stubClassifier) DiscussesEntities(_ context.Context, _ string) bool { return s.discusses }

type stubResolver struct {
	resolved []links.ResolvedLink
}

func (s *stubResolver) Resolve(_ context.Context, _ string) []links.ResolvedLink {
	return s.resolved
}

type stubGate struct {
	duplicate bool
}

func (s *stubGate) ShouldProcess(_ string) bool { return !s.duplicate }

type stubContexts struct {
	stored []string
	recent []string
}

func (s *stubContexts) Store(_, text string) { s.stored = append(s.stored, text) }

func (s *stubContexts) Recent(_ string, _ int) []string { return s.recent }

type stubLLM struct {
	reply string
	err   error
	turns []llm.Turn
}

func (s *stubLLM) GenerateText(_ context.Context, _ string, _ llm.Options) (string, error) {
	return s.reply, s.err
}

func (s *stubLLM) ChatWithHistory(_ context.Context, turns []llm.Turn, _ llm.Options) (string, error) {
	s.turns = turns

	return s.reply, s.err
}

func (s *stubLLM) RegisterDocument(_, _, _ string) {}
func (s *stubLLM) UseDocument(_ string)            {}

type fixture struct {
	handler    *Handler
	channel    *stubChannel
	classifier *stubClassifier
	resolver   *stubResolver
	gate       *stubGate
	contexts   *stubContexts
	llm        *stubLLM
}

func newFixture() *fixture {
	logger := zerolog.Nop()

	f := &fixture{
		channel:    &stubChannel{},
		classifier: &stubClassifier{onTopic: true},
		resolver:   &stubResolver{},
		gate:       &stubGate{},
		contexts:   &stubContexts{},
		llm:        &stubLLM{reply: "Brandon loved Pho 24"},
	}

	f.handler = NewHandler(
		Config{BaseFile: "brandoneats.csv"},
		f.gate,
		f.llm,
		f.classifier,
		f.resolver,
		f.contexts,
		f.channel,
		agent.BrandonEats(),
		&logger,
	)

	return f
}

func (f *fixture) post(t *testing.T, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook/brandoneats", strings.NewReader(body))
	rec := httptest.NewRecorder()

	f.handler.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return rec, resp
}

func payload(chatID, messageID, content string) string {
	body, _ := json.Marshal(Request{
		Chat:    Chat{ID: chatID},
		Message: Message{ID: messageID, Content: content},
		Agent:   Agent{ID: "agent-1"},
	})

	return string(body)
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/webhook/brandoneats", nil)
	rec := httptest.NewRecorder()

	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestInvalidJSON(t *testing.T) {
	f := newFixture()

	rec, resp := f.post(t, "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing chat id", payload("", "msg-1", "best pho?")},
		{"missing content", payload("chat-1", "msg-1", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			rec, resp := f.post(t, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, resp.Error)
			assert.Empty(t, f.channel.sent)
		})
	}
}

func TestDuplicateSkipped(t *testing.T) {
	f := newFixture()
	f.gate.duplicate = true

	rec, resp := f.post(t, payload("chat-1", "msg-1", "best pho?"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.True(t, resp.Skipped)
	assert.Equal(t, reasonDuplicate, resp.Reason)
	assert.Equal(t, "msg-1", resp.MessageID)
	assert.Empty(t, f.channel.sent)
}

func TestEasterEggMatrix(t *testing.T) {
	tests := []struct {
		content string
		hit     bool
	}{
		{"a1", true},
		{" A1 ", true},
		{"A1", true},
		{"a1 test", false},
		{"hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			f := newFixture()
			f.classifier.onTopic = false

			_, resp := f.post(t, payload("chat-1", "msg-1", tt.content))

			if tt.hit {
				assert.Equal(t, easterEggTrigger, resp.EasterEgg)
				assert.True(t, resp.RichContent)
				assert.Equal(t, easterEggMessage, resp.Response)

				require.Len(t, f.channel.sent, 1)
				require.Len(t, f.channel.sent[0].blocks, 3)
				assert.Equal(t, "instagram", f.channel.sent[0].blocks[0].Data.Platform)
				assert.Equal(t, "tiktok", f.channel.sent[0].blocks[1].Data.Platform)
				assert.Equal(t, "youtube", f.channel.sent[0].blocks[2].Data.Platform)
			} else {
				assert.Empty(t, resp.EasterEgg)
			}
		})
	}
}

func TestEasterEggSurvivesDeliveryFailure(t *testing.T) {
	f := newFixture()
	f.channel.sendErr = errors.New("down")

	rec, resp := f.post(t, payload("chat-1", "msg-1", "a1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, easterEggTrigger, resp.EasterEgg)
	assert.Empty(t, resp.MessageID)
}

func TestOffTopicBoundary(t *testing.T) {
	f := newFixture()
	f.classifier.onTopic = false

	rec, resp := f.post(t, payload("chat-1", "msg-1", "who won the game?"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.True(t, resp.OffTopic)
	assert.Equal(t, boundaryMessage, resp.Response)

	require.Len(t, f.channel.sent, 1)
	assert.Equal(t, boundaryMessage, f.channel.sent[0].content)
}

func TestOffTopicTestModeSkipsDelivery(t *testing.T) {
	f := newFixture()
	f.classifier.onTopic = false

	_, resp := f.post(t, payload("test-chat", "msg-1", "who won the game?"))

	assert.True(t, resp.OffTopic)
	assert.True(t, resp.TestMode)
	assert.Empty(t, f.channel.sent)
}

func TestTestModeReturnsReplyWithoutDelivery(t *testing.T) {
	f := newFixture()

	_, resp := f.post(t, payload("test-chat", "msg-1", "best pho?"))

	assert.True(t, resp.Success)
	assert.True(t, resp.TestMode)
	assert.Equal(t, "Brandon loved Pho 24", resp.Response)
	assert.Equal(t, "brandoneats.csv", resp.BaseFile)
	assert.Empty(t, f.channel.sent)
	assert.Equal(t, []string{"best pho?"}, f.contexts.stored)
}

func TestGenerationFailure(t *testing.T) {
	f := newFixture()
	f.llm.err = errors.New("provider down")

	rec, resp := f.post(t, payload("chat-1", "msg-1", "best pho?"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, f.channel.sent)
}

func TestFollowUpWithSingleDirectLink(t *testing.T) {
	f := newFixture()
	f.classifier.discusses = true
	f.resolver.resolved = []links.ResolvedLink{
		{Name: "Pho 24", URL: "https://example.com/1"},
	}

	_, resp := f.post(t, payload("chat-1", "msg-1", "best pho?"))

	assert.True(t, resp.Success)
	assert.Equal(t, "msg-42", resp.MessageID)

	require.Len(t, f.channel.sent, 2)
	assert.Equal(t, "Brandon loved Pho 24", f.channel.sent[0].content)
	assert.Equal(t, "🎥 Here's a video about Pho 24!", f.channel.sent[1].content)
	require.Len(t, f.channel.sent[1].blocks, 1)
	assert.Equal(t, delivery.BlockTypeSocialShare, f.channel.sent[1].blocks[0].Type)
	assert.Equal(t, "https://example.com/1", f.channel.sent[1].blocks[0].Data.URL)
}

func TestFollowUpPluralAndAlternatives(t *testing.T) {
	tests := []struct {
		name     string
		resolved []links.ResolvedLink
		want     string
	}{
		{
			name: "plural direct",
			resolved: []links.ResolvedLink{
				{Name: "Pho 24", URL: "https://example.com/1"},
				{Name: "Banh Mi 25", URL: "https://example.com/2"},
			},
			want: "🎥 Here are 2 videos about these places!",
		},
		{
			name: "single alternative",
			resolved: []links.ResolvedLink{
				{Name: "Pho 24", URL: "https://example.com/1", ContextMessage: "Closest casual spots"},
			},
			want: "💡 Closest casual spots\n\n🎥 Check out Pho 24:",
		},
		{
			name: "plural alternatives",
			resolved: []links.ResolvedLink{
				{Name: "Pho 24", URL: "https://example.com/1", ContextMessage: "Closest casual spots"},
				{Name: "Banh Mi 25", URL: "https://example.com/2", ContextMessage: "Closest casual spots"},
			},
			want: "💡 Closest casual spots\n\n🎥 Here are 2 videos:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.classifier.discusses = true
			f.resolver.resolved = tt.resolved

			f.post(t, payload("chat-1", "msg-1", "best pho?"))

			require.Len(t, f.channel.sent, 2)
			assert.Equal(t, tt.want, f.channel.sent[1].content)
		})
	}
}

func TestNoFollowUpWhenPrecheckFails(t *testing.T) {
	f := newFixture()
	f.classifier.discusses = false
	f.resolver.resolved = []links.ResolvedLink{{Name: "Pho 24", URL: "https://example.com/1"}}

	f.post(t, payload("chat-1", "msg-1", "best pho?"))

	require.Len(t, f.channel.sent, 1)
}

func TestHistoryAssembly(t *testing.T) {
	f := newFixture()
	f.channel.history = []delivery.Message{
		{SenderID: "user-1", SenderName: "Minh", Content: "best pho?"},
		{SenderID: "agent-1", IsAgent: true, Content: "Try Pho 24"},
		{SenderID: "user-1", Content: map[string]any{"type": "image"}},
		{SenderID: "user-1", Content: "   "},
	}

	f.post(t, payload("chat-1", "msg-1", "what about banh mi?"))

	require.Len(t, f.llm.turns, 3)
	assert.Equal(t, llm.Turn{Role: llm.RoleUser, Content: "Minh: best pho?"}, f.llm.turns[0])
	assert.Equal(t, llm.Turn{Role: llm.RoleAssistant, Content: "Try Pho 24"}, f.llm.turns[1])
	assert.Equal(t, llm.Turn{Role: llm.RoleUser, Content: "what about banh mi?"}, f.llm.turns[2])
}

func TestHistoryFailureFallsBackToCache(t *testing.T) {
	f := newFixture()
	f.channel.historyErr = errors.New("platform down")
	f.contexts.recent = []string{"best pho?"}

	_, resp := f.post(t, payload("chat-1", "msg-1", "what about banh mi?"))

	assert.True(t, resp.Success)
	require.Len(t, f.llm.turns, 2)
	assert.Equal(t, "best pho?", f.llm.turns[0].Content)
	assert.Equal(t, "what about banh mi?", f.llm.turns[1].Content)
}
