package classifier

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/a1zap/webhook-relay/internal/catalog"
	"github.com/a1zap/webhook-relay/internal/llm"
)

const (
	defaultMaxAlternatives = 3

	defaultAlternativeContext = "Here are some related places Brandon has reviewed that might interest you"
)

// MentionResult is the outcome of mention detection over a generated reply.
type MentionResult struct {
	MentionedNames      []string
	SuggestAlternatives bool
}

// AlternativeResult carries fallback suggestions when the reply could not
// satisfy the request directly.
type AlternativeResult struct {
	ContextMessage string
	Alternatives   []catalog.Record
}

// Classifier runs the cheap relevance checks around the expensive persona
// generation. Every operation soft-fails: a provider error degrades to a
// neutral default instead of propagating.
type Classifier struct {
	llm             llm.Client
	maxAlternatives int
	logger          *zerolog.Logger
}

func New(client llm.Client, maxAlternatives int, logger *zerolog.Logger) *Classifier {
	if maxAlternatives <= 0 {
		maxAlternatives = defaultMaxAlternatives
	}

	return &Classifier{llm: client, maxAlternatives: maxAlternatives, logger: logger}
}

// IsOnTopic gates the pipeline before the expensive generation. On provider
// failure it fails open: misrouting a legitimate question to the boundary
// reply is a worse outcome than one extra generation attempt.
func (c *Classifier) IsOnTopic(ctx context.Context, question string) bool {
	reply, err := c.llm.GenerateText(ctx, topicTriagePrompt(question), llm.Options{
		Temperature: triageTemperature,
		MaxTokens:   triageMaxTokens,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("topic triage failed, treating as on-topic")

		return true
	}

	return containsYesToken(reply)
}

// DiscussesEntities is the cheap pre-check before mention detection: does
// the reply name specific places at all? Failure means no follow-up, so it
// fails closed.
func (c *Classifier) DiscussesEntities(ctx context.Context, response string) bool {
	reply, err := c.llm.GenerateText(ctx, discussionPrecheckPrompt(response), llm.Options{
		Temperature: precheckTemperature,
		MaxTokens:   precheckMaxTokens,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("discussion pre-check failed, skipping links")

		return false
	}

	return containsYesToken(reply)
}

// DetectMentions asks which catalog names the reply actually discusses and
// whether alternatives should be offered instead. Candidate names that do
// not exactly match a catalog name are discarded.
func (c *Classifier) DetectMentions(ctx context.Context, response string, names []string) MentionResult {
	if len(names) == 0 {
		return MentionResult{}
	}

	reply, err := c.llm.GenerateText(ctx, mentionPrompt(response, names), llm.Options{
		Temperature: mentionTemperature,
		MaxTokens:   mentionMaxTokens,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("mention detection failed")

		return MentionResult{}
	}

	candidates, suggest := parseMentions(reply)

	known := make(map[string]struct{}, len(names))
	for _, name := range names {
		known[name] = struct{}{}
	}

	var mentioned []string

	for _, candidate := range candidates {
		if _, ok := known[candidate]; ok {
			mentioned = append(mentioned, candidate)
		}
	}

	c.logger.Debug().
		Strs("mentioned", mentioned).
		Bool("suggest_alternatives", suggest).
		Msg("mention detection")

	return MentionResult{MentionedNames: mentioned, SuggestAlternatives: suggest}
}

// SuggestAlternatives finds the closest catalog entries to an unmet request.
// Suggested names are matched back to the catalog fuzzily, by substring
// containment in either direction.
func (c *Classifier) SuggestAlternatives(ctx context.Context, response string, records []catalog.Record) AlternativeResult {
	if len(records) == 0 {
		return AlternativeResult{}
	}

	rows := records
	if len(rows) > maxAlternativePromptRows {
		rows = rows[:maxAlternativePromptRows]
	}

	reply, err := c.llm.GenerateText(ctx, alternativePrompt(response, rows), llm.Options{
		Temperature: alternativeTemperature,
		MaxTokens:   alternativeMaxTokens,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("alternative suggestion failed")

		return AlternativeResult{}
	}

	contextMessage, names := parseAlternatives(reply)

	alternatives := matchAlternatives(records, names, c.maxAlternatives)
	if len(alternatives) > 0 && contextMessage == "" {
		contextMessage = defaultAlternativeContext
	}

	c.logger.Debug().
		Int("alternatives", len(alternatives)).
		Str("context", contextMessage).
		Msg("alternative suggestion")

	return AlternativeResult{ContextMessage: contextMessage, Alternatives: alternatives}
}

func matchAlternatives(records []catalog.Record, names []string, limit int) []catalog.Record {
	var matched []catalog.Record

	for _, rec := range records {
		if len(matched) >= limit {
			break
		}

		if rec.Name == "" {
			continue
		}

		for _, name := range names {
			if name == "" {
				continue
			}

			if strings.Contains(rec.Name, name) || strings.Contains(name, rec.Name) {
				matched = append(matched, rec)
				break
			}
		}
	}

	return matched
}
