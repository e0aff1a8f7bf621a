package links

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/a1zap/webhook-relay/internal/catalog"
	"github.com/a1zap/webhook-relay/internal/classifier"
	"github.com/a1zap/webhook-relay/internal/observability"
)

const defaultMaxLinks = 5

// ResolvedLink is a media link ready for follow-up delivery. ContextMessage
// is set only on the alternatives path, where it carries the classifier's
// one-sentence rationale.
type ResolvedLink struct {
	Name           string
	URL            string
	Category       string
	Locale         string
	ContextMessage string
}

// Source provides the entity catalog.
type Source interface {
	Load() []catalog.Record
}

// Detector runs the mention and alternative classifications.
type Detector interface {
	DetectMentions(ctx context.Context, response string, names []string) classifier.MentionResult
	SuggestAlternatives(ctx context.Context, response string, records []catalog.Record) classifier.AlternativeResult
}

// Resolver maps a generated reply to the media links worth attaching as a
// follow-up: direct matches first, alternatives as the fallback tier.
type Resolver struct {
	source   Source
	detector Detector
	maxLinks int
	logger   *zerolog.Logger
}

func NewResolver(source Source, detector Detector, maxLinks int, logger *zerolog.Logger) *Resolver {
	if maxLinks <= 0 {
		maxLinks = defaultMaxLinks
	}

	return &Resolver{source: source, detector: detector, maxLinks: maxLinks, logger: logger}
}

// Resolve returns the links to attach for the reply, or nil when nothing
// relevant was found. It never fails: classification errors have already
// degraded to empty results inside the detector.
func (r *Resolver) Resolve(ctx context.Context, responseText string) []ResolvedLink {
	if strings.TrimSpace(responseText) == "" {
		return nil
	}

	records := r.source.Load()
	if len(records) == 0 {
		return nil
	}

	result := r.detector.DetectMentions(ctx, responseText, catalog.Names(records))

	if len(result.MentionedNames) == 0 {
		if !result.SuggestAlternatives {
			return nil
		}

		return r.resolveAlternatives(ctx, responseText, records)
	}

	byName := make(map[string]catalog.Record, len(records))
	for _, rec := range records {
		if _, ok := byName[rec.Name]; !ok {
			byName[rec.Name] = rec
		}
	}

	seen := make(map[string]struct{})

	var resolved []ResolvedLink

	for _, name := range result.MentionedNames {
		rec, ok := byName[name]
		if !ok || rec.MediaLink == "" {
			continue
		}

		if _, dup := seen[rec.MediaLink]; dup {
			continue
		}

		seen[rec.MediaLink] = struct{}{}

		resolved = append(resolved, ResolvedLink{
			Name:     rec.Name,
			URL:      rec.MediaLink,
			Category: rec.Category,
			Locale:   rec.Locale,
		})

		if len(resolved) == r.maxLinks {
			break
		}
	}

	observability.LinksResolved.Add(float64(len(resolved)))
	r.logger.Debug().Int("links", len(resolved)).Msg("direct links resolved")

	return resolved
}

func (r *Resolver) resolveAlternatives(ctx context.Context, responseText string, records []catalog.Record) []ResolvedLink {
	result := r.detector.SuggestAlternatives(ctx, responseText, records)

	var resolved []ResolvedLink

	for _, rec := range result.Alternatives {
		if rec.MediaLink == "" {
			continue
		}

		resolved = append(resolved, ResolvedLink{
			Name:           rec.Name,
			URL:            rec.MediaLink,
			Category:       rec.Category,
			Locale:         rec.Locale,
			ContextMessage: result.ContextMessage,
		})
	}

	observability.LinksResolved.Add(float64(len(resolved)))
	r.logger.Debug().Int("links", len(resolved)).Msg("alternative links resolved")

	return resolved
}
