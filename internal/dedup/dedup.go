package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/a1zap/webhook-relay/internal/observability"
	"github.com/a1zap/webhook-relay/internal/worker"
)

// Gate guarantees at-most-once processing of inbound message ids under the
// platform's at-least-once webhook delivery.
type Gate struct {
	expiry time.Duration
	logger *zerolog.Logger
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

func New(expiry time.Duration, logger *zerolog.Logger) *Gate {
	return &Gate{
		expiry: expiry,
		logger: logger,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

// ShouldProcess reports whether the message should be handled and, within
// the same critical section, marks it as processed. Two concurrent
// deliveries of the same id therefore get exactly one true. An empty id
// disables deduplication for that message.
func (g *Gate) ShouldProcess(messageID string) bool {
	if messageID == "" {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if ts, ok := g.seen[messageID]; ok && now.Sub(ts) < g.expiry {
		observability.DedupSkips.Inc()

		return false
	}

	g.seen[messageID] = now

	return true
}

// Sweep purges entries older than the expiry window.
func (g *Gate) Sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	purged := 0

	for id, ts := range g.seen {
		if now.Sub(ts) >= g.expiry {
			delete(g.seen, id)

			purged++
		}
	}

	if purged > 0 {
		g.logger.Debug().Int("purged", purged).Int("tracked", len(g.seen)).Msg("dedup sweep")
	}
}

// Run sweeps expired entries on the given interval until ctx is canceled.
func (g *Gate) Run(ctx context.Context, interval time.Duration) error {
	return worker.Loop(ctx, worker.Task{Name: "dedup-sweep", Interval: interval, Run: g.Sweep}, g.logger)
}

// Len reports the number of tracked message ids.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.seen)
}
