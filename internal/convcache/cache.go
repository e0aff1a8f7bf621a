package convcache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/a1zap/webhook-relay/internal/worker"
)

const minRequestLength = 3

// Bare acknowledgements carry no context worth replaying.
var trivialRequests = map[string]struct{}{
	"yes":  {},
	"no":   {},
	"ok":   {},
	"okay": {},
}

// Cache keeps a short rolling window of user requests per chat. It backs up
// the delivery channel's history API: when a history fetch fails, the
// orchestrator can still hand the model recent context from here.
type Cache struct {
	maxRequests int
	expiry      time.Duration
	logger      *zerolog.Logger
	now         func() time.Time

	mu    sync.Mutex
	chats map[string]*chatEntry
}

type chatEntry struct {
	requests     []string
	lastActivity time.Time
}

// Stats summarizes cache occupancy.
type Stats struct {
	Chats    int
	Requests int
}

func New(maxRequests int, expiry time.Duration, logger *zerolog.Logger) *Cache {
	return &Cache{
		maxRequests: maxRequests,
		expiry:      expiry,
		logger:      logger,
		now:         time.Now,
		chats:       make(map[string]*chatEntry),
	}
}

// Store records a request unless it is too short or a bare acknowledgement.
func (c *Cache) Store(chatID, text string) {
	text = strings.TrimSpace(text)
	if len(text) < minRequestLength {
		return
	}

	if _, trivial := trivialRequests[strings.ToLower(text)]; trivial {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.chats[chatID]
	if !ok {
		entry = &chatEntry{}
		c.chats[chatID] = entry
	}

	entry.requests = append(entry.requests, text)
	if len(entry.requests) > c.maxRequests {
		entry.requests = entry.requests[len(entry.requests)-c.maxRequests:]
	}

	entry.lastActivity = c.now()
}

// Recent returns up to n most recent requests for the chat, oldest first.
func (c *Cache) Recent(chatID string, n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.chats[chatID]
	if !ok || len(entry.requests) == 0 {
		return nil
	}

	requests := entry.requests
	if n > 0 && len(requests) > n {
		requests = requests[len(requests)-n:]
	}

	out := make([]string, len(requests))
	copy(out, requests)

	return out
}

// Clear drops all cached context for the chat.
func (c *Cache) Clear(chatID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.chats, chatID)
}

// Sweep removes chats idle longer than the expiry window.
func (c *Cache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	for chatID, entry := range c.chats {
		if now.Sub(entry.lastActivity) > c.expiry {
			delete(c.chats, chatID)
			c.logger.Debug().Str("chat_id", chatID).Msg("conversation cache expired")
		}
	}
}

// Run sweeps idle chats on the given interval until ctx is canceled.
func (c *Cache) Run(ctx context.Context, interval time.Duration) error {
	return worker.Loop(ctx, worker.Task{Name: "convcache-sweep", Interval: interval, Run: c.Sweep}, c.logger)
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{Chats: len(c.chats)}
	for _, entry := range c.chats {
		stats.Requests += len(entry.requests)
	}

	return stats
}
