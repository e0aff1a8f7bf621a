package llm

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	breakerThreshold = 5
	breakerCooldown  = time.Minute
)

// ErrCircuitOpen is returned while the provider is cooling down after
// repeated failures.
var ErrCircuitOpen = errors.New("provider circuit open")

type circuitBreaker struct {
	logger *zerolog.Logger

	mu                  sync.Mutex
	consecutiveFailures int
	openUntil           time.Time
}

func newCircuitBreaker(logger *zerolog.Logger) *circuitBreaker {
	return &circuitBreaker{logger: logger}
}

func (b *circuitBreaker) check() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Now().Before(b.openUntil) {
		return ErrCircuitOpen
	}

	return nil
}

func (b *circuitBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
}

func (b *circuitBreaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	if b.consecutiveFailures >= breakerThreshold {
		b.openUntil = time.Now().Add(breakerCooldown)
		b.logger.Warn().
			Int("failures", b.consecutiveFailures).
			Time("open_until", b.openUntil).
			Msg("provider circuit opened")
	}
}
