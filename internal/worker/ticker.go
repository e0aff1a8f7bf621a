package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Task is a periodic background job decoupled from request handling.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func()
}

// Loop runs the task on its interval until the context is canceled and
// returns the wrapped context error. The task never runs concurrently with
// itself.
func Loop(ctx context.Context, task Task, logger *zerolog.Logger) error {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	logger.Info().Str("worker", task.Name).Dur("interval", task.Interval).Msg("starting sweep loop")

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str("worker", task.Name).Msg("sweep loop stopped")

			return fmt.Errorf("sweep loop %s: %w", task.Name, ctx.Err())
		case <-ticker.C:
			task.Run()
		}
	}
}
