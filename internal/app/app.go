package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/a1zap/webhook-relay/internal/agent"
	"github.com/a1zap/webhook-relay/internal/catalog"
	"github.com/a1zap/webhook-relay/internal/classifier"
	"github.com/a1zap/webhook-relay/internal/config"
	"github.com/a1zap/webhook-relay/internal/convcache"
	"github.com/a1zap/webhook-relay/internal/dedup"
	"github.com/a1zap/webhook-relay/internal/delivery"
	"github.com/a1zap/webhook-relay/internal/links"
	"github.com/a1zap/webhook-relay/internal/llm"
	"github.com/a1zap/webhook-relay/internal/observability"
	"github.com/a1zap/webhook-relay/internal/webhook"
)

const (
	webhookRoute = "/webhook/brandoneats"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// App wires the relay's dependencies and runs its servers and sweeps.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
}

func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// Run blocks until ctx is canceled or the webhook server fails.
func (a *App) Run(ctx context.Context) error {
	llmClient := llm.New(a.cfg, a.component("llm"))
	a.registerGroundingDocument(llmClient)

	cat := catalog.New(a.cfg.CatalogPath, a.component("catalog"))
	cls := classifier.New(llmClient, a.cfg.MaxAlternatives, a.component("classifier"))
	resolver := links.NewResolver(cat, cls, a.cfg.MaxLinks, a.component("links"))
	gate := dedup.New(a.cfg.DedupExpiry, a.component("dedup"))
	contexts := convcache.New(a.cfg.ConvCacheMaxRequests, a.cfg.ConvCacheExpiry, a.component("convcache"))
	channel := delivery.New(
		a.cfg.DeliveryAPIURL,
		a.cfg.DeliveryAPIKey,
		a.cfg.AgentID,
		a.cfg.RateLimitRPS,
		a.component("delivery"),
	)

	persona := agent.BrandonEats()

	handler := webhook.NewHandler(webhook.Config{
		TestChatPrefix: a.cfg.TestChatPrefix,
		HistoryLimit:   a.cfg.HistoryLimit,
		BaseFile:       filepath.Base(a.cfg.CatalogPath),
	}, gate, llmClient, cls, resolver, contexts, channel, persona, a.component("webhook"))

	health := observability.NewServer(a.cfg.HealthPort, nil, a.component("health"))

	go func() {
		if err := health.Start(ctx); err != nil {
			a.logger.Error().Err(err).Msg("health server error")
		}
	}()

	go func() {
		_ = gate.Run(ctx, a.cfg.DedupSweepInterval)
	}()

	go func() {
		_ = contexts.Run(ctx, a.cfg.ConvCacheSweepInterval)
	}()

	return a.serveWebhooks(ctx, handler)
}

// registerGroundingDocument loads the dataset file into the provider so
// every persona generation is grounded in it.
func (a *App) registerGroundingDocument(client llm.Client) {
	content, err := os.ReadFile(a.cfg.CatalogPath)
	if err != nil {
		a.logger.Warn().Err(err).
			Str("path", a.cfg.CatalogPath).
			Msg("no grounding dataset, replies will lack data context")

		return
	}

	persona := agent.BrandonEats()
	name := filepath.Base(a.cfg.CatalogPath)

	client.RegisterDocument(persona.DatasetID, name, string(content))
	client.UseDocument(persona.DatasetID)

	a.logger.Info().Str("dataset", name).Msg("grounding dataset registered")
}

func (a *App) serveWebhooks(ctx context.Context, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle(webhookRoute, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("webhook server shutdown error")
		}
	}()

	a.logger.Info().Int("port", a.cfg.Port).Str("route", webhookRoute).Msg("webhook server starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webhook server: %w", err)
	}

	a.logger.Info().Msg("webhook server stopped")

	return ctx.Err()
}

func (a *App) component(name string) *zerolog.Logger {
	logger := a.logger.With().Str("component", name).Logger()

	return &logger
}
