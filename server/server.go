// Package server assembles the HTTP server and the chat pipeline behind it.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/inaratravel/concierge/internal/observability"
	"github.com/inaratravel/concierge/internal/profile"
	"github.com/inaratravel/concierge/plugin/ai"
	"github.com/inaratravel/concierge/plugin/ai/classifier"
	"github.com/inaratravel/concierge/plugin/ai/dispatch"
	"github.com/inaratravel/concierge/plugin/ai/memory"
	"github.com/inaratravel/concierge/plugin/ai/rag"
	"github.com/inaratravel/concierge/plugin/ai/session"
	apiv1 "github.com/inaratravel/concierge/server/router/api/v1"
	"github.com/inaratravel/concierge/server/runner/ingest"
	"github.com/inaratravel/concierge/server/service/chat"
	"github.com/inaratravel/concierge/store"
)

// maxHistoryTurns keeps four exchanges of context per user.
const maxHistoryTurns = 8

// Server owns the echo instance and every long-lived pipeline component.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	sessions   *session.MemoryStore
	history    *memory.ShortTermHistory
	metrics    *observability.Metrics

	// ingestRunner keeps chunk embeddings current while serving. Nil when no
	// embedding provider is configured.
	ingestRunner *ingest.Runner
	stopRunner   context.CancelFunc
}

// NewServer wires the chat pipeline from the profile and mounts the routes.
func NewServer(ctx context.Context, profile *profile.Profile, st *store.Store) (*Server, error) {
	if err := st.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema")
	}

	metrics := observability.NewMetrics()
	gateway := buildGateway(profile, metrics)
	sessions := session.NewMemoryStore(profile.SessionTTL)
	history := memory.NewShortTermHistory(maxHistoryTurns, profile.HistoryTTL)

	var embedder rag.Embedder
	var ingestRunner *ingest.Runner
	if profile.EmbeddingAPIKey != "" {
		embeddingService, err := ai.NewEmbeddingService(&ai.EmbeddingConfig{
			APIKey:     profile.EmbeddingAPIKey,
			BaseURL:    profile.EmbeddingBaseURL,
			Model:      profile.EmbeddingModel,
			Dimensions: profile.EmbeddingDims,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create embedding service")
		}
		embedder = embeddingService
		ingestRunner = ingest.NewRunner(st, embeddingService, profile.EmbeddingModel)
	} else {
		slog.Warn("no embedding key configured, knowledge-base retrieval disabled")
	}

	catalog := store.NewCatalogSnapshot(st, profile.CatalogTTL)
	retriever := rag.NewRetriever(embedder, st, catalog, profile.RetrieveK)

	var notifier dispatch.Notifier
	if profile.FonnteAPIKey != "" {
		notifier = dispatch.NewWhatsAppSender(profile.FonnteAPIKey, profile.FonnteBaseURL, profile.NotifyTimeout)
	} else {
		slog.Warn("no fonnte key configured, operator notifications disabled")
	}
	dispatcher := dispatch.NewDispatcher(st, notifier, profile.OperatorNumber)

	engine := chat.NewEngine(
		gateway,
		retriever,
		classifier.New(gateway),
		sessions,
		history,
		dispatcher,
		metrics,
		slog.Default(),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	apiV1Service := apiv1.NewAPIV1Service(profile, st, engine, metrics, notifier)
	apiV1Service.Register(e)

	return &Server{
		Profile:      profile,
		Store:        st,
		echoServer:   e,
		sessions:     sessions,
		history:      history,
		metrics:      metrics,
		ingestRunner: ingestRunner,
	}, nil
}

// Start begins serving and blocks until the listener fails or shuts down.
func (s *Server) Start(ctx context.Context) error {
	if s.ingestRunner != nil {
		runnerCtx, cancel := context.WithCancel(ctx)
		s.stopRunner = cancel
		go s.ingestRunner.Run(runnerCtx)
	}
	slog.Info("server started", "addr", s.Profile.ListenAddr(), "version", s.Profile.Version)
	return s.echoServer.Start(s.Profile.ListenAddr())
}

// Shutdown drains the listener and stops background loops.
func (s *Server) Shutdown(ctx context.Context) {
	if s.stopRunner != nil {
		s.stopRunner()
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down http server", "error", err)
	}
	s.sessions.Close()
	s.history.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}

// buildGateway assembles the ordered provider chain: Groq, then OpenRouter,
// then a local Ollama. Unconfigured providers are skipped.
func buildGateway(profile *profile.Profile, metrics *observability.Metrics) ai.CompletionGateway {
	providers := []ai.Completer{}
	if profile.GroqAPIKey != "" {
		providers = append(providers, ai.NewProvider(ai.ProviderConfig{
			Name:          "groq",
			BaseURL:       profile.GroqBaseURL,
			APIKey:        profile.GroqAPIKey,
			ChatModel:     profile.GroqChatModel,
			ClassifyModel: profile.GroqClassifyModel,
			Timeout:       profile.ProviderTimeout,
		}))
	}
	if profile.OpenRouterAPIKey != "" {
		providers = append(providers, ai.NewProvider(ai.ProviderConfig{
			Name:      "openrouter",
			BaseURL:   profile.OpenRouterBaseURL,
			APIKey:    profile.OpenRouterAPIKey,
			ChatModel: profile.OpenRouterChatModel,
			Timeout:   profile.ProviderTimeout,
		}))
	}
	if profile.OllamaBaseURL != "" {
		providers = append(providers, ai.NewProvider(ai.ProviderConfig{
			Name:      "ollama",
			BaseURL:   profile.OllamaBaseURL,
			APIKey:    "ollama",
			ChatModel: profile.OllamaChatModel,
			Timeout:   profile.ProviderTimeout,
		}))
	}
	if len(providers) == 0 {
		slog.Warn("no completion provider configured, every turn will apologize")
	}

	return ai.NewFallbackGateway(providers,
		ai.WithFailureHook(metrics.RecordProviderFailure),
		ai.WithExhaustedHook(metrics.RecordProviderExhausted),
	)
}
