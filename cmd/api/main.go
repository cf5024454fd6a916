package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/aura-sadaqa/aura/internal/api/handlers"
	"github.com/aura-sadaqa/aura/internal/api/middleware"
	"github.com/aura-sadaqa/aura/internal/chat"
	"github.com/aura-sadaqa/aura/internal/classify"
	"github.com/aura-sadaqa/aura/internal/config"
	"github.com/aura-sadaqa/aura/internal/embeddings"
	"github.com/aura-sadaqa/aura/internal/googleai"
	"github.com/aura-sadaqa/aura/internal/ingest"
	"github.com/aura-sadaqa/aura/internal/observability"
	"github.com/aura-sadaqa/aura/internal/openai"
	"github.com/aura-sadaqa/aura/internal/repository"
	"github.com/aura-sadaqa/aura/internal/vectorindex"
	"github.com/aura-sadaqa/aura/pkg/database"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)

	// Metrics (stdout exporter; disabled unless METRICS_ENABLED=true)
	meterProvider, err := observability.NewMeterProvider(cfg.MetricsEnabled)
	if err != nil {
		slog.Error("Failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownMeterProvider(shutdownCtx, meterProvider); err != nil {
			slog.Error("Failed to shut down metrics", "error", err)
		}
	}()

	var pipelineMetrics observability.PipelineMetrics
	var httpMetrics observability.HTTPMetrics
	if meterProvider != nil {
		meter := meterProvider.Meter("aura-api")
		pipelineMetrics, err = observability.NewPipelineMetrics(meter)
		if err != nil {
			slog.Error("Failed to create pipeline metrics", "error", err)
			os.Exit(1)
		}
		httpMetrics, err = observability.NewHTTPMetrics(meter)
		if err != nil {
			slog.Error("Failed to create HTTP metrics", "error", err)
			os.Exit(1)
		}
	}

	// Initialize database connection
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Pinecone vector index
	index, err := vectorindex.Connect(ctx, cfg.PineconeAPIKey, cfg.PineconeIndex)
	if err != nil {
		slog.Error("Failed to connect to vector index", "index", cfg.PineconeIndex, "error", err)
		os.Exit(1)
	}

	// Gemini client handles generation always; embeddings unless the
	// provider is switched to OpenAI.
	googleClient, err := googleai.NewClient(ctx, cfg.GoogleAPIKey,
		googleai.WithDimensions(cfg.EmbeddingDimensions),
		googleai.WithEmbeddingModel(cfg.EmbeddingModel),
		googleai.WithGenerationModel(cfg.GenerationModel),
	)
	if err != nil {
		slog.Error("Failed to create Google Gen AI client", "error", err)
		os.Exit(1)
	}

	var embedder embeddings.Client = googleClient
	if cfg.EmbeddingProvider == "openai" {
		embedder = openai.NewClient(cfg.OpenAIAPIKey, openai.WithDimensions(cfg.EmbeddingDimensions))
		slog.Info("Embedding provider switched", "provider", "openai", "model", "text-embedding-3-small")
	}

	// Repositories
	familiesRepo := repository.NewFamiliesRepository(db)
	sessionsRepo := repository.NewSessionsRepository(db)

	// Pipeline services
	classifier := classify.NewClassifier(googleClient, cfg.ClassifySampleChunks, cfg.ClassifySampleBytes)
	ingestService := ingest.NewService(embedder, index, classifier,
		ingest.WithMaxChunks(cfg.MaxIndexedChunks),
		ingest.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1)),
		ingest.WithMetrics(pipelineMetrics),
	)
	chatService, err := chat.NewService(embedder, index, googleClient,
		chat.WithTopK(cfg.ChatTopK),
		chat.WithMaxMessageChars(cfg.MaxMessageChars),
		chat.WithMetrics(pipelineMetrics),
	)
	if err != nil {
		slog.Error("Failed to create chat service", "error", err)
		os.Exit(1)
	}

	// Handlers
	uploadHandler := handlers.NewUploadHandler(ingestService)
	chatHandler := handlers.NewChatHandler(chatService)
	familiesHandler := handlers.NewFamiliesHandler(familiesRepo)
	statsHandler := handlers.NewStatsHandler(familiesRepo, index)
	healthHandler := handlers.NewHealthHandler(db)

	// Auth session cache
	sessionCache, err := middleware.NewSessionCache(cfg.SessionCacheSize)
	if err != nil {
		slog.Error("Failed to create session cache", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(middleware.Metrics(httpMetrics))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)

	// Public endpoints
	router.Get("/health", healthHandler.Check)
	router.Get("/health/ready", healthHandler.Ready)

	// Protected endpoints
	router.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(sessionsRepo, sessionCache))

		r.With(middleware.MaxBody(cfg.MaxUploadBytes, httpMetrics)).
			Post("/documents", uploadHandler.Upload)
		r.Post("/chat", chatHandler.Chat)
		r.Get("/families", familiesHandler.List)
		r.Post("/families", familiesHandler.Create)
		r.Get("/stats", statsHandler.Stats)
	})

	// Create HTTP server. WriteTimeout must cover a full chat stream.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "port", cfg.Port, "index", cfg.PineconeIndex)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// setupLogging configures slog with the specified log level and the trace
// context handler so request ids land on every line.
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := observability.NewTraceContextHandler(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(slog.New(handler))
}
