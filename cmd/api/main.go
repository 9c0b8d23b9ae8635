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

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/shelfwise/shelfwise/internal/api/handlers"
	"github.com/shelfwise/shelfwise/internal/api/middleware"
	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/embeddings"
	"github.com/shelfwise/shelfwise/internal/observability"
	"github.com/shelfwise/shelfwise/internal/repository"
	"github.com/shelfwise/shelfwise/internal/service"
	"github.com/shelfwise/shelfwise/pkg/database"
	"github.com/shelfwise/shelfwise/pkg/googlebooks"
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

	// Initialize metrics (disabled unless an exporter is configured)
	meterProvider, err := observability.NewMeterProvider(cfg)
	if err != nil {
		slog.Error("Failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	metrics, err := newMetrics(meterProvider)
	if err != nil {
		slog.Error("Failed to create metrics", "error", err)
		os.Exit(1)
	}

	// Initialize tracing (disabled unless an exporter is configured)
	tracerProvider, err := observability.NewTracerProvider(cfg)
	if err != nil {
		slog.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	if tracerProvider != nil {
		otel.SetTracerProvider(tracerProvider)
	}

	if meterProvider != nil {
		otel.SetMeterProvider(meterProvider)
	}

	// Initialize database connection
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize embedding client if OpenAI API key is configured
	var embeddingClient embeddings.Client
	if cfg.OpenAIAPIKey != "" {
		embeddingClient = embeddings.NewOpenAIClient(cfg.OpenAIAPIKey, embeddings.WithDimensions(cfg.EmbeddingDimensions))
		slog.Info("Embedding generation enabled",
			"model", "text-embedding-3-small",
			"dimensions", cfg.EmbeddingDimensions,
		)
	} else {
		slog.Info("Embedding generation disabled (OPENAI_API_KEY not set); serving stored embeddings only")
	}

	// Initialize repositories
	bookEmbeddingsRepo := repository.NewBookEmbeddingsRepository(db, cfg.EmbeddingDimensions)
	userBooksRepo := repository.NewUserBooksRepository(db)

	var embMetrics observability.EmbeddingMetrics
	var recMetrics observability.RecommendationMetrics
	var httpMetrics observability.HTTPMetrics
	if metrics != nil {
		embMetrics = metrics.Embeddings
		recMetrics = metrics.Recommendations
		httpMetrics = metrics.HTTP
	}

	// Embedding write path and the River queue require an embedding client
	var embeddingService *service.EmbeddingService
	var embeddingProvider *service.EmbeddingProvider
	var riverClient *river.Client[pgx.Tx]
	if embeddingClient != nil {
		embeddingService = service.NewEmbeddingService(bookEmbeddingsRepo, embeddingClient, slog.Default())

		riverClient, err = initRiver(ctx, db, cfg, embeddingService, embMetrics)
		if err != nil {
			slog.Error("Failed to initialize River job queue", "error", err)
			os.Exit(1)
		}

		embeddingProvider = service.NewEmbeddingProvider(
			riverClient,
			service.EmbeddingsQueueName,
			cfg.EmbeddingMaxAttempts,
			embMetrics,
		)

		slog.Info("River job queue enabled",
			"queue", service.EmbeddingsQueueName,
			"max_workers", cfg.EmbeddingMaxConcurrent,
			"max_attempts", cfg.EmbeddingMaxAttempts,
		)
	}

	// Catalog search boundary, cached per query
	catalogSearcher := service.NewCachingCatalogSearcher(googlebooks.NewClient(cfg.GoogleBooksAPIKey))

	recommendationService := service.NewRecommendationService(service.RecommendationServiceParams{
		UserBooks:      userBooksRepo,
		Store:          bookEmbeddingsRepo,
		Embedder:       batchEmbedder(embeddingService),
		Searcher:       catalogSearcher,
		CandidateLimit: cfg.CandidateLimit,
		Metrics:        recMetrics,
	})

	healthHandler := handlers.NewHealthHandler()
	recommendationsHandler := handlers.NewRecommendationsHandler(recommendationService)

	// Set up public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)

	// Set up protected endpoints (authentication required)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /v1/users/{id}/recommendations", recommendationsHandler.Get)

	// Embedding endpoints are registered only when embedding generation is enabled
	if embeddingService != nil {
		embeddingsHandler := handlers.NewEmbeddingsHandler(embeddingProvider, embeddingService)
		protectedMux.HandleFunc("POST /v1/books/{id}/embedding", embeddingsHandler.Enqueue)
		protectedMux.HandleFunc("POST /v1/books/embeddings", embeddingsHandler.EmbedBatch)
	}

	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)

	// Combine both handlers
	mainMux := http.NewServeMux()
	mainMux.Handle("/v1/", protectedHandler)
	mainMux.Handle("/", publicMux) // Catch-all for public routes (/health, etc.)

	// Chain: RequestID -> otelhttp -> Logging -> Metrics -> mux. Logging and
	// Metrics run inside otelhttp so their context carries the span; RequestID
	// is outermost so every record downstream carries the request id.
	var handler http.Handler = mainMux
	handler = middleware.Metrics(httpMetrics)(handler)
	handler = middleware.Logging(handler)

	otelOpts := []otelhttp.Option{
		// Skip tracing and HTTP metrics for health checks to reduce noise.
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	}
	if meterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(meterProvider))
	}

	if tracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(tracerProvider))
	}

	handler = otelhttp.NewHandler(handler, "shelfwise-api", otelOpts...)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "port", cfg.Port)
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

	// 1. Stop accepting new HTTP requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// 2. Stop River (waits for in-flight jobs to complete)
	if riverClient != nil {
		slog.Info("Stopping River job queue...")
		if err := riverClient.Stop(shutdownCtx); err != nil {
			slog.Error("River forced to shutdown", "error", err)
		}
		slog.Info("River job queue stopped")
	}

	// 3. Flush traces and metrics
	if err := observability.ShutdownTracerProvider(shutdownCtx, tracerProvider); err != nil {
		slog.Error("Failed to shut down tracing", "error", err)
	}

	if err := observability.ShutdownMeterProvider(shutdownCtx, meterProvider); err != nil {
		slog.Error("Failed to shut down metrics", "error", err)
	}

	slog.Info("Server exited")
}

// setupLogging configures slog with the specified log level and trace context
// (trace_id, span_id, request_id) propagation from context.
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

// batchEmbedder converts a possibly-nil embedding service into the optional
// mid-request embedder dependency. A typed nil inside a non-nil interface would
// defeat the service's nil check.
func batchEmbedder(s *service.EmbeddingService) service.BatchEmbedder {
	if s == nil {
		return nil
	}
	return s
}
