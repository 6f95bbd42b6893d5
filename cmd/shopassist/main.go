package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lumenkart/shopassist/internal/config"
	"github.com/lumenkart/shopassist/internal/db"
	dbRedis "github.com/lumenkart/shopassist/internal/db/redis"
	"github.com/lumenkart/shopassist/internal/domain"
	"github.com/lumenkart/shopassist/internal/engine"
	"github.com/lumenkart/shopassist/internal/index"
	logpkg "github.com/lumenkart/shopassist/internal/logger"
	"github.com/lumenkart/shopassist/internal/metrics"
	catalogrepo "github.com/lumenkart/shopassist/internal/repository/catalog"
	"github.com/lumenkart/shopassist/internal/repository/embcache"
	chiTransport "github.com/lumenkart/shopassist/internal/transport/chi"
	openaiTransport "github.com/lumenkart/shopassist/internal/transport/openai"
	healthuc "github.com/lumenkart/shopassist/internal/usecase/health"
	pipelineuc "github.com/lumenkart/shopassist/internal/usecase/pipeline"
	"github.com/lumenkart/shopassist/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shopassist API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_driver", cfg.Catalog.Driver),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	ctx := context.Background()

	// Catalog store per driver. The redis driver also carries the embedding
	// cache and the database health check.
	var (
		catalog pipelineuc.Catalog
		store   db.Store
	)
	switch cfg.Catalog.Driver {
	case "redis":
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer redisStore.Close()

		if err := redisStore.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

		store = redisStore
		redisCatalog := catalogrepo.NewRedisStore(redisStore, cfg.Catalog.KeyPrefix)
		if err := redisCatalog.EnsureCatalog(ctx, cfg.Catalog.DefaultCatalog); err != nil {
			logger.Fatal("Failed to register default catalog", zap.Error(err))
		}
		catalog = redisCatalog
	case "file":
		catalog = catalogrepo.NewFileStore(cfg.Catalog.Path, logger)
	default:
		logger.Fatal("Unknown catalog driver", zap.String("driver", cfg.Catalog.Driver))
	}

	// Embedder, optionally cached in Redis
	var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	if cfg.Embedding.CacheInDB && store != nil {
		embedder = embcache.New(embedder, store, cfg.Catalog.KeyPrefix, metrics.EmbeddingCacheTotal, logger)
	}

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:  cfg.Generator.APIKey,
		BaseURL: cfg.Generator.BaseURL,
		Model:   cfg.Generator.Model,
		Logger:  logger,
	})

	// Search engine
	metric, err := index.ParseMetric(cfg.Index.Metric)
	if err != nil {
		logger.Fatal("Invalid index metric", zap.String("metric", cfg.Index.Metric), zap.Error(err))
	}
	idx, err := index.New(cfg.Index.Dimension, metric)
	if err != nil {
		logger.Fatal("Failed to create index", zap.Error(err))
	}
	eng := engine.New(idx)

	// Retrieval pipeline
	var opts []pipelineuc.Option
	if cfg.Generator.ExpandQueries {
		opts = append(opts, pipelineuc.WithQueryExpansion())
	}
	pipeline := pipelineuc.New(eng, embedder, generator, catalog, opts...)

	initCtx := logpkg.ContextWithLogger(ctx, logger)
	if err := pipeline.Initialize(initCtx); err != nil {
		logger.Fatal("Failed to index catalog", zap.Error(err))
	}
	logger.Info("Catalog ready", zap.Int("indexed_items", pipeline.Count()))

	// Health service: database check only applies to the redis driver
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, newEmbeddingHealthChecker(embedder), pipeline)

	// HTTP server
	server := chiTransport.NewServer(pipeline, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
