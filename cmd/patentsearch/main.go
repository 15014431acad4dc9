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

	"github.com/thinkstruct/patentsearch/internal/config"
	dbRedis "github.com/thinkstruct/patentsearch/internal/db/redis"
	"github.com/thinkstruct/patentsearch/internal/domain"
	logpkg "github.com/thinkstruct/patentsearch/internal/logger"
	"github.com/thinkstruct/patentsearch/internal/metrics"
	"github.com/thinkstruct/patentsearch/internal/repository/corpus"
	"github.com/thinkstruct/patentsearch/internal/repository/embcache"
	"github.com/thinkstruct/patentsearch/internal/repository/embindex"
	historyrepo "github.com/thinkstruct/patentsearch/internal/repository/history"
	chiTransport "github.com/thinkstruct/patentsearch/internal/transport/chi"
	openaiEmb "github.com/thinkstruct/patentsearch/internal/transport/openai"
	engineuc "github.com/thinkstruct/patentsearch/internal/usecase/engine"
	healthuc "github.com/thinkstruct/patentsearch/internal/usecase/health"
	historyuc "github.com/thinkstruct/patentsearch/internal/usecase/history"
	statsuc "github.com/thinkstruct/patentsearch/internal/usecase/stats"
	"github.com/thinkstruct/patentsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting patentsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	// Register engine metrics explicitly (no init())
	metrics.RegisterEngineMetrics()

	// Load the cleaned corpus: fatal when missing, the engine is useless without it.
	dataPath := cfg.Corpus.DataPath
	if dataPath == "" {
		dataPath, err = corpus.LatestDataFile(cfg.Corpus.DataDir)
		if err != nil {
			logger.Fatal("Failed to locate corpus data file", zap.Error(err))
		}
	}
	corpusStore, err := corpus.Load(dataPath, logger)
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}

	ctx := context.Background()

	// Optional query-embedding cache
	var cacheStore *dbRedis.Store
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		if err := cacheStore.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Embedder chain: OpenAI-compatible provider -> cache decorator. Corpus
	// build and live queries share one chain, so identical text encodes
	// identically.
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:        cfg.Embedding.APIKey,
		BaseURL:       cfg.Embedding.BaseURL,
		Model:         cfg.Embedding.Model,
		Dimensions:    cfg.Embedding.Dimensions,
		MaxInputChars: cfg.Embedding.MaxInputChars,
		Logger:        logger,
	})
	var embedder domain.Embedder = base
	if cacheStore != nil {
		embedder = embcache.New(
			base, cacheStore, cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.TTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	// Embedding matrix, loaded from disk or built once at startup.
	embeddingsPath := cfg.Corpus.EmbeddingsPath
	if embeddingsPath == "" {
		embeddingsPath = dataPath + ".embeddings.bin"
	}
	index := embindex.New(
		corpusStore, embedder, embeddingsPath,
		cfg.Embedding.Dimensions, cfg.Embedding.BuildWorkers, logger,
	)
	if err := index.LoadOrBuild(ctx); err != nil {
		logger.Fatal("Failed to build embedding matrix", zap.Error(err))
	}

	// Optional search history
	var historyStore *historyrepo.Store
	if cfg.History.SQLitePath != "" {
		historyStore, err = historyrepo.NewStore(cfg.History.SQLitePath)
		if err != nil {
			logger.Fatal("Failed to open history store", zap.Error(err))
		}
		defer historyStore.Close()
		logger.Info("Search history enabled", zap.String("path", cfg.History.SQLitePath))
	}

	// Use case services
	engineSvc := engineuc.New(corpusStore, index, embedder).
		WithLimits(cfg.Search.MaxClaims, cfg.Search.DescriptionBudget)
	statsSvc := statsuc.New(corpusStore)
	historySvc := newHistoryService(historyStore, logger)

	healthSvc := healthuc.New(corpusStore, index).
		WithComponent("embedding_provider", base)
	if historyStore != nil {
		healthSvc = healthSvc.WithComponent("history", historyStore)
	}
	if cacheStore != nil {
		healthSvc = healthSvc.WithComponent("cache", pingChecker{cacheStore})
	}

	// Chi server
	server := chiTransport.NewServer(engineSvc, statsSvc, healthSvc, historySvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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

// newHistoryService passes a nil Recorder (not a typed nil pointer!) when
// history is disabled. Go gotcha: (*historyrepo.Store)(nil) wrapped in
// Recorder != nil.
func newHistoryService(store *historyrepo.Store, logger *zap.Logger) *historyuc.Service {
	var recorder historyuc.Recorder
	if store != nil {
		recorder = store
	}
	return historyuc.New(recorder, logger)
}

// pingChecker adapts a Ping method to the health ComponentChecker interface.
type pingChecker struct {
	store *dbRedis.Store
}

func (p pingChecker) HealthCheck(ctx context.Context) error {
	if err := p.store.Ping(ctx); err != nil {
		return fmt.Errorf("cache health check: %w", err)
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
