package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/VetleSkaar/EiT-AI-Project/internal/config"
	"github.com/VetleSkaar/EiT-AI-Project/internal/corpus"
	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
	"github.com/VetleSkaar/EiT-AI-Project/internal/embedding/hash"
	"github.com/VetleSkaar/EiT-AI-Project/internal/index/dense"
	"github.com/VetleSkaar/EiT-AI-Project/internal/index/sparse"
	logpkg "github.com/VetleSkaar/EiT-AI-Project/internal/logger"
	"github.com/VetleSkaar/EiT-AI-Project/internal/metrics"
	"github.com/VetleSkaar/EiT-AI-Project/internal/store"
	redisStore "github.com/VetleSkaar/EiT-AI-Project/internal/store/redis"
	sqliteStore "github.com/VetleSkaar/EiT-AI-Project/internal/store/sqlite"
	chiTransport "github.com/VetleSkaar/EiT-AI-Project/internal/transport/chi"
	openaiTransport "github.com/VetleSkaar/EiT-AI-Project/internal/transport/openai"
	analysisuc "github.com/VetleSkaar/EiT-AI-Project/internal/usecase/analysis"
	draftuc "github.com/VetleSkaar/EiT-AI-Project/internal/usecase/draft"
	healthuc "github.com/VetleSkaar/EiT-AI-Project/internal/usecase/health"
	retrievaluc "github.com/VetleSkaar/EiT-AI-Project/internal/usecase/retrieval"
	"github.com/VetleSkaar/EiT-AI-Project/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting draftd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("retrieval_strategy", cfg.Retrieval.Strategy),
		zap.String("analysis_engine", cfg.Analysis.Engine),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterPipelineMetrics()

	// Create draft/analysis store based on driver
	var st store.Store
	switch cfg.Storage.Driver {
	case "sqlite":
		st, err = sqliteStore.NewStore(cfg.Storage.Path)
	case "redis":
		st, err = redisStore.NewStore(redisStore.Config{
			Addrs:     cfg.Storage.Addrs,
			Password:  cfg.Storage.Password,
			KeyPrefix: cfg.Storage.KeyPrefix,
		})
	default:
		logger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create store", zap.Error(err))
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.WaitForReady(ctx, 10*time.Second); err != nil {
		logger.Fatal("Store not ready", zap.Error(err))
	}
	logger.Info("Connected to storage")

	// Embedding provider — explicit selection, no connectivity probing in
	// constructors. The hash provider is the deterministic fallback strategy.
	embedder := buildEmbedder(cfg, logger)

	// Notice corpus: external cleaned file, or the built-in seed set.
	notices, err := loadCorpus(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}

	// Dense index: reuse the snapshot when present, otherwise build and
	// persist one. A corrupt or mismatched snapshot is fatal; starting
	// empty would silently lose the corpus.
	var denseIdx *dense.Index
	if cfg.Retrieval.Strategy == "dense" {
		denseIdx, err = openDenseIndex(ctx, cfg, embedder, notices, logger)
		if err != nil {
			logger.Fatal("Failed to open dense index", zap.Error(err))
		}
		// Keep the sparse corpus aligned with what the index actually holds.
		notices = denseIdx.Notices()
	}

	// Sparse index: the primary backend for the sparse strategy, the logged
	// fallback for the dense one.
	var sparseIdx *sparse.Index
	if cfg.Retrieval.Strategy == "sparse" || cfg.Retrieval.SparseFallback {
		sparseIdx = sparse.New()
		if err := sparseIdx.Fit(notices); err != nil {
			logger.Fatal("Failed to fit sparse index", zap.Error(err))
		}
	}

	retriever, err := retrievaluc.New(
		retrievaluc.Strategy(cfg.Retrieval.Strategy),
		embedder,
		denseIndexOrNil(denseIdx),
		sparseIndexOrNil(sparseIdx),
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to create retriever", zap.Error(err))
	}

	// Structured analysis generator
	var backend analysisuc.Backend
	if cfg.Analysis.Engine == "generative" {
		backend = openaiTransport.NewChatClient(&openaiTransport.ChatConfig{
			APIKey:  cfg.Analysis.APIKey,
			BaseURL: cfg.Analysis.BaseURL,
			Model:   cfg.Analysis.Model,
			Logger:  logger,
		})
	}
	analyzer, err := analysisuc.New(
		domain.AnalysisEngine(cfg.Analysis.Engine), backend, logger,
		analysisuc.WithTimeout(time.Duration(cfg.Analysis.TimeoutSec)*time.Second),
		analysisuc.WithMaxExcerptChars(cfg.Analysis.MaxExcerptChars),
	)
	if err != nil {
		logger.Fatal("Failed to create analysis service", zap.Error(err))
	}

	draftSvc := draftuc.New(st, retriever, analyzer, logger).WithTopK(cfg.Retrieval.TopK)
	healthSvc := healthuc.New(st, embeddingChecker(embedder), indexSizer(denseIdx, sparseIdx))

	server := chiTransport.NewServer(draftSvc, retriever, healthSvc)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
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

// buildEmbedder selects the embedding provider from configuration.
func buildEmbedder(cfg config.Config, logger *zap.Logger) domain.Embedder {
	switch cfg.Embedding.Provider {
	case "openai":
		logger.Info("Using OpenAI-compatible embedding provider",
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions))
		return openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   "openai",
			Logger:     logger,
		})
	default:
		logger.Info("Using deterministic hash embedding provider",
			zap.Int("dimensions", cfg.Embedding.Dimensions))
		return hash.New(cfg.Embedding.Dimensions)
	}
}

// loadCorpus reads the configured cleaned-notice file, defaulting to the
// built-in seed corpus.
func loadCorpus(cfg config.Config, logger *zap.Logger) ([]domain.Notice, error) {
	if cfg.Corpus.Path == "" {
		logger.Info("No corpus configured, using built-in seed notices")
		return corpus.Seed(), nil
	}
	notices, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded corpus", zap.String("path", cfg.Corpus.Path), zap.Int("notices", len(notices)))
	return notices, nil
}

// openDenseIndex loads the persisted snapshot, or builds the index from the
// corpus and persists it. A snapshot built under a different metric or
// dimensionality is refused: scores are only comparable within one metric,
// and a dimension drift would fail every query at search time.
func openDenseIndex(
	ctx context.Context, cfg config.Config, embedder domain.Embedder,
	notices []domain.Notice, logger *zap.Logger,
) (*dense.Index, error) {
	idx, err := dense.Load(cfg.Retrieval.SnapshotPath)
	if err == nil {
		if got, want := idx.Metric(), dense.Metric(cfg.Retrieval.Metric); got != want {
			return nil, fmt.Errorf("snapshot %s was built with metric %q, config wants %q; delete the snapshot to rebuild",
				cfg.Retrieval.SnapshotPath, got, want)
		}
		if got, want := idx.Dimensions(), cfg.Embedding.Dimensions; got != want {
			return nil, fmt.Errorf("snapshot %s holds %d-dimensional vectors, config wants %d; delete the snapshot to rebuild",
				cfg.Retrieval.SnapshotPath, got, want)
		}
		logger.Info("Loaded dense index snapshot",
			zap.String("path", cfg.Retrieval.SnapshotPath),
			zap.Int("notices", idx.Len()))
		return idx, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	logger.Info("No snapshot found, building dense index", zap.Int("notices", len(notices)))

	idx = dense.New(dense.Metric(cfg.Retrieval.Metric), cfg.Embedding.Dimensions)
	texts := make([]string, len(notices))
	for i, n := range notices {
		texts[i] = n.Text()
	}

	var vectors [][]float32
	if be, ok := embedder.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed corpus: %w", err)
		}
		vectors = res.Embeddings
	} else {
		res, err := domain.BatchFallback(ctx, embedder, texts)
		if err != nil {
			return nil, fmt.Errorf("embed corpus: %w", err)
		}
		vectors = res.Embeddings
	}

	for i, n := range notices {
		if err := idx.Add(n, vectors[i]); err != nil {
			return nil, fmt.Errorf("index notice %s: %w", n.ID, err)
		}
	}

	if err := idx.Persist(cfg.Retrieval.SnapshotPath); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}
	return idx, nil
}

// denseIndexOrNil avoids handing a typed nil pointer to an interface value.
func denseIndexOrNil(idx *dense.Index) retrievaluc.DenseIndex {
	if idx == nil {
		return nil
	}
	return idx
}

func sparseIndexOrNil(idx *sparse.Index) retrievaluc.SparseIndex {
	if idx == nil {
		return nil
	}
	return idx
}

// embeddingChecker exposes the embedder's health check when it has one.
func embeddingChecker(embedder domain.Embedder) healthuc.EmbeddingChecker {
	if hc, ok := embedder.(domain.HealthChecker); ok {
		return hc
	}
	return nil
}

// indexSizer reports the size of whichever index is active.
func indexSizer(denseIdx *dense.Index, sparseIdx *sparse.Index) healthuc.IndexSizer {
	if denseIdx != nil {
		return denseIdx
	}
	if sparseIdx != nil {
		return sparseIdx
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain
// text stacktrace.
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

// wideEventMiddleware emits a canonical log line per request and propagates
// X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

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
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
