// Command server starts the course recommendation HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	ai "github.com/fairyhunter13/course-recommender/internal/adapter/ai"
	"github.com/fairyhunter13/course-recommender/internal/adapter/ai/real"
	"github.com/fairyhunter13/course-recommender/internal/adapter/courseinfo"
	httpserver "github.com/fairyhunter13/course-recommender/internal/adapter/httpserver"
	"github.com/fairyhunter13/course-recommender/internal/adapter/observability"
	qdrantcli "github.com/fairyhunter13/course-recommender/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/course-recommender/internal/app"
	"github.com/fairyhunter13/course-recommender/internal/config"
	"github.com/fairyhunter13/course-recommender/internal/service/metacache"
	"github.com/fairyhunter13/course-recommender/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, capability, and cache instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// AI client with an embedding cache in front of it
	aicl := ai.NewEmbedCache(real.New(cfg), cfg.EmbedCacheSize)

	// Vector index (collection handle resolved lazily, once)
	qcli := qdrantcli.New(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err := app.WaitForVectorStore(ctx, qcli, 60*time.Second); err != nil {
		slog.Error("vector store unavailable", slog.Any("error", err))
		os.Exit(1)
	}
	index := qdrantcli.NewIndex(qcli, cfg.CourseCollection)

	// Metadata cache over the course-info API
	infoClient := courseinfo.New(cfg.CourseInfoBaseURL, cfg.CourseInfoTimeout)
	var store metacache.Store
	if cfg.MetaCacheRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.MetaCacheRedisAddr, Password: cfg.MetaCacheRedisPassword})
		store = metacache.NewRedisStore(rdb, cfg.MetaCacheTTL)
		slog.Info("metadata cache using redis store", slog.String("addr", cfg.MetaCacheRedisAddr))
	} else {
		store = metacache.NewMemoryStore(cfg.MetaCacheMaxEntries, cfg.MetaCacheTTL)
	}
	infoCache := metacache.New(infoClient, store)

	// Pipeline services
	retriever := usecase.NewRetriever(aicl, index, infoCache)
	reranker := usecase.NewReranker(aicl, cfg.GenerationModel)
	recommender := usecase.NewRecommendService(retriever, reranker)

	qdrantCheck, courseInfoCheck := app.BuildReadinessChecks(qcli, infoClient)
	srv := &httpserver.Server{
		Cfg:             cfg,
		Recommender:     recommender,
		QdrantCheck:     qdrantCheck,
		CourseInfoCheck: courseInfoCheck,
	}
	handler := app.BuildRouter(cfg, srv)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		slog.Info("server listening", slog.Int("port", cfg.Port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", slog.Any("error", err))
	}
}
