// Command server starts the AI interview orchestrator HTTP server.
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

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/ai/real"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/ai/stub"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/cache"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/exportfile"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/scenariofile"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/app"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/config"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, oracle, and session instrumentation.
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
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	sessionRepo := postgres.NewSessionRepo(pool)
	turnRepo := postgres.NewTurnRepo(pool)
	reportRepo := postgres.NewReportRepo(pool)

	scenarios, err := scenariofile.New(cfg.ScenarioDir)
	if err != nil {
		slog.Error("scenario load failed", slog.String("dir", cfg.ScenarioDir), slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("scenarios loaded", slog.Int("count", len(scenarios.List())))

	// Session cache. Redis is optional; without it reads always hit Postgres.
	var sessionCache domain.SessionCache = cache.Noop{}
	var redisCheck func(context.Context) error
	if cfg.CacheEnabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		sessionCache = cache.New(rdb, cfg.SessionCacheTTL)
		redisCheck = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		slog.Info("session cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	// Oracle client. Without an API key the stub keeps the whole flow
	// runnable locally with deterministic answers.
	var oracle domain.OracleClient
	if cfg.OpenRouterAPIKey != "" {
		oracle = real.New(cfg)
		slog.Info("oracle client initialized", slog.String("model", cfg.OpenRouterModel))
	} else {
		oracle = stub.New()
		slog.Warn("OPENROUTER_API_KEY not set, using stub oracle")
	}

	counter := tokencount.NewCounter()
	countTokens := func(text string) int { return counter.CountTokens(text, cfg.SummaryModel) }

	engine := usecase.NewTurnEngine(oracle, turnRepo)
	summarizer := usecase.NewSummarizer(oracle, countTokens, cfg.SummaryChunkTokens, cfg.SummaryMaxRounds)
	compiler := usecase.NewReportCompiler(oracle)
	exporter := exportfile.New(cfg.ExportDir)

	orch := usecase.NewOrchestrator(
		sessionRepo, turnRepo, reportRepo, scenarios,
		sessionCache, exporter,
		engine, summarizer, compiler,
		cfg.SessionConcurrency,
	)

	// Sweep sessions abandoned mid-interview into error status so they do
	// not count as active forever.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runStaleSweeper(sweepCtx, orch, cfg.SessionSweepEvery, cfg.SessionStaleAfter)

	dbCheck := func(ctx context.Context) error { return pool.Ping(ctx) }
	srv := httpserver.NewServer(cfg, orch, scenarios, dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

func runStaleSweeper(ctx context.Context, orch *usecase.Orchestrator, every, staleAfter time.Duration) {
	if every <= 0 || staleAfter <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := orch.SweepStale(ctx, time.Now().Add(-staleAfter))
			if err != nil {
				slog.Error("stale session sweep failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				slog.Info("stale sessions marked", slog.Int64("count", n))
			}
		}
	}
}
