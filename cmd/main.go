package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/mission-control/internal/adapters/http/api"
	"github.com/okian/mission-control/internal/adapters/http/site"
	"github.com/okian/mission-control/internal/adapters/http/swagger"
	"github.com/okian/mission-control/internal/adapters/knowledge"
	"github.com/okian/mission-control/internal/adapters/payments"
	"github.com/okian/mission-control/internal/adapters/postgrest"
	"github.com/okian/mission-control/internal/adapters/repository"
	"github.com/okian/mission-control/internal/adapters/workspace"
	service "github.com/okian/mission-control/internal/app"
	"github.com/okian/mission-control/internal/config"
	"github.com/okian/mission-control/pkg/logger"
	"github.com/okian/mission-control/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> dotenv -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		loggerInstance.Error(ctx, "failed to load config", logger.Error(err))
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store := postgrest.New(cfg.StoreURL, cfg.StoreKey, postgrest.WithLogger(loggerInstance.Named("store")))
	handler, err := buildHandler(ctx, cfg, store, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build handlers", logger.Error(err))
		return
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Bool("auth", !cfg.AuthDisabled),
			logger.Bool("payments", cfg.StripeKey != ""),
			logger.Bool("ai", cfg.AIEnabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildHandler wires the optional integrations selected by cfg into the
// service and returns the full route tree behind Basic-Auth.
func buildHandler(ctx context.Context, cfg *config.Config, store repository.Store, l logger.Logger) (http.Handler, error) {
	opts := []service.Option{
		service.WithLogger(l.Named("service")),
		service.WithListLimits(cfg.DefaultListLimit, cfg.MaxListLimit),
		service.WithRevenueMonths(cfg.RevenueMonths),
		service.WithKnowledge(knowledge.New(store, knowledgeOptions(cfg, l)...)),
	}
	if cfg.StripeKey != "" {
		provider, err := payments.NewStripe(cfg.StripeKey, payments.WithStripeLogger(l.Named("payments")))
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithRevenue(payments.New(provider)))
	}
	if cfg.WorkspaceDir != "" && len(cfg.WorkspaceFiles) > 0 {
		opts = append(opts, service.WithWorkspace(workspace.New(cfg.WorkspaceDir, cfg.WorkspaceFiles)))
	}
	svc := service.New(store, opts...)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, api.WithLogger(l.Named("api"))).Register(ctx, mux)

	pages, err := site.New(svc, l.Named("site"))
	if err != nil {
		return nil, err
	}
	pages.Register(ctx, mux)

	if cfg.AuthDisabled {
		l.Warn(ctx, "basic auth disabled")
		return mux, nil
	}
	return api.BasicAuth(mux, cfg.AuthUser, cfg.AuthPassword, "/healthz"), nil
}

// knowledgeOptions adds only the providers that have credentials so a
// missing key never becomes a non-nil interface holding a nil pointer.
func knowledgeOptions(cfg *config.Config, l logger.Logger) []knowledge.Option {
	opts := []knowledge.Option{
		knowledge.WithMatchCount(cfg.KnowledgeMatchCount),
		knowledge.WithLogger(l.Named("knowledge")),
	}
	if e := knowledge.NewOpenAIEmbedder(cfg.OpenAIKey, cfg.EmbeddingModel, ""); e != nil {
		opts = append(opts, knowledge.WithEmbedder(e))
	}
	if a := knowledge.NewAnthropicAnswerer(cfg.AnthropicKey, cfg.LLMModel, ""); a != nil {
		opts = append(opts, knowledge.WithAnswerer(a))
	}
	return opts
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
