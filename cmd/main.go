package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "go.uber.org/automaxprocs"

	"github.com/promptelo/promptelo/internal/adapters/embedding"
	"github.com/promptelo/promptelo/internal/adapters/http/api"
	"github.com/promptelo/promptelo/internal/adapters/http/swagger"
	"github.com/promptelo/promptelo/internal/adapters/repository"
	app "github.com/promptelo/promptelo/internal/app"
	"github.com/promptelo/promptelo/internal/config"
	"github.com/promptelo/promptelo/pkg/logger"
	"github.com/promptelo/promptelo/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout         = 10 * time.Second
	writeTimeout        = 10 * time.Second
	idleTimeout         = 60 * time.Second
	readHeaderTimeout   = 5 * time.Second
	shutdownTimeout     = 30 * time.Second
	corpusGaugeInterval = 10 * time.Second
	storeConnectTimeout = 15 * time.Second
)

func main() {
	// Disable default Go metrics collection; the custom registry carries
	// the service's own metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "opening store failed", logger.Error(err))
		return
	}

	embedder, err := embedding.NewClient(embedding.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.EmbeddingModel,
		Dim:    cfg.EmbeddingDim,
	})
	if err != nil {
		log.Error(ctx, "creating embedding client failed", logger.Error(err))
		return
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithEmbedder(embedder),
		app.WithNeighborLimit(cfg.NeighborLimit),
		app.WithSimilarityThreshold(cfg.SimilarityThreshold),
		app.WithNoveltyCutoff(cfg.NoveltyCutoffPercentile),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "starting service failed", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startCorpusGaugeUpdater(ctx, svc)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	apiServer := api.NewServer(svc,
		api.WithMaxPromptLen(cfg.MaxPromptLen),
		api.WithRateLimit(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindowS)*time.Second),
	)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// openStore selects Postgres/pgvector when a database URL is configured,
// the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Get().Info(ctx, "using in-memory store")
		return repository.NewMemStore(cfg.EmbeddingDim), nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()

	store, err := repository.NewPgStore(connectCtx, cfg.DatabaseURL, cfg.EmbeddingDim)
	if err != nil {
		return nil, err
	}
	logger.Get().Info(ctx, "using postgres store")
	return store, nil
}

// startCorpusGaugeUpdater refreshes the stored-records gauge periodically so
// the Postgres-backed deployments report corpus size too.
func startCorpusGaugeUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(corpusGaugeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := svc.Count(ctx); err == nil {
				metrics.UpdateStoreRecords(n)
			}
		}
	}
}
