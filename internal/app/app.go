package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/makersrow/suggest/internal/adapter/postgres"
	"github.com/makersrow/suggest/internal/adapter/postgres/catalog"
	"github.com/makersrow/suggest/internal/adapter/postgres/phrase"
	"github.com/makersrow/suggest/internal/config"
	"github.com/makersrow/suggest/internal/service/suggest"
	"github.com/makersrow/suggest/internal/transport/middleware"
	"github.com/makersrow/suggest/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, initializes
// the logger, connects to the database, wires the suggestion service, and
// serves HTTP until the context is canceled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.Migrate {
		if err := Migrate(ctx, cfg.Database); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	phraseRepo := phrase.New(pool)
	catalogRepo := catalog.New(pool)

	snapshot := suggest.NewSnapshotProvider(logger, catalogRepo, cfg.Suggest.SnapshotMaxAge)

	svc := suggest.NewService(logger, phraseRepo, snapshot, suggest.Options{
		CacheTTL:          cfg.Suggest.CacheTTL,
		CacheSize:         cfg.Suggest.CacheSize,
		FeedbackQueueSize: cfg.Suggest.FeedbackQueueSize,
		Locale:            cfg.Suggest.Locale,
		Currency:          cfg.Suggest.Currency,
	})
	defer svc.Close()

	rateLimiter := middleware.NewRateLimiter(time.Minute)
	defer rateLimiter.Stop()

	handler := newRouter(cfg, logger, svc, pool, rateLimiter)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

func newRouter(
	cfg *config.Config,
	logger *slog.Logger,
	svc *suggest.Service,
	pool *pgxpool.Pool,
	rateLimiter *middleware.RateLimiter,
) http.Handler {
	suggestHandler := rest.NewSuggestHandler(svc, logger)
	healthHandler := rest.NewHealthHandler(pool, BuildVersion())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/suggestions", suggestHandler.Suggestions)
	mux.HandleFunc("POST /api/v1/suggestions/selection", suggestHandler.Selection)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /health/live", healthHandler.Live)
	mux.HandleFunc("GET /health/ready", healthHandler.Ready)

	return middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Logger(logger),
		rateLimiter.Limit(cfg.Server.RateLimitPerMin),
	)(mux)
}
