package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/nyashahama/wellness-notifier/internal/api"
	"github.com/nyashahama/wellness-notifier/internal/config"
	"github.com/nyashahama/wellness-notifier/internal/db"
	"github.com/nyashahama/wellness-notifier/internal/email"
	"github.com/nyashahama/wellness-notifier/internal/mailinglist"
	"github.com/nyashahama/wellness-notifier/internal/notify"
	"github.com/nyashahama/wellness-notifier/internal/store"
	"github.com/nyashahama/wellness-notifier/internal/trigger"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	// ── Delivery audit log (optional) ─────────────────────────────────────────
	var recorder store.Recorder = store.Discard{}
	if cfg.DatabaseURL != "" {
		pool, queries, err := openDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()
		recorder = store.New(pool, queries)
		logger.Info("database connected, delivery audit log enabled")
	} else {
		logger.Info("DATABASE_URL not set, delivery audit log disabled")
	}

	// ── Outbound clients ──────────────────────────────────────────────────────
	mailer := email.NewResendClient(
		cfg.ResendAPIKey,
		cfg.EmailFromAddr,
		cfg.EmailFromName,
		cfg.HTTPTimeout,
	)
	audience := mailinglist.NewMailchimpClient(
		cfg.MailchimpAPIKey,
		cfg.MailchimpListID,
		cfg.MailchimpServerPrefix,
		cfg.HTTPTimeout,
	)

	// ── Handlers ──────────────────────────────────────────────────────────────
	runner := trigger.NewRunner(logger,
		mailinglist.NewSyncer(audience, recorder, logger),
		notify.NewNotifier(mailer, notify.RenderOptions{BookingURL: cfg.BookingURL}, recorder, logger),
	)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		runner, // *Runner satisfies trigger.Dispatcher
		api.Config{SigningSecret: cfg.EventSigningSecret},
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// In-flight events finish their sends before the process exits.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// openDB opens the connection pool and prepares the sqlc statements, so a
// schema mismatch stops the process at startup rather than at the first event.
func openDB(dsn string) (*sql.DB, *db.Queries, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}

	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	queries, err := db.Prepare(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("prepare statements: %w", err)
	}

	return pool, queries, nil
}
