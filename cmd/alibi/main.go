package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/alibi/internal/api"
	"github.com/MikeSquared-Agency/alibi/internal/config"
	"github.com/MikeSquared-Agency/alibi/internal/generator"
	"github.com/MikeSquared-Agency/alibi/internal/groq"
	"github.com/MikeSquared-Agency/alibi/internal/hermes"
	"github.com/MikeSquared-Agency/alibi/internal/store"
	"github.com/MikeSquared-Agency/alibi/internal/tracking"
)

const shutdownGrace = 5 * time.Second

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("alibi starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Analytics store (optional)
	var analyticsStore tracking.Store
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			if err := store.MigrateUp(cfg.DatabaseURL); err != nil {
				slog.Error("failed to run migrations", "error", err)
				os.Exit(1)
			}
			slog.Info("migrations applied")
		}
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		analyticsStore = db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, analytics will not be stored")
	}

	// NATS/Hermes (optional)
	var publisher tracking.Publisher
	var events eventFlusher
	if cfg.NatsURL != "" {
		hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		publisher = hermesClient
		events = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	// Completion provider. A missing key is reported per request.
	llm := groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.UpstreamTimeout)
	llm.SetAPIURL(cfg.GroqURL)
	if !llm.Configured() {
		slog.Warn("GROQ_API_KEY not set, generation requests will fail")
	} else {
		slog.Info("groq client ready", "model", llm.Model())
	}

	recorder := tracking.NewRecorder(analyticsStore, publisher, slog.Default())
	gw := generator.New(llm, recorder, slog.Default(), generator.Options{
		Timeout:          cfg.UpstreamTimeout,
		AnalyticsTimeout: cfg.AnalyticsTimeout,
	})

	// HTTP API
	srv := api.NewServer(cfg.Port, gw, recorder, slog.Default())
	if db, ok := analyticsStore.(api.Pinger); ok {
		srv.SetDatabase(db)
	}
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	slog.Info("alibi ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownGrace)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}

	waitCtx, stopWait := context.WithTimeout(context.Background(), shutdownGrace)
	defer stopWait()
	drainAnalytics(waitCtx, gw, events, slog.Default())
	cancel()
	slog.Info("alibi stopped")
}

type taskWaiter interface {
	Wait(ctx context.Context) error
}

type eventFlusher interface {
	Drain(ctx context.Context) error
}

// drainAnalytics waits for detached analytics tasks, then flushes the events
// they published. Both steps share ctx; events may be nil.
func drainAnalytics(ctx context.Context, tasks taskWaiter, events eventFlusher, logger *slog.Logger) {
	if err := tasks.Wait(ctx); err != nil {
		logger.Warn("dropping unfinished analytics tasks", "error", err)
	}
	if events == nil {
		return
	}
	if err := events.Drain(ctx); err != nil {
		logger.Warn("analytics events not flushed", "error", err)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
