package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rillshop/internal/assistant"
	"rillshop/internal/auth"
	"rillshop/internal/chathistory"
	"rillshop/internal/config"
	"rillshop/internal/http_server/router"
	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/lib/verification"
	"rillshop/internal/llm"
	"rillshop/internal/observability/metrics"
	"rillshop/internal/rabbitmq"
	"rillshop/internal/storage/postgres"
	"rillshop/internal/storage/redis"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting rillshop", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	var completer llm.Completer
	if cfg.OpenAI.Enabled() {
		completer = llm.NewOpenAIClient(log, cfg.OpenAI)
	} else {
		log.Warn("OPENAI_API_KEY is not set, assistants use canned answers")
	}

	var (
		authService *auth.Auth
		recorder    assistant.HistoryRecorder
		publisher   verification.Publisher
	)

	if cfg.Postgres.Enabled() {
		storage, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			log.Error("failed to connect postgres", sl.Err(err))
			os.Exit(1)
		}
		defer storage.Close()

		if cfg.Postgres.Migrate {
			if err := storage.Migrate(ctx); err != nil {
				log.Error("failed to apply migrations", sl.Err(err))
				os.Exit(1)
			}
		}

		var sessions auth.SessionStore
		if cfg.Redis.Enabled() {
			sessionStore, err := redis.New(ctx, cfg.Redis)
			if err != nil {
				log.Error("failed to connect redis", sl.Err(err))
				os.Exit(1)
			}
			defer sessionStore.Close()

			sessions = sessionStore
		} else {
			log.Warn("REDIS_ADDR is not set, login tokens cannot be checked")
		}

		authService = auth.New(log, storage, storage, sessions, cfg.Redis.SessionTTL)

		historyRecorder := chathistory.NewRecorder(log, storage, cfg.ChatHistory.WriteTimeout)
		// deferred after storage.Close, so it runs first
		defer historyRecorder.Wait()

		recorder = historyRecorder
	} else {
		log.Warn("DATABASE_URL is not set, auth is disabled")
	}

	if cfg.RabbitMQ.Enabled() {
		msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			log.Error("failed to connect rabbitmq", sl.Err(err))
			os.Exit(1)
		}
		defer msgBroker.Close()

		publisher = msgBroker
	}

	r := router.New(log, router.Deps{
		SiteManager: assistant.NewSiteManager(log, completer),
		Support:     assistant.NewSupport(log, completer, recorder),
		Auth:        authService,
		Publisher:   publisher,
		PublicURL:   cfg.PublicURL,
		AITimeout:   cfg.OpenAI.Timeout,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      r,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", sl.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
