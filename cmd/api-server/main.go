// cmd/api-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tradievoice/internal/api"
	commonaws "tradievoice/internal/common/aws"
	"tradievoice/internal/common/config"
	"tradievoice/internal/common/database"
	"tradievoice/internal/common/logger"
	"tradievoice/internal/common/observability"
	"tradievoice/internal/extraction"
	"tradievoice/internal/invoice"
	"tradievoice/internal/notification"
	"tradievoice/internal/profile"
	"tradievoice/internal/quote"
	"tradievoice/internal/transcription"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting api-server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Profile store ---
	store, cleanup, err := buildStore(ctx, cfg, zapLog, log)
	if err != nil {
		zapLog.Fatal("profile store initialization failed", zap.Error(err))
	}
	defer cleanup()
	zapLog.Info("Profile store ready", zap.String("backend", cfg.Store.Backend))

	// --- OpenAI clients ---
	transcriber := transcription.NewClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.WhisperModel,
		time.Duration(cfg.OpenAI.TranscribeTimeout)*time.Second,
		log,
		transcription.WithBaseURL(cfg.OpenAI.BaseURL),
	)

	extractor := extraction.NewClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.CompletionModel,
		time.Duration(cfg.OpenAI.ExtractTimeout)*time.Second,
		log,
		extraction.WithBaseURL(cfg.OpenAI.BaseURL),
	)

	quoteService := quote.NewService(transcriber, extractor, log)
	renderer := invoice.NewRenderer(log)

	// --- Optional upsell notifier ---
	var notifier api.UpsellNotifier
	if cfg.Notifications.Enabled {
		notifier = buildNotifier(ctx, cfg, zapLog, log)
	}

	server := api.NewServer(cfg.Server, quoteService, renderer, store, notifier, obs, log)
	httpServer := server.HTTPServer()

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}

// buildStore selects the profile backend. File is the default; redis and
// postgres connect with retry before serving.
func buildStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, log logger.Logger) (profile.Store, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case "redis":
		var rc *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return nil, noop, err
		}
		return profile.NewRedisStore(rc.Client, log), func() { rc.Close() }, nil

	case "postgres":
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, noop, err
		}

		store := profile.NewPostgresStore(pg.DB, log)
		if err := store.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, noop, err
		}
		return store, func() { pg.Close() }, nil

	default:
		return profile.NewFileStore(cfg.Store.FilePath, log), noop, nil
	}
}

// buildNotifier wires SES and SNS clients. Either client failing to
// initialize disables that channel rather than aborting startup.
func buildNotifier(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, log logger.Logger) *notification.Notifier {
	var sesClient notification.SESAPI
	var snsClient notification.SNSAPI

	if cfg.Notifications.AWS.SES.Enabled {
		client, err := commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SES client initialization failed, email alerts disabled", zap.Error(err))
		} else {
			sesClient = client
		}
	}

	if cfg.Notifications.AWS.SNS.Enabled {
		client, err := commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SNS client initialization failed, SMS alerts disabled", zap.Error(err))
		} else {
			snsClient = client
		}
	}

	zapLog.Info("Upsell notifier enabled")
	return notification.NewNotifier(cfg.Notifications, sesClient, snsClient, log)
}
