// cmd/intake-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"finance-intake/internal/common/config"
	"finance-intake/internal/common/database"
	"finance-intake/internal/common/logger"
	"finance-intake/internal/common/notify"
	"finance-intake/internal/common/observability"
	"finance-intake/internal/intake/documents"
	"finance-intake/internal/intake/flow"
	"finance-intake/internal/intake/prompt"
	"finance-intake/internal/intake/qa"
	"finance-intake/internal/intake/session"
	"finance-intake/internal/server"
	"finance-intake/internal/store"
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
			delay *= 2 // Exponential backoff
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

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting intake server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Completion Notifier ---
	var notifier flow.CompletionNotifier
	if cfg.Notifications.Enabled {
		n, err := notify.New(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("notifier init failed", zap.Error(err))
		}
		notifier = n
		zapLog.Info("Notification clients initialized")
	}

	// --- Init Q&A Responder ---
	cache := qa.NewAnswerCache(redis, time.Duration(cfg.Responder.CacheTTL)*time.Second, log)
	external := qa.NewHTTPResponder(cfg.Responder, log)
	responder := qa.NewResponder(external, cache, log)

	// --- Init Stores ---
	records := store.NewRecordStore(pg.DB, log)
	transcripts := store.NewTranscriptStore(esClient, cfg.Database.Elasticsearch.Index, log)

	// --- Init Flow Orchestrator ---
	sessions := session.NewManager()
	orchestrator := flow.NewOrchestrator(
		flow.Config{
			DefaultIncome: cfg.Intake.DefaultIncome,
			Documents: documents.Config{
				Delay:   time.Duration(cfg.Intake.VerificationDelayMS) * time.Millisecond,
				Timeout: time.Duration(cfg.Intake.VerificationTimeout) * time.Second,
				Seed:    cfg.Intake.SeedRNG,
			},
			Prompt: prompt.Config{
				GuarantorThreshold: cfg.Intake.GuarantorThreshold,
			},
		},
		sessions,
		responder,
		records,
		transcripts,
		notifier,
		obs,
		log,
	)

	// --- Start HTTP Server ---
	api := server.New(orchestrator, sessions, log)
	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown error", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
