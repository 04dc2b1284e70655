// Package main is the entry point for the PMS background worker: it sweeps
// the outbox ledger for stuck and retryable entries and runs the periodic
// leave grant scheduler.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"

	"pms/internal/domain/approvals"
	domhandlers "pms/internal/domain/handlers"
	"pms/internal/domain/leaves"
	"pms/internal/domain/registry"
	"pms/internal/infrastructure/storage/postgres"
	"pms/internal/infrastructure/storage/postgres/entity_repo"
	"pms/internal/outbox"
	"pms/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	rootCtx := logger.WithLogger(context.Background(), log)
	ctx, cancel := context.WithCancel(rootCtx)
	defer cancel()

	log.Info("starting pms worker")

	pool, err := connectWithRetry(ctx, mustEnv("DATABASE_URL"))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	outboxRepo := postgres.NewOutboxRepo(txManager)
	cascadeRepo := postgres.NewCascadeRepo(txManager)
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	userRepo := entity_repo.NewUserRepo(txManager)
	projectRepo := entity_repo.NewProjectRepo(txManager)
	salesRepo := entity_repo.NewSalesRepo(txManager)
	designRepo := entity_repo.NewDesignRepo(txManager)
	leaveGrantRepo := entity_repo.NewLeaveGrantRepo(txManager)
	leaveRequestRepo := entity_repo.NewLeaveRequestRepo(txManager)

	eventWorker := outbox.NewWorker(outboxRepo, txManager)
	queue := outbox.NewPool(
		getEnvInt("OUTBOX_WORKERS", 4),
		getEnvInt("OUTBOX_QUEUE_BUFFER", 256),
		eventWorker,
	)
	publisher := outbox.NewPublisher(outboxRepo, txManager, queue)

	policy, err := approvals.NewCELPolicy(approvals.DefaultRules())
	if err != nil {
		log.Fatalw("failed to compile approval policy", "error", err)
	}
	leaveService := leaves.NewService(leaveGrantRepo, leaveRequestRepo, policy, txManager, publisher)

	eventWorker.RegisterHandler(outbox.EventSoftDeletePropagate,
		outbox.NewSoftDeleteHandler(registry.Build(), cascadeRepo, auditService))
	eventWorker.RegisterHandler(outbox.EventProjectCreated,
		domhandlers.NewProjectCreated(projectRepo, salesRepo, designRepo))
	eventWorker.RegisterHandler(outbox.EventAnnualLeaveGrant,
		domhandlers.NewLeaveGrant(userRepo, leaveService))

	queue.Start(ctx)

	sweeperCfg := outbox.DefaultSweeperConfig()
	if interval := getEnvDuration("SWEEP_INTERVAL", 0); interval > 0 {
		sweeperCfg.Interval = interval
	}
	sweeper := outbox.NewSweeper(outboxRepo, queue, sweeperCfg)

	scheduler := leaves.NewScheduler(userRepo, publisher, txManager)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		scheduler.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	wg.Wait()
	queue.Wait()
	log.Info("worker stopped")
}

func connectWithRetry(ctx context.Context, dbURL string) (*postgres.Pool, error) {
	var pool *postgres.Pool
	backoff := retry.WithMaxRetries(5, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
		if err != nil {
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	return pool, err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
