// Package main is the entry point for the PMS API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"

	"pms/internal/domain/approvals"
	"pms/internal/domain/auth"
	"pms/internal/domain/designs"
	domhandlers "pms/internal/domain/handlers"
	"pms/internal/domain/leaves"
	"pms/internal/domain/meetings"
	"pms/internal/domain/projects"
	"pms/internal/domain/registry"
	"pms/internal/domain/sales"
	"pms/internal/domain/tasks"
	"pms/internal/domain/users"
	v1 "pms/internal/infrastructure/http/v1"
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

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting pms server")

	// --- Database ---
	dbURL := mustEnv("DATABASE_URL")

	if getEnv("MIGRATE_ON_START", "true") == "true" {
		if err := postgres.RunMigrations(dbURL, postgres.MigrationsFS, postgres.MigrationsDir); err != nil {
			log.Fatalw("migrations failed", "error", err)
		}
		log.Info("migrations applied")
	}

	pool, err := connectWithRetry(ctx, dbURL)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	outboxRepo := postgres.NewOutboxRepo(txManager)
	cascadeRepo := postgres.NewCascadeRepo(txManager)
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	userRepo := entity_repo.NewUserRepo(txManager)
	projectRepo := entity_repo.NewProjectRepo(txManager)
	taskRepo := entity_repo.NewTaskRepo(txManager)
	taskAssigneeRepo := entity_repo.NewTaskAssigneeRepo(txManager)
	meetingRepo := entity_repo.NewMeetingRepo(txManager)
	meetingAssigneeRepo := entity_repo.NewMeetingAssigneeRepo(txManager)
	salesRepo := entity_repo.NewSalesRepo(txManager)
	salesHistoryRepo := entity_repo.NewSalesHistoryRepo(txManager)
	designRepo := entity_repo.NewDesignRepo(txManager)
	designVersionRepo := entity_repo.NewDesignVersionRepo(txManager)
	designHistoryRepo := entity_repo.NewDesignHistoryRepo(txManager)
	leaveGrantRepo := entity_repo.NewLeaveGrantRepo(txManager)
	leaveRequestRepo := entity_repo.NewLeaveRequestRepo(txManager)

	// --- Event processing ---
	// The commit-time dispatcher submits into an in-process pool; the guard
	// in ClaimForProcessing keeps this safe alongside the worker binary.
	eventWorker := outbox.NewWorker(outboxRepo, txManager)
	queue := outbox.NewPool(
		getEnvInt("OUTBOX_WORKERS", 4),
		getEnvInt("OUTBOX_QUEUE_BUFFER", 256),
		eventWorker,
	)
	publisher := outbox.NewPublisher(outboxRepo, txManager, queue)

	// --- Domain services ---
	userService := users.NewService(userRepo, txManager, publisher)
	projectService := projects.NewService(projectRepo, txManager, publisher)
	taskService := tasks.NewService(taskRepo, taskAssigneeRepo, txManager, publisher)
	meetingService := meetings.NewService(meetingRepo, meetingAssigneeRepo, txManager, publisher)
	salesService := sales.NewService(salesRepo, salesHistoryRepo, txManager, publisher)
	designService := designs.NewService(designRepo, designVersionRepo, designHistoryRepo, txManager, publisher)

	policy, err := approvals.NewCELPolicy(approvals.DefaultRules())
	if err != nil {
		log.Fatalw("failed to compile approval policy", "error", err)
	}
	leaveService := leaves.NewService(leaveGrantRepo, leaveRequestRepo, policy, txManager, publisher)

	// --- Event handlers ---
	eventWorker.RegisterHandler(outbox.EventSoftDeletePropagate,
		outbox.NewSoftDeleteHandler(registry.Build(), cascadeRepo, auditService))
	eventWorker.RegisterHandler(outbox.EventProjectCreated,
		domhandlers.NewProjectCreated(projectRepo, salesRepo, designRepo))
	eventWorker.RegisterHandler(outbox.EventAnnualLeaveGrant,
		domhandlers.NewLeaveGrant(userRepo, leaveService))

	workerCtx, stopWorkers := context.WithCancel(ctx)
	queue.Start(workerCtx)

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(userService, jwtService)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool.Unwrap(),
		Logger:         log,
		JWTValidator:   jwtService,
		AuthService:    authService,
		ProjectService: projectService,
		TaskService:    taskService,
		MeetingService: meetingService,
		SalesService:   salesService,
		DesignService:  designService,
		LeaveService:   leaveService,
		OutboxRepo:     outboxRepo,
		OutboxQueue:    queue,
	})

	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	// Drain the in-process event pool after the HTTP surface is closed so
	// commit hooks from in-flight requests still get processed.
	stopWorkers()
	queue.Wait()

	log.Info("server stopped")
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
