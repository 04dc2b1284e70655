// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"pms/internal/core/apperror"
	"pms/internal/domain/company"
	"pms/internal/domain/users"
	"pms/internal/infrastructure/storage/postgres"
	"pms/internal/infrastructure/storage/postgres/entity_repo"
	"pms/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	if err := postgres.RunMigrations(dbURL, postgres.MigrationsFS, postgres.MigrationsDir); err != nil {
		log.Fatalw("migrations failed", "error", err)
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	companyService := company.NewService(entity_repo.NewCompanyRepo(txManager), txManager, nil)
	userService := users.NewService(entity_repo.NewUserRepo(txManager), txManager, nil)

	adminEmail := getEnv("ADMIN_EMAIL", "admin@pms.local")
	if _, err := userService.GetByEmail(ctx, adminEmail); err == nil {
		log.Infow("admin user already exists", "email", adminEmail)
		return
	} else if !apperror.IsNotFound(err) {
		log.Fatalw("failed to check admin user", "error", err)
	}

	co := company.NewCompany(getEnv("SEED_COMPANY_CODE", "HQ"), getEnv("SEED_COMPANY_NAME", "Head Office"))
	if err := companyService.Create(ctx, co); err != nil {
		log.Fatalw("failed to seed company", "error", err)
	}

	adminPassword := getEnv("ADMIN_PASSWORD", "changeme123")
	admin, err := users.NewUser(adminEmail, adminPassword, "Administrator")
	if err != nil {
		log.Fatalw("invalid admin credentials", "error", err)
	}
	admin.CompanyID = &co.ID
	admin.Roles = []string{users.RoleAdmin}
	hired := time.Now().UTC()
	admin.HiredAt = &hired

	if err := userService.Create(ctx, admin); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}
	log.Infow("admin user created", "email", adminEmail)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
