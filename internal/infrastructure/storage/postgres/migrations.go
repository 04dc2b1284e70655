package postgres

import "embed"

// MigrationsFS holds the embedded SQL migrations applied by RunMigrations.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the subdirectory inside MigrationsFS.
const MigrationsDir = "migrations"
