package postgres

import (
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
)

// RunMigrations applies pending migrations from an embedded filesystem.
// Opens a temporary database/sql connection (separate from the pgxpool)
// because goose requires database/sql; it is closed once migration completes.
func RunMigrations(databaseURL string, fsys fs.FS, subdir string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database for migration: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(fsys)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, subdir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
