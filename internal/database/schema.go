package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// CreateTables brings the catalog schema up to date. It is idempotent: the
// statements use IF NOT EXISTS and golang-migrate records the applied
// version. Concurrent callers serialize on the advisory lock the postgres
// driver takes, so several startup paths may invoke it at once.
//
// The migration runs on one connection borrowed from db and returned to the
// pool afterwards; db itself stays open.
func CreateTables(db *sql.DB) error {
	ctx := context.Background()

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("could not acquire migration connection: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		_ = src.Close()
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		_ = src.Close()
		return fmt.Errorf("could not create migration instance: %w", err)
	}
	// Closes the source and the borrowed connection only.
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}
