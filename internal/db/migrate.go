package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange is returned when Up/Down has nothing to do.
var ErrNoChange = migrate.ErrNoChange

// Migrate applies the embedded migrations to a Postgres connection opened with the pgx driver.
// direction must be "up" or "down". Already being at the target version is not an error.
func Migrate(db *sql.DB, direction string) error {
	if direction != "up" && direction != "down" {
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}

	src, err := iofs.New(MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// ApplySQLite executes every up migration in order. The DDL is idempotent,
// so running it against an existing database is safe.
func ApplySQLite(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(MigrationFS, "migrations/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := fs.ReadFile(MigrationFS, name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", strings.TrimPrefix(name, "migrations/"), err)
		}
	}
	return nil
}

// Prepare brings the schema up to date for the given driver.
func Prepare(ctx context.Context, db *sql.DB, driver string) error {
	switch driver {
	case "pgx":
		return Migrate(db, "up")
	case "sqlite":
		return ApplySQLite(ctx, db)
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}
}

// SQLiteDSN asks modernc to store times in a layout it can scan back into time.Time.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_time_format=sqlite"
}
