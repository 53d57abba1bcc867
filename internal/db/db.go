package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// New opens the SQLite database file at path and applies all pending migrations.
// SQLite allows a single writer, so the pool is capped at one connection and
// concurrent requests queue on it.
func New(path string, logger *slog.Logger) (*bun.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("pinging sqlite %s: %w", path, err)
	}

	if err := RunMigrations(sqldb, logger); err != nil {
		sqldb.Close()
		return nil, err
	}

	logger.Info("database connected successfully", "path", path)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func RunMigrations(sqldb *sql.DB, logger *slog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return fmt.Errorf("setting dialect for migrations: %w", err)
	}

	if err := goose.Up(sqldb, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	logger.Info("database migrations completed successfully")
	return nil
}

// Ping checks the store is reachable.
func Ping(ctx context.Context, db *bun.DB) error {
	return db.PingContext(ctx)
}

// Close closes the store handle, logging the outcome.
func Close(db *bun.DB, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		logger.Error("error closing database", "error", err)
		return fmt.Errorf("closing database: %w", err)
	}
	logger.Info("database connection closed")
	return nil
}
