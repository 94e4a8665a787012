// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

// Package migration runs the catalogue's SQL schema migrations at startup
// via golang-migrate.
//
// # Architecture
//
// This package belongs to the Infrastructure layer. The API process refuses
// to serve traffic until every pending migration has been applied, so a
// deployed binary and its schema can never drift apart.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunUp applies all pending UP migrations.
//
// # Parameters
//   - dsn: A libpq-compatible DSN or postgres:// URL.
//   - migrationsPath: Filesystem path to the migrations directory.
//   - logger: Structured logger for migration events.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceErr, databaseErr := migrator.Close()
		if sourceErr != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceErr))
		}
		if databaseErr != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", databaseErr))
		}
	}()

	migrator.Log = &slogBridge{logger: logger}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: schema is dirty at version %d (manual intervention required)", version)
	}

	logger.Info("migration_started", slog.Int("current_version", int(version)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_schema_current")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	applied, _, _ := migrator.Version()
	logger.Info("migration_applied",
		slog.Int("from_version", int(version)),
		slog.Int("to_version", int(applied)),
	)

	return nil
}

// pgx5URL rewrites a postgres:// or postgresql:// URL onto the pgx5://
// scheme golang-migrate's pgx/v5 driver registers. Any other input is
// passed through untouched.
func pgx5URL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// slogBridge adapts golang-migrate's logger interface to slog.
type slogBridge struct {
	logger  *slog.Logger
	verbose bool
}

// Printf implements migrate.Logger.
func (b *slogBridge) Printf(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}

// Verbose implements migrate.Logger.
func (b *slogBridge) Verbose() bool {
	return b.verbose
}
