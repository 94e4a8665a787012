// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/libbyhq/libby/internal/platform/database/schema"
	"github.com/libbyhq/libby/internal/platform/dberr"
)

// # PostgreSQL Preferences Repository

// PostgresPreferencesRepository implements [PreferencesRepository] backed by
// users.preferences. Account and session persistence live in the auth
// package; only the preferences table is owned here.
type PostgresPreferencesRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPreferencesRepository constructs a PostgreSQL backed preferences store.
func NewPostgresPreferencesRepository(pool *pgxpool.Pool) *PostgresPreferencesRepository {
	return &PostgresPreferencesRepository{pool: pool}
}

/*
FindByUserID retrieves the stored browsing preferences for a reader.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Preferences: Hydrated settings
  - error: NotFound when the reader never saved any
*/
func (repository *PostgresPreferencesRepository) FindByUserID(context context.Context, userID string) (*Preferences, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.RefPreferences.UserID, schema.RefPreferences.Theme, schema.RefPreferences.BooksPerPage,
		schema.RefPreferences.DefaultSort, schema.RefPreferences.EmailDigest, schema.RefPreferences.HideSpoilers,
		schema.RefPreferences.UpdatedAt,
		schema.RefPreferences.Table,
		schema.RefPreferences.UserID,
	)

	var prefs Preferences
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&prefs.UserID, &prefs.Theme, &prefs.BooksPerPage,
		&prefs.DefaultSort, &prefs.EmailDigest, &prefs.HideSpoilers,
		&prefs.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find preferences")
	}

	return &prefs, nil
}

/*
Upsert saves or replaces the reader's browsing preferences.

Description: Uses ON CONFLICT on the primary key so the first save and
every later save go through the same statement.

Parameters:
  - context: context.Context
  - prefs: *Preferences

Returns:
  - error: Persistence failures
*/
func (repository *PostgresPreferencesRepository) Upsert(context context.Context, prefs *Preferences) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s
	`,
		schema.RefPreferences.Table,
		schema.RefPreferences.UserID, schema.RefPreferences.Theme, schema.RefPreferences.BooksPerPage,
		schema.RefPreferences.DefaultSort, schema.RefPreferences.EmailDigest, schema.RefPreferences.HideSpoilers,
		schema.RefPreferences.UpdatedAt,
		schema.RefPreferences.UserID,
		schema.RefPreferences.Theme, schema.RefPreferences.Theme,
		schema.RefPreferences.BooksPerPage, schema.RefPreferences.BooksPerPage,
		schema.RefPreferences.DefaultSort, schema.RefPreferences.DefaultSort,
		schema.RefPreferences.EmailDigest, schema.RefPreferences.EmailDigest,
		schema.RefPreferences.HideSpoilers, schema.RefPreferences.HideSpoilers,
		schema.RefPreferences.UpdatedAt, schema.RefPreferences.UpdatedAt,
	)

	_, err := repository.pool.Exec(context, query,
		prefs.UserID, prefs.Theme, prefs.BooksPerPage,
		prefs.DefaultSort, prefs.EmailDigest, prefs.HideSpoilers,
		prefs.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "save preferences")
	}

	return nil
}
