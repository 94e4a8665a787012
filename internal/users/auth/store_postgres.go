// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/libbyhq/libby/internal/platform/database/schema"
	"github.com/libbyhq/libby/internal/platform/dberr"
)

// # PostgreSQL User Repository

// PostgresUserRepository implements [UserRepository] backed by users.account.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository constructs a PostgreSQL backed user store.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// findBy is the shared lookup used by the exported finders. Soft-deleted
// accounts are invisible to every code path.
func (repository *PostgresUserRepository) findBy(context context.Context, column string, value any) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.RefAccount.ID, schema.RefAccount.Username, schema.RefAccount.Email,
		schema.RefAccount.PasswordHash, schema.RefAccount.DisplayName, schema.RefAccount.AvatarURL,
		schema.RefAccount.Bio, schema.RefAccount.Role, schema.RefAccount.IsVerified,
		schema.RefAccount.CreatedAt, schema.RefAccount.UpdatedAt,
		schema.RefAccount.Table,
		column, schema.RefAccount.DeletedAt,
	)

	var user User
	err := repository.pool.QueryRow(context, query, value).Scan(
		&user.ID, &user.Username, &user.Email,
		&user.PasswordHash, &user.DisplayName, &user.AvatarURL,
		&user.Bio, &user.Role, &user.IsVerified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find user")
	}

	return &user, nil
}

/*
FindByID returns the account with the given ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated entity
  - error: NotFound when absent or soft-deleted
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findBy(context, schema.RefAccount.ID, id)
}

// FindByEmail returns the account registered under the given email.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findBy(context, schema.RefAccount.Email, email)
}

// FindByUsername returns the account registered under the given username.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findBy(context, schema.RefAccount.Username, username)
}

/*
Create persists a brand-new reader account.

Description: Timestamps are assigned by the database and hydrated back
onto the entity.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Conflict on duplicate username/email
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s
	`,
		schema.RefAccount.Table,
		schema.RefAccount.ID, schema.RefAccount.Username, schema.RefAccount.Email,
		schema.RefAccount.PasswordHash, schema.RefAccount.DisplayName, schema.RefAccount.Role,
		schema.RefAccount.IsVerified,
		schema.RefAccount.CreatedAt, schema.RefAccount.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		user.ID, user.Username, user.Email,
		user.PasswordHash, user.DisplayName, user.Role,
		user.IsVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create user")
	}

	return nil
}

/*
Update persists the mutable profile fields of the account.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: NotFound when the account no longer exists
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.RefAccount.Table,
		schema.RefAccount.DisplayName, schema.RefAccount.AvatarURL, schema.RefAccount.Bio,
		schema.RefAccount.UpdatedAt,
		schema.RefAccount.ID, schema.RefAccount.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, user.ID, user.DisplayName, user.AvatarURL, user.Bio)
	if err != nil {
		return dberr.Wrap(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// UpdatePassword replaces only the stored password hash.
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.RefAccount.Table, schema.RefAccount.PasswordHash, schema.RefAccount.UpdatedAt,
		schema.RefAccount.ID, schema.RefAccount.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, userID, newHash)
	if err != nil {
		return dberr.Wrap(err, "update password")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// MarkVerified flips the account's email verification flag.
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = TRUE, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.RefAccount.Table, schema.RefAccount.IsVerified, schema.RefAccount.UpdatedAt,
		schema.RefAccount.ID, schema.RefAccount.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return dberr.Wrap(err, "verify user")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
SoftDelete marks the account as deleted without removing the row.

Description: History (reviews) stays intact while the identity becomes
invisible to every finder.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: NotFound when already deleted
*/
func (repository *PostgresUserRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = NOW()
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.RefAccount.Table, schema.RefAccount.DeletedAt,
		schema.RefAccount.ID, schema.RefAccount.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete user")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// # PostgreSQL Session Repository

// PostgresSessionRepository implements [SessionRepository] backed by users.session.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository constructs a PostgreSQL backed session store.
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create persists a new refresh-token session row.
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`,
		schema.RefSession.Table,
		schema.RefSession.ID, schema.RefSession.UserID, schema.RefSession.TokenHash,
		schema.RefSession.UserAgent, schema.RefSession.IPAddress, schema.RefSession.ExpiresAt,
		schema.RefSession.IsRevoked,
		schema.RefSession.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		session.ID, session.UserID, session.TokenHash,
		session.UserAgent, session.IPAddress, session.ExpiresAt,
		session.IsRevoked,
	).Scan(&session.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "create session")
	}

	return nil
}

/*
FindByTokenHash returns the live session matching the hashed refresh token.

Description: Revoked or expired sessions never match, so a stolen token
that was rotated away is useless.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated entity
  - error: NotFound on miss
*/
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE AND %s > NOW()
	`,
		schema.RefSession.ID, schema.RefSession.UserID, schema.RefSession.TokenHash,
		schema.RefSession.UserAgent, schema.RefSession.IPAddress, schema.RefSession.ExpiresAt,
		schema.RefSession.IsRevoked, schema.RefSession.CreatedAt,
		schema.RefSession.Table,
		schema.RefSession.TokenHash, schema.RefSession.IsRevoked, schema.RefSession.ExpiresAt,
	)

	var session Session
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash,
		&session.UserAgent, &session.IPAddress, &session.ExpiresAt,
		&session.IsRevoked, &session.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find session")
	}

	return &session, nil
}

// ListByUser returns the user's live sessions, newest first.
func (repository *PostgresSessionRepository) ListByUser(context context.Context, userID string) ([]*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE AND %s > NOW()
		ORDER BY %s DESC
	`,
		schema.RefSession.ID, schema.RefSession.UserID, schema.RefSession.TokenHash,
		schema.RefSession.UserAgent, schema.RefSession.IPAddress, schema.RefSession.ExpiresAt,
		schema.RefSession.IsRevoked, schema.RefSession.CreatedAt,
		schema.RefSession.Table,
		schema.RefSession.UserID, schema.RefSession.IsRevoked, schema.RefSession.ExpiresAt,
		schema.RefSession.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list sessions")
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var session Session
		err := rows.Scan(
			&session.ID, &session.UserID, &session.TokenHash,
			&session.UserAgent, &session.IPAddress, &session.ExpiresAt,
			&session.IsRevoked, &session.CreatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan session")
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list sessions")
	}

	return sessions, nil
}

// Revoke invalidates a single session by ID.
func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = TRUE WHERE %s = $1
	`,
		schema.RefSession.Table, schema.RefSession.IsRevoked, schema.RefSession.ID,
	)

	tag, err := repository.pool.Exec(context, query, sessionID)
	if err != nil {
		return dberr.Wrap(err, "revoke session")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// RevokeAll invalidates every live session belonging to the user.
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = FALSE
	`,
		schema.RefSession.Table, schema.RefSession.IsRevoked,
		schema.RefSession.UserID, schema.RefSession.IsRevoked,
	)

	if _, err := repository.pool.Exec(context, query, userID); err != nil {
		return dberr.Wrap(err, "revoke sessions")
	}

	return nil
}

// RevokeOthers invalidates the user's sessions except the current one.
func (repository *PostgresSessionRepository) RevokeOthers(context context.Context, userID, currentSessionID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = TRUE
		WHERE %s = $1 AND %s <> $2 AND %s = FALSE
	`,
		schema.RefSession.Table, schema.RefSession.IsRevoked,
		schema.RefSession.UserID, schema.RefSession.ID, schema.RefSession.IsRevoked,
	)

	if _, err := repository.pool.Exec(context, query, userID, currentSessionID); err != nil {
		return dberr.Wrap(err, "revoke sessions")
	}

	return nil
}

// DeleteExpired physically removes sessions past their expiry. Meant to be
// called from a periodic maintenance job.
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE %s <= NOW()
	`,
		schema.RefSession.Table, schema.RefSession.ExpiresAt,
	)

	if _, err := repository.pool.Exec(context, query); err != nil {
		return dberr.Wrap(err, "delete expired sessions")
	}

	return nil
}
