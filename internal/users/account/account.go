// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

/*
Package account handles reader profile management, preferences, and security settings.

It provides functionalities for readers to view and update their private identity data,
configure their browsing experience, and manage their active device sessions.

# Architecture

  - Entities: Preferences, SessionInfo (DTO).
  - Domain: This package depends on the auth package for the User entity.
  - Security: Provides session transparency and revocation mechanisms.
*/
package account

import (
	"context"
	"time"

	"github.com/libbyhq/libby/internal/users/auth"
)

// # Domain Entities

// Preferences represents the customizable browsing settings for a reader.
type Preferences struct {
	UserID       string    `json:"user_id"`
	Theme        string    `json:"theme"`          // 'light', 'dark', 'sepia'
	BooksPerPage int       `json:"books_per_page"` // Catalogue page size: 10-100
	DefaultSort  string    `json:"default_sort"`   // 'latest', 'title', 'published'
	EmailDigest  bool      `json:"email_digest"`   // Weekly new-arrivals email
	HideSpoilers bool      `json:"hide_spoilers"`  // Collapse review bodies by default
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionInfo provides a safety-mapped view of an active reader session.
// It omits sensitive token hashes for transport.
type SessionInfo struct {
	ID         string    `json:"id"`
	DeviceName string    `json:"device_name"` // Raw User-Agent of the login
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// # Repository Contracts

// AccountRepository defines the persistence contract for reader accounts.
// Satisfied by [auth.PostgresUserRepository].
type AccountRepository interface {
	/*
		FindByID retrieves a reader record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update modifies the mutable profile fields of an existing reader.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		SoftDelete flags an account as logically deleted.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	SoftDelete(context context.Context, id string) error
}

// PreferencesRepository defines the persistence contract for browsing settings.
type PreferencesRepository interface {
	/*
		FindByUserID retrieves browsing preferences for a specific reader.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Preferences: Hydrated settings
		  - error: NotFound if not present
	*/
	FindByUserID(context context.Context, userID string) (*Preferences, error)

	/*
		Upsert saves or updates preferences for a reader using an idempotent strategy.

		Parameters:
		  - context: context.Context
		  - prefs: *Preferences

		Returns:
		  - error: Storage failure errors
	*/
	Upsert(context context.Context, prefs *Preferences) error
}
