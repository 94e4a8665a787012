// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/dberr"
	"github.com/libbyhq/libby/internal/platform/sec"
	"github.com/libbyhq/libby/internal/users/auth"
)

// # Service Layer

// Service orchestrates business logic for reader accounts and preferences.
//
// It ensures that profile updates, preference persistence, and session
// security cleanup follow established business constraints.
type Service struct {
	accountRepository     AccountRepository
	preferencesRepository PreferencesRepository
	sessionRepository     auth.SessionRepository
	logger                *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	accountRepo AccountRepository,
	preferencesRepo PreferencesRepository,
	sessionRepo auth.SessionRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository:     accountRepo,
		preferencesRepository: preferencesRepo,
		sessionRepository:     sessionRepo,
		logger:                logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a reader.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated reader profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput defines the mutable subset of reader profile fields.
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

/*
UpdateProfile applies a partial set of changes to a reader's account metadata.

Description: Fetches the existing state, overlays provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated reader profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	// Apply delta updates
	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

/*
DeleteAccount performs an idempotent soft-deletion of a reader account.

Description: Flags the account as deleted and immediately terminates all active
security sessions to force a global sign-out. Reviews written by the reader
stay on record.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution failures
*/
func (service *Service) DeleteAccount(context context.Context, userID string) error {
	if err := service.accountRepository.SoftDelete(context, userID); err != nil {
		return err
	}

	// Force global revocation of sessions for the deleted account
	_ = service.sessionRepository.RevokeAll(context, userID)

	service.logger.Warn("user_account_deleted", slog.String("user_id", userID))

	return nil
}

// # Preferences Management

/*
GetPreferences retrieves the browsing settings for a specific reader.

Description: Attempts a database lookup. If no explicit preferences exist,
it falls back to system-wide default settings.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Preferences: Current or default settings
  - error: Storage failures
*/
func (service *Service) GetPreferences(context context.Context, userID string) (*Preferences, error) {
	prefs, err := service.preferencesRepository.FindByUserID(context, userID)
	if err != nil {
		// Resilience: provide defaults if none are stored
		if errors.Is(err, dberr.ErrNotFound) {
			return &Preferences{
				UserID:       userID,
				Theme:        "light",
				BooksPerPage: 20,
				DefaultSort:  "latest",
				UpdatedAt:    time.Now(),
			}, nil
		}
		return nil, fmt.Errorf("account_service_get_preferences_failed: %w", err)
	}

	return prefs, nil
}

/*
UpdatePreferences persists new browsing settings for the reader.

Parameters:
  - context: context.Context
  - prefs: *Preferences

Returns:
  - error: Storage failures
*/
func (service *Service) UpdatePreferences(context context.Context, prefs *Preferences) error {
	prefs.UpdatedAt = time.Now()
	if err := service.preferencesRepository.Upsert(context, prefs); err != nil {
		return fmt.Errorf("account_service_save_preferences_failed: %w", err)
	}

	service.logger.Info("user_preferences_updated", slog.String("user_id", prefs.UserID))

	return nil
}

// # Session Security

/*
ListSessions provides a list of all active device sessions for the reader.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []SessionInfo: List of active devices, newest first
  - error: Retrieval failures
*/
func (service *Service) ListSessions(context context.Context, userID string) ([]SessionInfo, error) {
	sessions, err := service.sessionRepository.ListByUser(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_sessions_failed: %w", err)
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, SessionInfo{
			ID:         session.ID,
			DeviceName: session.UserAgent,
			IPAddress:  session.IPAddress,
			CreatedAt:  session.CreatedAt,
			ExpiresAt:  session.ExpiresAt,
		})
	}

	return infos, nil
}

/*
RevokeSession terminates a specific reader session by its ID.

Description: Ownership is verified before revocation so a reader can never
terminate another account's session.

Parameters:
  - context: context.Context
  - userID: string
  - sessionID: string

Returns:
  - error: NotFound or revocation failures
*/
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	sessions, err := service.sessionRepository.ListByUser(context, userID)
	if err != nil {
		return fmt.Errorf("account_service_revoke_lookup_failed: %w", err)
	}

	owned := false
	for _, session := range sessions {
		if session.ID == sessionID {
			owned = true
			break
		}
	}
	if !owned {
		return apperr.NotFound("Session")
	}

	if err := service.sessionRepository.Revoke(context, sessionID); err != nil {
		return fmt.Errorf("account_service_revoke_session_failed: %w", err)
	}

	service.logger.Info("user_session_revoked",
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	return nil
}

/*
RevokeOtherSessions terminates all sessions except for the current active one.

Description: The current session is identified by the caller's refresh token.
An empty or unknown token revokes every session.

Parameters:
  - context: context.Context
  - userID: string
  - currentRefreshToken: string

Returns:
  - error: Revocation failures
*/
func (service *Service) RevokeOtherSessions(context context.Context, userID, currentRefreshToken string) error {
	currentSessionID := ""
	if currentRefreshToken != "" {
		if session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(currentRefreshToken)); err == nil {
			currentSessionID = session.ID
		}
	}

	if err := service.sessionRepository.RevokeOthers(context, userID, currentSessionID); err != nil {
		return fmt.Errorf("account_service_revoke_others_failed: %w", err)
	}

	service.logger.Info("user_other_sessions_revoked", slog.String("user_id", userID))

	return nil
}
