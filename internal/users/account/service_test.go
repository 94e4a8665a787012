package account_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/dberr"
	"github.com/libbyhq/libby/internal/users/account"
	"github.com/libbyhq/libby/internal/users/auth"
)

type fakeAccountRepository struct {
	users map[string]*auth.User
}

func (f *fakeAccountRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return user, nil
}

func (f *fakeAccountRepository) Update(_ context.Context, user *auth.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return dberr.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeAccountRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakePreferencesRepository struct {
	prefs map[string]*account.Preferences
}

func (f *fakePreferencesRepository) FindByUserID(_ context.Context, userID string) (*account.Preferences, error) {
	prefs, ok := f.prefs[userID]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return prefs, nil
}

func (f *fakePreferencesRepository) Upsert(_ context.Context, prefs *account.Preferences) error {
	f.prefs[prefs.UserID] = prefs
	return nil
}

type fakeSessionRepository struct {
	sessions map[string]*auth.Session
}

func (f *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	for _, session := range f.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked {
			return session, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeSessionRepository) ListByUser(_ context.Context, userID string) ([]*auth.Session, error) {
	var out []*auth.Session
	for _, session := range f.sessions {
		if session.UserID == userID && !session.IsRevoked {
			out = append(out, session)
		}
	}
	return out, nil
}

func (f *fakeSessionRepository) Revoke(_ context.Context, sessionID string) error {
	session, ok := f.sessions[sessionID]
	if !ok {
		return dberr.ErrNotFound
	}
	session.IsRevoked = true
	return nil
}

func (f *fakeSessionRepository) RevokeAll(_ context.Context, userID string) error {
	for _, session := range f.sessions {
		if session.UserID == userID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (f *fakeSessionRepository) RevokeOthers(_ context.Context, userID, currentSessionID string) error {
	for _, session := range f.sessions {
		if session.UserID == userID && session.ID != currentSessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (f *fakeSessionRepository) DeleteExpired(_ context.Context) error { return nil }

func newFixture() (*account.Service, *fakeAccountRepository, *fakePreferencesRepository, *fakeSessionRepository) {
	accounts := &fakeAccountRepository{users: map[string]*auth.User{}}
	prefs := &fakePreferencesRepository{prefs: map[string]*account.Preferences{}}
	sessions := &fakeSessionRepository{sessions: map[string]*auth.Session{}}
	service := account.NewService(accounts, prefs, sessions, slog.Default())
	return service, accounts, prefs, sessions
}

func TestUpdateProfile_PartialDelta(t *testing.T) {
	service, accounts, _, _ := newFixture()
	accounts.users["u1"] = &auth.User{ID: "u1", Username: "alice", DisplayName: "Alice", Bio: "old bio"}

	newName := "Alice L."
	updated, err := service.UpdateProfile(context.Background(), "u1", account.UpdateProfileInput{
		DisplayName: &newName,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice L.", updated.DisplayName)
	assert.Equal(t, "old bio", updated.Bio)
}

func TestDeleteAccount_RevokesAllSessions(t *testing.T) {
	service, accounts, _, sessions := newFixture()
	accounts.users["u1"] = &auth.User{ID: "u1"}
	sessions.sessions["s1"] = &auth.Session{ID: "s1", UserID: "u1"}
	sessions.sessions["s2"] = &auth.Session{ID: "s2", UserID: "u1"}

	require.NoError(t, service.DeleteAccount(context.Background(), "u1"))

	for _, session := range sessions.sessions {
		assert.True(t, session.IsRevoked)
	}
}

func TestGetPreferences_DefaultsWhenUnset(t *testing.T) {
	service, _, _, _ := newFixture()

	prefs, err := service.GetPreferences(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "light", prefs.Theme)
	assert.Equal(t, 20, prefs.BooksPerPage)
	assert.Equal(t, "latest", prefs.DefaultSort)
}

func TestGetPreferences_ReturnsStoredSettings(t *testing.T) {
	service, _, prefs, _ := newFixture()
	require.NoError(t, service.UpdatePreferences(context.Background(), &account.Preferences{
		UserID:       "u1",
		Theme:        "dark",
		BooksPerPage: 50,
		DefaultSort:  "title",
	}))

	stored, err := service.GetPreferences(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "dark", stored.Theme)
	assert.Equal(t, 50, stored.BooksPerPage)
	assert.False(t, prefs.prefs["u1"].UpdatedAt.IsZero())
}

func TestRevokeSession_OwnershipEnforced(t *testing.T) {
	service, _, _, sessions := newFixture()
	sessions.sessions["s1"] = &auth.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	sessions.sessions["s2"] = &auth.Session{ID: "s2", UserID: "other", ExpiresAt: time.Now().Add(time.Hour)}

	err := service.RevokeSession(context.Background(), "u1", "s2")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	assert.False(t, sessions.sessions["s2"].IsRevoked)

	require.NoError(t, service.RevokeSession(context.Background(), "u1", "s1"))
	assert.True(t, sessions.sessions["s1"].IsRevoked)
}
