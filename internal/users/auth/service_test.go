package auth_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/dberr"
	"github.com/libbyhq/libby/internal/platform/sec"
	"github.com/libbyhq/libby/internal/users/auth"
)

// fakeUserRepository is an in-memory UserRepository.
type fakeUserRepository struct {
	users map[string]*auth.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*auth.User{}}
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) Update(_ context.Context, user *auth.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return dberr.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	user, ok := f.users[userID]
	if !ok {
		return dberr.ErrNotFound
	}
	user.PasswordHash = newHash
	return nil
}

func (f *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepository) MarkVerified(_ context.Context, userID string) error {
	user, ok := f.users[userID]
	if !ok {
		return dberr.ErrNotFound
	}
	user.IsVerified = true
	return nil
}

// fakeSessionRepository is an in-memory SessionRepository.
type fakeSessionRepository struct {
	sessions map[string]*auth.Session
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: map[string]*auth.Session{}}
}

func (f *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	session.CreatedAt = time.Now()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	for _, session := range f.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked && session.ExpiresAt.After(time.Now()) {
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

func (f *fakeSessionRepository) DeleteExpired(_ context.Context) error {
	for id, session := range f.sessions {
		if session.ExpiresAt.Before(time.Now()) {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeSessionRepository) activeCount(userID string) int {
	count := 0
	for _, session := range f.sessions {
		if session.UserID == userID && !session.IsRevoked {
			count++
		}
	}
	return count
}

// fakeTokenRepository is an in-memory TokenRepository ignoring TTLs.
type fakeTokenRepository struct {
	tokens map[string]string
}

func newFakeTokenRepository() *fakeTokenRepository {
	return &fakeTokenRepository{tokens: map[string]string{}}
}

func (f *fakeTokenRepository) Set(_ context.Context, token, userID string, _ time.Duration) error {
	f.tokens[token] = userID
	return nil
}

func (f *fakeTokenRepository) Get(_ context.Context, token string) (string, error) {
	userID, ok := f.tokens[token]
	if !ok {
		return "", apperr.Unauthorized("Invalid or expired token")
	}
	return userID, nil
}

func (f *fakeTokenRepository) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

// fakeTokenProvider mints predictable access tokens.
type fakeTokenProvider struct {
	issued int
}

func (f *fakeTokenProvider) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	f.issued++
	return fmt.Sprintf("access-%s-%d", userID, f.issued), nil
}

type authFixture struct {
	service      *auth.Service
	users        *fakeUserRepository
	sessions     *fakeSessionRepository
	resetTokens  *fakeTokenRepository
	verifyTokens *fakeTokenRepository
}

func newAuthFixture() *authFixture {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	resetTokens := newFakeTokenRepository()
	verifyTokens := newFakeTokenRepository()
	service := auth.NewService(users, sessions, resetTokens, verifyTokens, &fakeTokenProvider{}, slog.Default())
	return &authFixture{
		service:      service,
		users:        users,
		sessions:     sessions,
		resetTokens:  resetTokens,
		verifyTokens: verifyTokens,
	}
}

func register(t *testing.T, fixture *authFixture, username, email, password string) *auth.User {
	t.Helper()
	user, err := fixture.service.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestRegister_HashesPasswordAndDefaultsRole(t *testing.T) {
	fixture := newAuthFixture()

	user := register(t, fixture, "alice", "alice@example.com", "correct horse battery")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, sec.RoleMember, user.Role)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("correct horse battery", user.PasswordHash))
}

func TestRegister_Validation(t *testing.T) {
	fixture := newAuthFixture()

	cases := []struct {
		name  string
		input auth.RegisterInput
	}{
		{"missing username", auth.RegisterInput{Email: "a@example.com", Password: "long enough pw"}},
		{"bad email", auth.RegisterInput{Username: "alice", Email: "not-an-email", Password: "long enough pw"}},
		{"short password", auth.RegisterInput{Username: "alice", Email: "a@example.com", Password: "short"}},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := fixture.service.Register(context.Background(), testCase.input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		})
	}
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	fixture := newAuthFixture()
	register(t, fixture, "alice", "alice@example.com", "long enough pw")

	_, err := fixture.service.Register(context.Background(), auth.RegisterInput{
		Username: "someone-else",
		Email:    "alice@example.com",
		Password: "long enough pw",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	_, err = fixture.service.Register(context.Background(), auth.RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "long enough pw",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestLogin_AcceptsUsernameOrEmail(t *testing.T) {
	fixture := newAuthFixture()
	register(t, fixture, "alice", "alice@example.com", "long enough pw")

	byEmail, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Login:    "alice@example.com",
		Password: "long enough pw",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.AccessToken)
	assert.NotEmpty(t, byEmail.RefreshToken)

	byUsername, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Login:    "alice",
		Password: "long enough pw",
	})
	require.NoError(t, err)
	assert.NotEqual(t, byEmail.RefreshToken, byUsername.RefreshToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	fixture := newAuthFixture()
	register(t, fixture, "alice", "alice@example.com", "long enough pw")

	_, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Login:    "alice",
		Password: "wrong password",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	_, err = fixture.service.Login(context.Background(), auth.LoginInput{
		Login:    "nobody",
		Password: "long enough pw",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestRefreshSession_RotatesAndRevokesOldToken(t *testing.T) {
	fixture := newAuthFixture()
	user := register(t, fixture, "alice", "alice@example.com", "long enough pw")

	initial, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Login:    "alice",
		Password: "long enough pw",
	})
	require.NoError(t, err)

	rotated, err := fixture.service.RefreshSession(context.Background(), initial.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, initial.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, 1, fixture.sessions.activeCount(user.ID))

	// The consumed token must be dead.
	_, err = fixture.service.RefreshSession(context.Background(), initial.RefreshToken, "", "")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestLogout_IsIdempotent(t *testing.T) {
	fixture := newAuthFixture()
	user := register(t, fixture, "alice", "alice@example.com", "long enough pw")

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Login:    "alice",
		Password: "long enough pw",
	})
	require.NoError(t, err)

	require.NoError(t, fixture.service.Logout(context.Background(), session.RefreshToken))
	assert.Equal(t, 0, fixture.sessions.activeCount(user.ID))

	// Second logout of the same token is a no-op, not an error.
	require.NoError(t, fixture.service.Logout(context.Background(), session.RefreshToken))
}

func TestPasswordReset_Flow(t *testing.T) {
	fixture := newAuthFixture()
	user := register(t, fixture, "alice", "alice@example.com", "long enough pw")

	_, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Login:    "alice",
		Password: "long enough pw",
	})
	require.NoError(t, err)

	token, err := fixture.service.RequestPasswordReset(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, fixture.service.ResetPassword(context.Background(), token, "brand new password"))

	// All sessions revoked and the token consumed.
	assert.Equal(t, 0, fixture.sessions.activeCount(user.ID))
	assert.Empty(t, fixture.resetTokens.tokens)

	_, err = fixture.service.Login(context.Background(), auth.LoginInput{
		Login:    "alice",
		Password: "brand new password",
	})
	require.NoError(t, err)
}

func TestPasswordReset_UnknownEmailStaysSilent(t *testing.T) {
	fixture := newAuthFixture()

	token, err := fixture.service.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestChangePassword_RequiresCurrentPassword(t *testing.T) {
	fixture := newAuthFixture()
	user := register(t, fixture, "alice", "alice@example.com", "long enough pw")

	err := fixture.service.ChangePassword(context.Background(), user.ID, "wrong password", "brand new password", "")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	require.NoError(t, fixture.service.ChangePassword(context.Background(), user.ID, "long enough pw", "brand new password", ""))
	assert.True(t, sec.CheckPasswordHash("brand new password", fixture.users.users[user.ID].PasswordHash))
}

func TestVerifyEmail_ConsumesToken(t *testing.T) {
	fixture := newAuthFixture()
	user := register(t, fixture, "alice", "alice@example.com", "long enough pw")

	// Registration stashes exactly one verification token.
	require.Len(t, fixture.verifyTokens.tokens, 1)
	var token string
	for stored := range fixture.verifyTokens.tokens {
		token = stored
	}

	require.NoError(t, fixture.service.VerifyEmail(context.Background(), token))
	assert.True(t, fixture.users.users[user.ID].IsVerified)
	assert.Empty(t, fixture.verifyTokens.tokens)

	err := fixture.service.VerifyEmail(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}
