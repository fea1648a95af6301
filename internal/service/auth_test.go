package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollster/pollster/internal/auth"
	"github.com/pollster/pollster/internal/metrics"
	"github.com/pollster/pollster/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	svc      *AuthService
	users    *fakeUsers
	sessions *fakeSessions
	revoker  *fakeRevoker
	metrics  *metrics.InMemoryRecorder
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:    newFakeUsers(),
		sessions: newFakeSessions(),
		revoker:  newFakeRevoker(),
		metrics:  metrics.NewInMemory(),
	}
	tokens := auth.NewTokenIssuer(testSecret, "pollster", time.Hour)
	f.svc = NewAuthService(f.users, f.sessions, f.revoker, tokens, 24*time.Hour, f.metrics, nil)
	return f
}

func fakeCredentials() (string, string) {
	return gofakeit.Email(), gofakeit.Password(true, true, true, false, false, 12)
}

func TestAuthService_SignUp_Success(t *testing.T) {
	f := newAuthFixture(t)
	email, password := fakeCredentials()

	session, err := f.svc.SignUp(context.Background(), "  "+strings.ToUpper(email)+" ", password)
	require.NoError(t, err)

	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, model.TokenTypeBearer, session.TokenType)
	assert.Equal(t, int64(3600), session.ExpiresIn)
	assert.Equal(t, strings.ToLower(email), session.User.Email)
	assert.NotEmpty(t, session.User.ID)
	assert.Equal(t, 1, f.sessions.count())
	assert.Equal(t, uint64(1), f.metrics.Snapshot().SignUps)

	stored, err := f.users.GetUserByEmail(context.Background(), strings.ToLower(email))
	require.NoError(t, err)
	assert.NotEqual(t, password, stored.PasswordHash)
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"empty email", "", "secret123", ErrInvalidEmail},
		{"no at sign", "not-an-email", "secret123", ErrInvalidEmail},
		{"display name", "Bob <bob@example.com>", "secret123", ErrInvalidEmail},
		{"short password", "bob@example.com", "12345", ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SignUp(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, uint64(len(tests)), f.metrics.Snapshot().SignUpsFailed)
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	email, password := fakeCredentials()

	_, err := f.svc.SignUp(context.Background(), email, password)
	require.NoError(t, err)

	_, err = f.svc.SignUp(context.Background(), strings.ToUpper(email), password)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_SignIn(t *testing.T) {
	f := newAuthFixture(t)
	email, password := fakeCredentials()

	created, err := f.svc.SignUp(context.Background(), email, password)
	require.NoError(t, err)

	session, err := f.svc.SignIn(context.Background(), email, password)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, session.User.ID)
	assert.NotEqual(t, created.RefreshToken, session.RefreshToken)
	assert.Equal(t, 2, f.sessions.count())

	_, err = f.svc.SignIn(context.Background(), email, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.SignIn(context.Background(), gofakeit.Email(), password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.SignIn(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	snap := f.metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.SignIns)
	assert.Equal(t, uint64(3), snap.SignInsFailed)
}

func TestAuthService_Refresh_Rotates(t *testing.T) {
	f := newAuthFixture(t)
	email, password := fakeCredentials()

	first, err := f.svc.SignUp(context.Background(), email, password)
	require.NoError(t, err)

	second, err := f.svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, first.User.ID, second.User.ID)

	// The old refresh token no longer works.
	_, err = f.svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Both access tokens belong to the same session.
	a1, err := f.svc.Authenticate(context.Background(), first.AccessToken)
	require.NoError(t, err)
	a2, err := f.svc.Authenticate(context.Background(), second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, a1.SessionID, a2.SessionID)
}

func TestAuthService_Refresh_Invalid(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = f.svc.Refresh(context.Background(), "unknown-token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_Expired(t *testing.T) {
	f := newAuthFixture(t)
	email, password := fakeCredentials()

	session, err := f.svc.SignUp(context.Background(), email, password)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now().UTC().Add(48 * time.Hour) }

	_, err = f.svc.Refresh(context.Background(), session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.Equal(t, 0, f.sessions.count())
}

func TestAuthService_SignOut(t *testing.T) {
	f := newAuthFixture(t)
	email, password := fakeCredentials()

	session, err := f.svc.SignUp(context.Background(), email, password)
	require.NoError(t, err)

	ac, err := f.svc.Authenticate(context.Background(), session.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.SignOut(context.Background(), ac))
	assert.Equal(t, 0, f.sessions.count())

	_, err = f.svc.Authenticate(context.Background(), session.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.svc.Refresh(context.Background(), session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Signing out twice is harmless.
	require.NoError(t, f.svc.SignOut(context.Background(), ac))
}

func TestAuthService_Authenticate_Invalid(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_GetUser(t *testing.T) {
	f := newAuthFixture(t)
	email, password := fakeCredentials()

	session, err := f.svc.SignUp(context.Background(), email, password)
	require.NoError(t, err)

	user, err := f.svc.GetUser(context.Background(), session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, session.User.Email, user.Email)

	_, err = f.svc.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_PurgeExpiredSessions(t *testing.T) {
	f := newAuthFixture(t)
	email, password := fakeCredentials()

	_, err := f.svc.SignUp(context.Background(), email, password)
	require.NoError(t, err)

	n, err := f.svc.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.svc.now = func() time.Time { return time.Now().UTC().Add(25 * time.Hour) }
	n, err = f.svc.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNormalizeEmail(t *testing.T) {
	got, err := normalizeEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got)
}
