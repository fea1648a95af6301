package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/pollster/pollster/internal/auth"
	"github.com/pollster/pollster/internal/metrics"
	"github.com/pollster/pollster/internal/model"
	"github.com/pollster/pollster/internal/repository"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// Auth service errors.
var (
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenRevoked        = errors.New("access token revoked")
	ErrUserNotFound        = errors.New("user not found")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionStore persists refresh sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s *model.RefreshSession) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshSession, error)
	RotateSession(ctx context.Context, id, oldHash, newHash string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// TokenRevoker deny-lists access tokens that were signed out before expiry.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthService handles accounts and sessions.
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	revoker    TokenRevoker
	tokens     *auth.TokenIssuer
	refreshTTL time.Duration
	metrics    metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users UserStore,
	sessions SessionStore,
	revoker TokenRevoker,
	tokens *auth.TokenIssuer,
	refreshTTL time.Duration,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		revoker:    revoker,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		metrics:    recorder,
		logger:     logger.With("component", "auth"),
		now:        utcNow,
	}
}

// SignUp registers a new account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*model.Session, error) {
	session, err := s.signUp(ctx, email, password)
	s.metrics.IncSignUp(outcome(err))
	return session, err
}

func (s *AuthService) signUp(ctx context.Context, email, password string) (*model.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	return s.startSession(ctx, user)
}

// SignIn exchanges email and password for a new session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	session, err := s.signIn(ctx, email, password)
	s.metrics.IncSignIn(outcome(err))
	return session, err
}

func (s *AuthService) signIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same time as a real check so unknown emails are not observable.
			auth.BurnPasswordCheck(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// Refresh rotates a refresh token and issues a new access token for the same session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	session, err := s.refresh(ctx, refreshToken)
	s.metrics.IncTokenRefresh(outcome(err))
	return session, err
}

func (s *AuthService) refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	oldHash := auth.HashToken(refreshToken)
	rs, err := s.sessions.GetSessionByTokenHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	now := s.now()
	if rs.IsExpired(now) {
		if err := s.sessions.DeleteSession(ctx, rs.ID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			s.logger.Warn("failed to delete expired session", "session_id", rs.ID, "error", err)
		}
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetUserByID(ctx, rs.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	newToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(s.refreshTTL)
	if err := s.sessions.RotateSession(ctx, rs.ID, oldHash, auth.HashToken(newToken), expiresAt); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			// Another request rotated this token first.
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	return s.buildSession(user, rs.ID, newToken)
}

// SignOut ends the caller's session and deny-lists its access token.
func (s *AuthService) SignOut(ctx context.Context, ac *model.AuthContext) error {
	if ac == nil {
		return ErrInvalidCredentials
	}

	if err := s.sessions.DeleteSession(ctx, ac.SessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}

	if err := s.revoker.RevokeToken(ctx, ac.TokenID, ac.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.metrics.IncSignOut()
	s.logger.Info("user signed out", "user_id", ac.UserID)
	return nil
}

// Authenticate validates a bearer access token and returns its claims.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.AuthContext, error) {
	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoker.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims.AuthContext(), nil
}

// GetUser returns the account behind an authenticated request.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// PurgeExpiredSessions deletes refresh sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}

func (s *AuthService) startSession(ctx context.Context, user *model.User) (*model.Session, error) {
	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	rs := &model.RefreshSession{
		ID:        newID(),
		UserID:    user.ID,
		TokenHash: auth.HashToken(refreshToken),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, rs); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return s.buildSession(user, rs.ID, refreshToken)
}

func (s *AuthService) buildSession(user *model.User, sessionID, refreshToken string) (*model.Session, error) {
	accessToken, claims, err := s.tokens.Issue(user, sessionID)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    model.TokenTypeBearer,
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		ExpiresAt:    claims.ExpiresAt.Time,
		User:         *user,
	}, nil
}

// normalizeEmail trims and lowercases an address and checks it is a bare addr-spec.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func outcome(err error) string {
	if err != nil {
		return metrics.StatusFailed
	}
	return metrics.StatusSuccess
}
