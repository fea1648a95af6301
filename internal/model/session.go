package model

import "time"

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// Session is the proof of authentication handed to clients.
// Clients treat it as opaque and replace it wholesale on every change.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"` // seconds
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// IsExpired reports whether the access token has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ExpiresWithin reports whether the access token expires within d of now.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return s.ExpiresAt.Sub(now) <= d
}

// RefreshSession is the server-side record backing a refresh token.
// Only the SHA-256 digest of the token is stored.
type RefreshSession struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the refresh session can no longer be used.
func (r *RefreshSession) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID    string
	Email     string
	SessionID string
	TokenID   string
	ExpiresAt time.Time
}
