package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pollster/pollster/internal/model"
)

// refreshTokenBytes is the entropy of an opaque refresh token (256 bits).
const refreshTokenBytes = 32

var (
	// ErrInvalidToken indicates the access token is malformed or its signature is wrong.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrExpiredToken indicates the access token is past its expiry.
	ErrExpiredToken = errors.New("access token expired")
)

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the access token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a new access token for user bound to the refresh session sessionID.
func (t *TokenIssuer) Issue(user *model.User, sessionID string) (string, *AccessClaims, error) {
	now := t.now()
	claims := &AccessClaims{
		Email:     user.Email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}

	return signed, claims, nil
}

// Parse verifies an access token and returns its claims.
func (t *TokenIssuer) Parse(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.SessionID == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// AuthContext converts verified claims into request auth context.
func (c *AccessClaims) AuthContext() *model.AuthContext {
	ac := &model.AuthContext{
		UserID:    c.Subject,
		Email:     c.Email,
		SessionID: c.SessionID,
		TokenID:   c.ID,
	}
	if c.ExpiresAt != nil {
		ac.ExpiresAt = c.ExpiresAt.Time
	}
	return ac
}

// GenerateRefreshToken returns a new opaque URL-safe refresh token.
func GenerateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken returns the SHA-256 hex digest of a refresh token for storage.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
