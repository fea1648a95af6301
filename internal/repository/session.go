package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pollster/pollster/internal/model"
)

// ErrSessionNotFound is returned when no refresh session matches.
var ErrSessionNotFound = errors.New("session not found")

// CreateSession stores a refresh session.
func (r *Repository) CreateSession(ctx context.Context, s *model.RefreshSession) error {
	query := `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, s.ID, s.UserID, s.TokenHash, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSessionByTokenHash looks up a refresh session by the digest of its token.
func (r *Repository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshSession, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM sessions
		WHERE token_hash = $1
	`

	var s model.RefreshSession
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&s.ID,
		&s.UserID,
		&s.TokenHash,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &s, nil
}

// RotateSession swaps the token digest of a session and extends its expiry.
// The swap only succeeds if the session still holds oldHash, so a refresh
// token can be redeemed once.
func (r *Repository) RotateSession(ctx context.Context, id, oldHash, newHash string, expiresAt time.Time) error {
	query := `
		UPDATE sessions
		SET token_hash = $3, expires_at = $4
		WHERE id = $1 AND token_hash = $2
	`

	result, err := r.pool.Exec(ctx, query, id, oldHash, newHash, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to rotate session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteSession removes a refresh session.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteExpiredSessions purges sessions whose refresh token has expired.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
