package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pollster/pollster/internal/model"
)

// ErrVoteNotFound is returned when a user has not voted in a poll.
var ErrVoteNotFound = errors.New("vote not found")

// UpsertVote records the user's choice, replacing any earlier vote in the poll.
// created_at is kept from the first vote; updated_at moves on every change.
func (r *Repository) UpsertVote(ctx context.Context, vote *model.Vote) error {
	query := `
		INSERT INTO votes (poll_id, user_id, option_index, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (poll_id, user_id)
		DO UPDATE SET option_index = EXCLUDED.option_index, updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	now := vote.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	err := r.pool.QueryRow(ctx, query, vote.PollID, vote.UserID, vote.OptionIndex, now).Scan(
		&vote.CreatedAt,
		&vote.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPollNotFound
		}
		return fmt.Errorf("failed to upsert vote: %w", err)
	}

	return nil
}

// GetVote returns the user's vote in a poll.
// The Option field is left empty; callers resolve it against the poll.
func (r *Repository) GetVote(ctx context.Context, pollID, userID string) (*model.Vote, error) {
	query := `
		SELECT poll_id, user_id, option_index, created_at, updated_at
		FROM votes
		WHERE poll_id = $1 AND user_id = $2
	`

	var v model.Vote
	err := r.pool.QueryRow(ctx, query, pollID, userID).Scan(
		&v.PollID,
		&v.UserID,
		&v.OptionIndex,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}

	return &v, nil
}

// CountVotes returns the number of votes per option index for a poll.
func (r *Repository) CountVotes(ctx context.Context, pollID string) (map[int]int64, error) {
	query := `
		SELECT option_index, COUNT(*)
		FROM votes
		WHERE poll_id = $1
		GROUP BY option_index
	`

	rows, err := r.pool.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var index int
		var n int64
		if err := rows.Scan(&index, &n); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[index] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote counts: %w", err)
	}

	return counts, nil
}
