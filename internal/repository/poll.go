package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/pollster/pollster/internal/model"
)

// ErrPollNotFound is returned when no poll matches.
var ErrPollNotFound = errors.New("poll not found")

// CreatePoll inserts a new poll into the database.
func (r *Repository) CreatePoll(ctx context.Context, poll *model.Poll) error {
	query := `
		INSERT INTO polls (id, question, options, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		poll.ID,
		poll.Question,
		pq.Array(poll.Options),
		poll.CreatedBy,
		poll.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create poll: %w", err)
	}

	return nil
}

// GetPollByID retrieves a poll by its ID.
func (r *Repository) GetPollByID(ctx context.Context, id string) (*model.Poll, error) {
	query := `
		SELECT id, question, options, created_by, created_at
		FROM polls
		WHERE id = $1
	`

	poll, err := scanPoll(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll by ID: %w", err)
	}

	return poll, nil
}

// ListPolls returns every poll, newest first.
func (r *Repository) ListPolls(ctx context.Context) ([]*model.Poll, error) {
	query := `
		SELECT id, question, options, created_by, created_at
		FROM polls
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	polls := make([]*model.Poll, 0)
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}

	return polls, nil
}

// scanPoll scans a row into a Poll. pgx.Rows satisfies pgx.Row.
func scanPoll(row pgx.Row) (*model.Poll, error) {
	var poll model.Poll
	var options []string

	err := row.Scan(
		&poll.ID,
		&poll.Question,
		pq.Array(&options),
		&poll.CreatedBy,
		&poll.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	poll.Options = options
	return &poll, nil
}
