package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pollster/pollster/internal/metrics"
	"github.com/pollster/pollster/internal/model"
	"github.com/pollster/pollster/internal/repository"
)

// Poll service errors.
var (
	ErrQuestionRequired = errors.New("question is required")
	ErrQuestionTooLong  = errors.New("question too long")
	ErrTooFewOptions    = errors.New("at least two options are required")
	ErrTooManyOptions   = errors.New("too many options")
	ErrOptionTooLong    = errors.New("option too long")
	ErrDuplicateOption  = errors.New("options must be unique")
	ErrPollNotFound     = errors.New("poll not found")
	ErrInvalidOption    = errors.New("option is not part of the poll")
	ErrVoteNotFound     = errors.New("vote not found")
)

// PollStore persists polls and votes.
type PollStore interface {
	CreatePoll(ctx context.Context, poll *model.Poll) error
	GetPollByID(ctx context.Context, id string) (*model.Poll, error)
	ListPolls(ctx context.Context) ([]*model.Poll, error)
	UpsertVote(ctx context.Context, vote *model.Vote) error
	GetVote(ctx context.Context, pollID, userID string) (*model.Vote, error)
	CountVotes(ctx context.Context, pollID string) (map[int]int64, error)
}

// PollService handles poll business logic.
type PollService struct {
	store   PollStore
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewPollService creates a new PollService.
func NewPollService(store PollStore, recorder metrics.Recorder, logger *slog.Logger) *PollService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PollService{
		store:   store,
		metrics: recorder,
		logger:  logger.With("component", "polls"),
		now:     utcNow,
	}
}

// CreatePollInput defines input for creating a poll.
type CreatePollInput struct {
	Question  string
	Options   []string
	CreatedBy string
}

// ListPolls returns all polls, newest first.
func (s *PollService) ListPolls(ctx context.Context) ([]*model.Poll, error) {
	polls, err := s.store.ListPolls(ctx)
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	return polls, nil
}

// GetPoll retrieves a poll by ID.
func (s *PollService) GetPoll(ctx context.Context, id string) (*model.Poll, error) {
	poll, err := s.store.GetPollByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPollNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("get poll: %w", err)
	}
	return poll, nil
}

// CreatePoll validates and stores a new poll.
// Blank options are dropped before the option count is checked.
func (s *PollService) CreatePoll(ctx context.Context, input CreatePollInput) (*model.Poll, error) {
	question, options, err := ValidatePoll(input.Question, input.Options)
	if err != nil {
		return nil, err
	}

	poll := &model.Poll{
		ID:        newID(),
		Question:  question,
		Options:   options,
		CreatedBy: input.CreatedBy,
		CreatedAt: s.now(),
	}

	if err := s.store.CreatePoll(ctx, poll); err != nil {
		return nil, fmt.Errorf("create poll: %w", err)
	}

	s.metrics.IncPollCreated()
	s.logger.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options))

	return poll, nil
}

// Vote records userID's choice of option in the poll, replacing any earlier vote.
func (s *PollService) Vote(ctx context.Context, pollID, userID, option string) (*model.Vote, error) {
	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	index := poll.OptionIndex(option)
	if index < 0 {
		return nil, ErrInvalidOption
	}

	vote := &model.Vote{
		PollID:      poll.ID,
		UserID:      userID,
		OptionIndex: index,
		Option:      option,
		UpdatedAt:   s.now(),
	}

	if err := s.store.UpsertVote(ctx, vote); err != nil {
		if errors.Is(err, repository.ErrPollNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("upsert vote: %w", err)
	}

	s.metrics.IncVoteCast()
	return vote, nil
}

// MyVote returns userID's current vote in the poll.
func (s *PollService) MyVote(ctx context.Context, pollID, userID string) (*model.Vote, error) {
	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	vote, err := s.store.GetVote(ctx, poll.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrVoteNotFound) {
			return nil, ErrVoteNotFound
		}
		return nil, fmt.Errorf("get vote: %w", err)
	}

	if vote.OptionIndex >= 0 && vote.OptionIndex < len(poll.Options) {
		vote.Option = poll.Options[vote.OptionIndex]
	}
	return vote, nil
}

// Results aggregates the votes of a poll.
func (s *PollService) Results(ctx context.Context, pollID string) (*model.PollResults, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveResultsDuration(time.Since(start))
	}()

	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	counts, err := s.store.CountVotes(ctx, poll.ID)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}

	return model.NewPollResults(poll, counts), nil
}

// ValidatePoll normalizes a question and its options.
// The question is trimmed; options are trimmed and blanks dropped, keeping order.
func ValidatePoll(question string, options []string) (string, []string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil, ErrQuestionRequired
	}
	if utf8.RuneCountInString(question) > model.MaxQuestionLength {
		return "", nil, ErrQuestionTooLong
	}

	filtered := make([]string, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for _, option := range options {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		if utf8.RuneCountInString(option) > model.MaxOptionLength {
			return "", nil, ErrOptionTooLong
		}
		if _, dup := seen[option]; dup {
			return "", nil, ErrDuplicateOption
		}
		seen[option] = struct{}{}
		filtered = append(filtered, option)
	}

	if len(filtered) < model.MinPollOptions {
		return "", nil, ErrTooFewOptions
	}
	if len(filtered) > model.MaxPollOptions {
		return "", nil, ErrTooManyOptions
	}

	return question, filtered, nil
}
