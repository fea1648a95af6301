package screen

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/pollster/pollster/internal/route"
	"github.com/pollster/pollster/internal/sdk"
)

// ErrUnknownOption is returned by Select for an option the poll does not have.
var ErrUnknownOption = errors.New("option is not part of the poll")

// PollDetail shows one poll and lets a signed-in user vote.
type PollDetail struct {
	id      string
	polls   PollVoter
	session SessionSource
	nav     Navigator
	alert   Alerter
	logger  *slog.Logger

	poll     *sdk.Poll
	selected string
	vote     *sdk.Vote
	results  *sdk.PollResults
	err      string
	busy     bool
}

// NewPollDetail creates the detail screen for poll id.
func NewPollDetail(id string, polls PollVoter, session SessionSource, nav Navigator, alert Alerter, logger *slog.Logger) *PollDetail {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollDetail{
		id:      id,
		polls:   polls,
		session: session,
		nav:     nav,
		alert:   alert,
		logger:  logger.With("screen", "poll-detail", "poll_id", id),
	}
}

// Load fetches the poll and, for a signed-in user, pre-selects their vote.
func (s *PollDetail) Load(ctx context.Context) {
	poll, err := s.polls.Get(ctx, s.id)
	if err != nil {
		s.logger.Debug("get poll failed", "error", err)
		s.alert.Alert(MsgFetchFailed)
		return
	}
	s.poll = poll

	if !s.session.Authenticated() {
		return
	}
	vote, err := s.polls.MyVote(ctx, s.id)
	if err != nil {
		s.logger.Debug("get own vote failed", "error", err)
		return
	}
	if vote != nil && slices.Contains(poll.Options, vote.Option) {
		s.vote = vote
		s.selected = vote.Option
	}
}

// Select marks option as the pending choice.
func (s *PollDetail) Select(option string) error {
	if s.poll == nil || !slices.Contains(s.poll.Options, option) {
		return ErrUnknownOption
	}
	s.selected = option
	s.err = ""
	return nil
}

// Vote submits the selected option. Signed-out users are sent to sign in.
// It reports whether the vote was recorded.
func (s *PollDetail) Vote(ctx context.Context) bool {
	if s.busy || s.poll == nil {
		return false
	}
	if !s.session.Authenticated() {
		if _, err := s.nav.Push(route.SignIn); err != nil {
			s.logger.Warn("navigate to sign-in failed", "error", err)
		}
		return false
	}
	if s.selected == "" {
		s.err = MsgSelectOption
		return false
	}

	s.err = ""
	s.busy = true
	defer func() { s.busy = false }()

	vote, err := s.polls.Vote(ctx, s.id, s.selected)
	if err != nil {
		s.logger.Debug("vote failed", "error", err)
		s.alert.Alert(MsgVoteFailed)
		return false
	}
	s.vote = vote
	return true
}

// LoadResults fetches the current vote counts.
func (s *PollDetail) LoadResults(ctx context.Context) {
	results, err := s.polls.Results(ctx, s.id)
	if err != nil {
		s.logger.Debug("get results failed", "error", err)
		s.alert.Alert(MsgFetchFailed)
		return
	}
	s.results = results
}

// Poll returns the loaded poll, or nil.
func (s *PollDetail) Poll() *sdk.Poll { return s.poll }

// Selected returns the pending choice.
func (s *PollDetail) Selected() string { return s.selected }

// MyVote returns the recorded vote of the signed-in user, or nil.
func (s *PollDetail) MyVote() *sdk.Vote { return s.vote }

// Results returns the last loaded results, or nil.
func (s *PollDetail) Results() *sdk.PollResults { return s.results }

// Error returns the inline error text.
func (s *PollDetail) Error() string { return s.err }

// Busy reports whether a vote is being submitted.
func (s *PollDetail) Busy() bool { return s.busy }
