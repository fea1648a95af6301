package screen

import (
	"context"
	"log/slog"

	"github.com/pollster/pollster/internal/route"
	"github.com/pollster/pollster/internal/sdk"
)

// PollList shows every poll.
type PollList struct {
	polls  PollLister
	alert  Alerter
	logger *slog.Logger

	items []sdk.Poll
}

// NewPollList creates the poll list screen.
func NewPollList(polls PollLister, alert Alerter, logger *slog.Logger) *PollList {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollList{polls: polls, alert: alert, logger: logger.With("screen", "poll-list")}
}

// Load fetches all polls and replaces the list. On failure the list is left
// as it was and one alert is shown.
func (s *PollList) Load(ctx context.Context) {
	polls, err := s.polls.List(ctx)
	if err != nil {
		s.logger.Debug("list polls failed", "error", err)
		s.alert.Alert(MsgFetchFailed)
		return
	}
	if polls == nil {
		polls = []sdk.Poll{}
	}
	s.items = polls
}

// Polls returns the loaded polls, or nil before the first successful load.
func (s *PollList) Polls() []sdk.Poll {
	return s.items
}

// Href returns the path of a poll's detail screen.
func (s *PollList) Href(p sdk.Poll) string {
	return route.PollDetail(p.ID)
}
