package model

import "time"

// Vote records a user's selection in a poll.
// A user holds at most one vote per poll; voting again replaces it.
type Vote struct {
	PollID      string    `json:"poll_id"`
	UserID      string    `json:"user_id"`
	OptionIndex int       `json:"option_index"`
	Option      string    `json:"option"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OptionCount is the number of votes for one option.
type OptionCount struct {
	Option string `json:"option"`
	Votes  int64  `json:"votes"`
}

// PollResults aggregates votes per option, in poll option order.
type PollResults struct {
	PollID string        `json:"poll_id"`
	Total  int64         `json:"total"`
	Counts []OptionCount `json:"counts"`
}

// NewPollResults builds results for poll from per-index vote counts.
// Indexes outside the poll's options are ignored.
func NewPollResults(poll *Poll, byIndex map[int]int64) *PollResults {
	results := &PollResults{
		PollID: poll.ID,
		Counts: make([]OptionCount, len(poll.Options)),
	}
	for i, option := range poll.Options {
		n := byIndex[i]
		results.Counts[i] = OptionCount{Option: option, Votes: n}
		results.Total += n
	}
	return results
}
