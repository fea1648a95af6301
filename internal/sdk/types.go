package sdk

import (
	"time"

	"github.com/pollster/pollster/internal/handler/dto"
)

// User is the identity embedded in a Session.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the proof of authentication held by the client.
// It is replaced wholesale on every change and never mutated in place.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Poll is a question plus its ordered options.
type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Vote is the caller's choice in a poll.
type Vote struct {
	PollID    string    `json:"poll_id"`
	Option    string    `json:"option"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OptionCount is the tally of one option.
type OptionCount struct {
	Option string `json:"option"`
	Votes  int64  `json:"votes"`
}

// PollResults holds vote counts in poll option order.
type PollResults struct {
	PollID string        `json:"poll_id"`
	Total  int64         `json:"total"`
	Counts []OptionCount `json:"counts"`
}

func sessionFromDTO(r *dto.SessionResponse) *Session {
	return &Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		ExpiresAt:    time.Unix(r.ExpiresAt, 0).UTC(),
		User:         userFromDTO(&r.User),
	}
}

func userFromDTO(r *dto.UserResponse) User {
	return User{ID: r.ID, Email: r.Email, CreatedAt: r.CreatedAt}
}

func pollFromDTO(r *dto.PollResponse) Poll {
	return Poll{
		ID:        r.ID,
		Question:  r.Question,
		Options:   r.Options,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}

func voteFromDTO(r *dto.VoteResponse) *Vote {
	return &Vote{
		PollID:    r.PollID,
		Option:    r.Option,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func resultsFromDTO(r *dto.ResultsResponse) *PollResults {
	counts := make([]OptionCount, len(r.Counts))
	for i, c := range r.Counts {
		counts[i] = OptionCount{Option: c.Option, Votes: c.Votes}
	}
	return &PollResults{PollID: r.PollID, Total: r.Total, Counts: counts}
}
