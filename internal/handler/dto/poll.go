package dto

import (
	"time"

	"github.com/pollster/pollster/internal/model"
)

// CreatePollRequest represents the request body for creating a poll.
type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// VoteRequest represents the request body for casting a vote.
type VoteRequest struct {
	Option string `json:"option"`
}

// PollResponse represents a poll in API responses.
type PollResponse struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// PollListResponse wraps the list of polls.
type PollListResponse struct {
	Data []PollResponse `json:"data"`
}

// VoteResponse represents a vote in API responses.
type VoteResponse struct {
	PollID    string    `json:"poll_id"`
	Option    string    `json:"option"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OptionCountResponse is the tally of one option.
type OptionCountResponse struct {
	Option string `json:"option"`
	Votes  int64  `json:"votes"`
}

// ResultsResponse represents aggregated poll results.
type ResultsResponse struct {
	PollID string                `json:"poll_id"`
	Total  int64                 `json:"total"`
	Counts []OptionCountResponse `json:"counts"`
}

// ToPollResponse converts a Poll model to PollResponse DTO.
func ToPollResponse(p *model.Poll) *PollResponse {
	options := p.Options
	if options == nil {
		options = []string{}
	}
	return &PollResponse{
		ID:        p.ID,
		Question:  p.Question,
		Options:   options,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}

// ToPollListResponse converts a slice of Poll models. An empty slice encodes as [].
func ToPollListResponse(polls []*model.Poll) *PollListResponse {
	data := make([]PollResponse, len(polls))
	for i, p := range polls {
		data[i] = *ToPollResponse(p)
	}
	return &PollListResponse{Data: data}
}

// ToVoteResponse converts a Vote model to VoteResponse DTO.
func ToVoteResponse(v *model.Vote) *VoteResponse {
	return &VoteResponse{
		PollID:    v.PollID,
		Option:    v.Option,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// ToResultsResponse converts PollResults to ResultsResponse DTO.
func ToResultsResponse(r *model.PollResults) *ResultsResponse {
	counts := make([]OptionCountResponse, len(r.Counts))
	for i, c := range r.Counts {
		counts[i] = OptionCountResponse{Option: c.Option, Votes: c.Votes}
	}
	return &ResultsResponse{
		PollID: r.PollID,
		Total:  r.Total,
		Counts: counts,
	}
}
