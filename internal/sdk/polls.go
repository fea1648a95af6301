package sdk

import (
	"context"
	"net/http"

	"github.com/pollster/pollster/internal/handler/dto"
)

// Polls is the poll collection of the API.
type Polls struct {
	c *Client
}

// List returns every poll, newest first. An empty collection is an empty, non-nil slice.
func (p *Polls) List(ctx context.Context) ([]Poll, error) {
	var resp dto.PollListResponse
	if err := p.c.do(ctx, http.MethodGet, "/api/v1/polls", "", nil, &resp); err != nil {
		return nil, err
	}

	polls := make([]Poll, len(resp.Data))
	for i := range resp.Data {
		polls[i] = pollFromDTO(&resp.Data[i])
	}
	return polls, nil
}

// Get returns one poll.
func (p *Polls) Get(ctx context.Context, id string) (*Poll, error) {
	var resp dto.PollResponse
	if err := p.c.do(ctx, http.MethodGet, pollPath(id), "", nil, &resp); err != nil {
		return nil, err
	}
	poll := pollFromDTO(&resp)
	return &poll, nil
}

// Insert creates a poll owned by the signed-in user.
func (p *Polls) Insert(ctx context.Context, question string, options []string) (*Poll, error) {
	token, err := p.c.Auth.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req := dto.CreatePollRequest{Question: question, Options: options}
	var resp dto.PollResponse
	if err := p.c.do(ctx, http.MethodPost, "/api/v1/polls", token, req, &resp); err != nil {
		return nil, err
	}
	poll := pollFromDTO(&resp)
	return &poll, nil
}

// Vote records the signed-in user's choice, replacing any earlier one.
func (p *Polls) Vote(ctx context.Context, id, option string) (*Vote, error) {
	token, err := p.c.Auth.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var resp dto.VoteResponse
	if err := p.c.do(ctx, http.MethodPost, pollPath(id, "votes"), token, dto.VoteRequest{Option: option}, &resp); err != nil {
		return nil, err
	}
	return voteFromDTO(&resp), nil
}

// MyVote returns the signed-in user's vote, or nil when they have not voted.
func (p *Polls) MyVote(ctx context.Context, id string) (*Vote, error) {
	token, err := p.c.Auth.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var resp dto.VoteResponse
	err = p.c.do(ctx, http.MethodGet, pollPath(id, "votes", "me"), token, nil, &resp)
	if apiErr, ok := errorsAsAPI(err); ok && apiErr.Code == "VOTE_NOT_FOUND" {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return voteFromDTO(&resp), nil
}

// Results returns the vote counts of a poll.
func (p *Polls) Results(ctx context.Context, id string) (*PollResults, error) {
	var resp dto.ResultsResponse
	if err := p.c.do(ctx, http.MethodGet, pollPath(id, "results"), "", nil, &resp); err != nil {
		return nil, err
	}
	return resultsFromDTO(&resp), nil
}
