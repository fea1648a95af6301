package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pollster/pollster/internal/auth"
	"github.com/pollster/pollster/internal/handler/dto"
	"github.com/pollster/pollster/internal/model"
	"github.com/pollster/pollster/internal/service"
)

// PollService is the poll API used by PollHandler.
type PollService interface {
	ListPolls(ctx context.Context) ([]*model.Poll, error)
	GetPoll(ctx context.Context, id string) (*model.Poll, error)
	CreatePoll(ctx context.Context, input service.CreatePollInput) (*model.Poll, error)
	Vote(ctx context.Context, pollID, userID, option string) (*model.Vote, error)
	MyVote(ctx context.Context, pollID, userID string) (*model.Vote, error)
	Results(ctx context.Context, pollID string) (*model.PollResults, error)
}

// PollHandler handles HTTP requests for poll operations.
type PollHandler struct {
	svc    PollService
	logger *slog.Logger
}

// NewPollHandler creates a new PollHandler.
func NewPollHandler(svc PollService, logger *slog.Logger) *PollHandler {
	return &PollHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/polls.
func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	polls, err := h.svc.ListPolls(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPollListResponse(polls))
}

// Get handles GET /api/v1/polls/{id}.
func (h *PollHandler) Get(w http.ResponseWriter, r *http.Request) {
	poll, err := h.svc.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPollResponse(poll))
}

// Create handles POST /api/v1/polls.
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.CreatePollRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	poll, err := h.svc.CreatePoll(r.Context(), service.CreatePollInput{
		Question:  req.Question,
		Options:   req.Options,
		CreatedBy: userID,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("poll_created", "poll_id", poll.ID, "user_id", userID)
	writeJSON(w, http.StatusCreated, dto.ToPollResponse(poll))
}

// Vote handles POST /api/v1/polls/{id}/votes.
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.VoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vote, err := h.svc.Vote(r.Context(), chi.URLParam(r, "id"), userID, req.Option)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToVoteResponse(vote))
}

// MyVote handles GET /api/v1/polls/{id}/votes/me.
func (h *PollHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	vote, err := h.svc.MyVote(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToVoteResponse(vote))
}

// Results handles GET /api/v1/polls/{id}/results.
func (h *PollHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.Results(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToResultsResponse(results))
}
