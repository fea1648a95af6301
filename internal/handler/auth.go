package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pollster/pollster/internal/auth"
	"github.com/pollster/pollster/internal/handler/dto"
	"github.com/pollster/pollster/internal/model"
)

// AuthService is the account and session API used by AuthHandler.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*model.Session, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*model.Session, error)
	SignOut(ctx context.Context, ac *model.AuthContext) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandler handles HTTP requests for sign-up, sign-in and sessions.
type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// SignUp handles POST /auth/v1/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.svc.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_signed_up", "user_id", session.User.ID)
	writeJSON(w, http.StatusCreated, dto.ToSessionResponse(session))
}

// SignIn handles POST /auth/v1/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_signed_in", "user_id", session.User.ID)
	writeJSON(w, http.StatusOK, dto.ToSessionResponse(session))
}

// Refresh handles POST /auth/v1/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSessionResponse(session))
}

// SignOut handles POST /auth/v1/signout.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ac := auth.AuthFromContext(r.Context())
	if ac == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if err := h.svc.SignOut(r.Context(), ac); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// User handles GET /auth/v1/user.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}
