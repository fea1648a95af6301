package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pollster/pollster/internal/service"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// serviceErrors maps service sentinels to HTTP responses. First match wins.
var serviceErrors = []errorMapping{
	{service.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address"},
	{service.ErrWeakPassword, http.StatusBadRequest, "WEAK_PASSWORD", "Password should be at least 6 characters"},
	{service.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN", "User already registered"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid login credentials"},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid refresh token"},
	{service.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{service.ErrQuestionRequired, http.StatusBadRequest, "QUESTION_REQUIRED", "Please provide the question"},
	{service.ErrQuestionTooLong, http.StatusBadRequest, "QUESTION_TOO_LONG", "Question exceeds maximum length"},
	{service.ErrTooFewOptions, http.StatusBadRequest, "TOO_FEW_OPTIONS", "Please provide at least two options"},
	{service.ErrTooManyOptions, http.StatusBadRequest, "TOO_MANY_OPTIONS", "Too many options"},
	{service.ErrOptionTooLong, http.StatusBadRequest, "OPTION_TOO_LONG", "Option exceeds maximum length"},
	{service.ErrDuplicateOption, http.StatusBadRequest, "DUPLICATE_OPTION", "Options must be unique"},
	{service.ErrPollNotFound, http.StatusNotFound, "POLL_NOT_FOUND", "Poll not found"},
	{service.ErrInvalidOption, http.StatusUnprocessableEntity, "INVALID_OPTION", "Option is not part of the poll"},
	{service.ErrVoteNotFound, http.StatusNotFound, "VOTE_NOT_FOUND", "No vote in this poll"},
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, m.message)
			return
		}
	}

	logger.Error("internal_error", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
}
