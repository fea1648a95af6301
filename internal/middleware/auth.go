package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pollster/pollster/internal/auth"
	"github.com/pollster/pollster/internal/model"
	"github.com/pollster/pollster/internal/service"
)

// Authenticator validates bearer access tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.AuthContext, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger        *slog.Logger
	Authenticator Authenticator
}

// Auth returns a middleware that requires a valid bearer access token.
// On success the auth context is injected into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w, "Missing bearer token")
				return
			}

			ac, err := cfg.Authenticator.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					logAuthFailure(cfg.Logger, r, "expired_token")
					writeAuthError(w, "Access token expired")
				case errors.Is(err, auth.ErrInvalidToken):
					logAuthFailure(cfg.Logger, r, "invalid_token")
					writeAuthError(w, "Invalid access token")
				case errors.Is(err, service.ErrTokenRevoked):
					logAuthFailure(cfg.Logger, r, "revoked_token")
					writeAuthError(w, "Session has ended")
				default:
					cfg.Logger.Error("authentication error",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				}
				return
			}

			ctx := auth.ContextWithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", getClientIP(r)),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="pollster"`)
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
