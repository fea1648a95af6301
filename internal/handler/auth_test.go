package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pollster/pollster/internal/handler/dto"
	"github.com/pollster/pollster/internal/service"
)

func TestAuthHandler_SignUp(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.SignUp(rec, jsonRequest(t, http.MethodPost, "/auth/v1/signup", `{"email":"alice@example.com","password":"secret123"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if svc.gotEmail != "alice@example.com" {
		t.Errorf("unexpected email passed to service: %q", svc.gotEmail)
	}

	var resp dto.SessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AccessToken != "access" || resp.TokenType != "bearer" || resp.User.ID != "user-1" {
		t.Errorf("unexpected session: %+v", resp)
	}
	if resp.ExpiresAt != 1700003600 {
		t.Errorf("expected unix expires_at, got %d", resp.ExpiresAt)
	}
}

func TestAuthHandler_SignIn(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, discardLogger())

	rec := httptest.NewRecorder()
	h.SignIn(rec, jsonRequest(t, http.MethodPost, "/auth/v1/signin", `{"email":"alice@example.com","password":"secret123"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid email", service.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL"},
		{"weak password", service.ErrWeakPassword, http.StatusBadRequest, "WEAK_PASSWORD"},
		{"email taken", service.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"wrapped", errors.Join(errors.New("ctx"), service.ErrInvalidCredentials), http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{err: tt.err}, discardLogger())

			rec := httptest.NewRecorder()
			h.SignIn(rec, jsonRequest(t, http.MethodPost, "/auth/v1/signin", `{"email":"a@b.c","password":"x"}`))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAuthHandler_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, discardLogger())

	for _, body := range []string{"", "{not json"} {
		rec := httptest.NewRecorder()
		h.SignUp(rec, jsonRequest(t, http.MethodPost, "/auth/v1/signup", body))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected status 400, got %d", body, rec.Code)
		}
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: service.ErrInvalidRefreshToken}, discardLogger())

	rec := httptest.NewRecorder()
	h.Refresh(rec, jsonRequest(t, http.MethodPost, "/auth/v1/refresh", `{"refresh_token":"stale"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestAuthHandler_SignOut(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.SignOut(rec, httptest.NewRequest(http.MethodPost, "/auth/v1/signout", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without auth, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.SignOut(rec, withAuth(httptest.NewRequest(http.MethodPost, "/auth/v1/signout", nil), "user-1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if svc.gotSignOf == nil || svc.gotSignOf.SessionID != "sess-1" {
		t.Errorf("expected auth context passed to service, got %+v", svc.gotSignOf)
	}
}

func TestAuthHandler_User(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, discardLogger())

	rec := httptest.NewRecorder()
	h.User(rec, withAuth(httptest.NewRequest(http.MethodGet, "/auth/v1/user", nil), "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.UserResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", resp)
	}
}
