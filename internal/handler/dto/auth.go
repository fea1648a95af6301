package dto

import (
	"time"

	"github.com/pollster/pollster/internal/model"
)

// CredentialsRequest is the body of sign-up and sign-in requests.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse represents an issued session.
type SessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"` // unix seconds
	User         UserResponse `json:"user"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// ToSessionResponse converts a Session model to SessionResponse DTO.
func ToSessionResponse(s *model.Session) *SessionResponse {
	return &SessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		ExpiresAt:    s.ExpiresAt.Unix(),
		User:         *ToUserResponse(&s.User),
	}
}
