// Package model defines domain entities for the application.
package model

import "time"

// User represents an account that can sign in, create polls and vote.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}
