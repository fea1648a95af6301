package screen

import (
	"context"
	"log/slog"
)

// SignIn is the email and password form.
type SignIn struct {
	auth   Authenticator
	alert  Alerter
	logger *slog.Logger

	email    string
	password string
	busy     bool
}

// NewSignIn creates the sign-in screen.
func NewSignIn(auth Authenticator, alert Alerter, logger *slog.Logger) *SignIn {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignIn{auth: auth, alert: alert, logger: logger.With("screen", "sign-in")}
}

func (s *SignIn) SetEmail(email string)       { s.email = email }
func (s *SignIn) SetPassword(password string) { s.password = password }

// Busy reports whether a request is in flight.
func (s *SignIn) Busy() bool { return s.busy }

// SignIn signs in with the entered credentials. The session change itself
// moves the user on, so success only reports true.
func (s *SignIn) SignIn(ctx context.Context) bool {
	if s.busy {
		return false
	}
	if s.email == "" || s.password == "" {
		s.alert.Alert(MsgCredentialsNeeded)
		return false
	}

	s.busy = true
	defer func() { s.busy = false }()

	if _, err := s.auth.SignInWithPassword(ctx, s.email, s.password); err != nil {
		s.alert.Alert(err.Error())
		return false
	}
	return true
}

// SignUp registers the entered credentials.
func (s *SignIn) SignUp(ctx context.Context) bool {
	if s.busy {
		return false
	}

	s.busy = true
	defer func() { s.busy = false }()

	session, err := s.auth.SignUp(ctx, s.email, s.password)
	if err != nil {
		s.alert.Alert(err.Error())
		return false
	}
	if session == nil {
		s.alert.Alert(MsgCheckInbox)
	}
	return true
}
