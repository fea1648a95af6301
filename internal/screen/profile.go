package screen

import (
	"context"
	"log/slog"

	"github.com/pollster/pollster/internal/route"
)

// Profile shows the signed-in user and signs them out.
type Profile struct {
	auth    SignOuter
	session SessionSource
	nav     Navigator
	alert   Alerter
	logger  *slog.Logger
}

// NewProfile creates the profile screen.
func NewProfile(auth SignOuter, session SessionSource, nav Navigator, alert Alerter, logger *slog.Logger) *Profile {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profile{
		auth:    auth,
		session: session,
		nav:     nav,
		alert:   alert,
		logger:  logger.With("screen", "profile"),
	}
}

// UserID returns the signed-in user's id, or "".
func (p *Profile) UserID() string {
	if u := p.session.User(); u != nil {
		return u.ID
	}
	return ""
}

// Email returns the signed-in user's email, or "".
func (p *Profile) Email() string {
	if u := p.session.User(); u != nil {
		return u.Email
	}
	return ""
}

// SignOut ends the session and goes to sign-in.
func (p *Profile) SignOut(ctx context.Context) {
	if err := p.auth.SignOut(ctx); err != nil {
		p.alert.Alert(err.Error())
	}
	if _, err := p.nav.Replace(route.SignIn); err != nil {
		p.logger.Warn("navigate to sign-in failed", "error", err)
	}
}
