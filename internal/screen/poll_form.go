package screen

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pollster/pollster/internal/route"
	"github.com/pollster/pollster/internal/sdk"
)

// initialOptionSlots is how many empty option inputs a new form starts with.
const initialOptionSlots = 2

// PollForm collects a question and its options and creates the poll.
type PollForm struct {
	polls   PollCreator
	session SessionSource
	nav     Navigator
	alert   Alerter
	logger  *slog.Logger

	question string
	options  []string
	err      string
	busy     bool
	created  *sdk.Poll
}

// NewPollForm creates an empty poll form.
func NewPollForm(polls PollCreator, session SessionSource, nav Navigator, alert Alerter, logger *slog.Logger) *PollForm {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollForm{
		polls:   polls,
		session: session,
		nav:     nav,
		alert:   alert,
		logger:  logger.With("screen", "poll-form"),
		options: make([]string, initialOptionSlots),
	}
}

// Mount shows the form. Without a session it redirects to sign-in and
// reports false.
func (f *PollForm) Mount() bool {
	if f.session.Authenticated() {
		return true
	}
	if _, err := f.nav.Replace(route.SignIn); err != nil {
		f.logger.Warn("redirect to sign-in failed", "error", err)
	}
	return false
}

// SetQuestion sets the question text.
func (f *PollForm) SetQuestion(q string) {
	f.question = q
}

// AddOption appends one empty option slot.
func (f *PollForm) AddOption() {
	f.options = append(f.options, "")
}

// RemoveOption drops the slot at i. Out-of-range indexes are ignored.
func (f *PollForm) RemoveOption(i int) {
	if i < 0 || i >= len(f.options) {
		return
	}
	updated := make([]string, 0, len(f.options)-1)
	for j, o := range f.options {
		if j != i {
			updated = append(updated, o)
		}
	}
	f.options = updated
}

// SetOption replaces the text of slot i. Out-of-range indexes are ignored.
func (f *PollForm) SetOption(i int, text string) {
	if i < 0 || i >= len(f.options) {
		return
	}
	updated := make([]string, len(f.options))
	copy(updated, f.options)
	updated[i] = text
	f.options = updated
}

// Submit validates the form and creates the poll. On success it navigates
// back. Validation failures set the inline error and keep all input.
func (f *PollForm) Submit(ctx context.Context) bool {
	if f.busy {
		return false
	}

	f.err = ""
	if strings.TrimSpace(f.question) == "" {
		f.err = MsgQuestionRequired
		return false
	}

	valid := filledOptions(f.options)
	if len(valid) < 2 {
		f.err = MsgTooFewOptions
		return false
	}

	f.busy = true
	defer func() { f.busy = false }()

	poll, err := f.polls.Insert(ctx, f.question, valid)
	if err != nil {
		f.logger.Debug("create poll failed", "error", err)
		f.alert.Alert(MsgCreateFailed)
		return false
	}

	f.logger.Debug("poll created", "poll_id", poll.ID)
	f.created = poll
	f.nav.Back()
	return true
}

func filledOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if strings.TrimSpace(o) != "" {
			out = append(out, o)
		}
	}
	return out
}

// Question returns the question text.
func (f *PollForm) Question() string { return f.question }

// Options returns a copy of the option slots.
func (f *PollForm) Options() []string {
	out := make([]string, len(f.options))
	copy(out, f.options)
	return out
}

// Created returns the poll made by the last successful Submit, or nil.
func (f *PollForm) Created() *sdk.Poll { return f.created }

// Error returns the inline error text.
func (f *PollForm) Error() string { return f.err }

// Busy reports whether a submission is in flight.
func (f *PollForm) Busy() bool { return f.busy }
