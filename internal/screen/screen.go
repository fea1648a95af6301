// Package screen implements the client's screens as state machines.
//
// Screens hold their own state, talk to the SDK through small interfaces and
// report every failure to the user through an Alerter. Nothing a screen does
// returns an error to its caller. Screens are driven from one goroutine.
package screen

import (
	"context"

	"github.com/pollster/pollster/internal/route"
	"github.com/pollster/pollster/internal/sdk"
)

// User-facing messages.
const (
	MsgFetchFailed       = "Error fetching data"
	MsgVoteFailed        = "Failed to submit vote"
	MsgQuestionRequired  = "Please provide the question"
	MsgTooFewOptions     = "Please provide at least two options"
	MsgCreateFailed      = "Failed to create the poll"
	MsgSelectOption      = "Please select an option"
	MsgCredentialsNeeded = "Please fill in both email and password."
	MsgCheckInbox        = "Please check your inbox for email verification!"
)

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(message string)
}

// Navigator moves between screens.
type Navigator interface {
	Push(path string) (route.Location, error)
	Replace(path string) (route.Location, error)
	Back() (route.Location, bool)
}

// SessionSource exposes the current session.
type SessionSource interface {
	Authenticated() bool
	User() *sdk.User
}

// PollLister reads the poll collection.
type PollLister interface {
	List(ctx context.Context) ([]sdk.Poll, error)
}

// PollVoter reads one poll and records votes on it.
type PollVoter interface {
	Get(ctx context.Context, id string) (*sdk.Poll, error)
	Vote(ctx context.Context, id, option string) (*sdk.Vote, error)
	MyVote(ctx context.Context, id string) (*sdk.Vote, error)
	Results(ctx context.Context, id string) (*sdk.PollResults, error)
}

// PollCreator inserts polls.
type PollCreator interface {
	Insert(ctx context.Context, question string, options []string) (*sdk.Poll, error)
}

// Authenticator signs users in and up.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*sdk.Session, error)
	SignUp(ctx context.Context, email, password string) (*sdk.Session, error)
}

// SignOuter ends the session.
type SignOuter interface {
	SignOut(ctx context.Context) error
}
