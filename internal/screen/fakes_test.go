package screen

import (
	"context"
	"io"
	"log/slog"

	"github.com/pollster/pollster/internal/route"
	"github.com/pollster/pollster/internal/sdk"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAlerter struct {
	messages []string
}

func (f *fakeAlerter) Alert(message string) {
	f.messages = append(f.messages, message)
}

type fakeNav struct {
	pushed   []string
	replaced []string
	backs    int
}

func (f *fakeNav) Push(path string) (route.Location, error) {
	f.pushed = append(f.pushed, path)
	return route.Resolve(path)
}

func (f *fakeNav) Replace(path string) (route.Location, error) {
	f.replaced = append(f.replaced, path)
	return route.Resolve(path)
}

func (f *fakeNav) Back() (route.Location, bool) {
	f.backs++
	return route.Location{}, true
}

type fakeSession struct {
	user *sdk.User
}

func (f *fakeSession) Authenticated() bool { return f.user != nil }
func (f *fakeSession) User() *sdk.User     { return f.user }

func signedIn() *fakeSession {
	return &fakeSession{user: &sdk.User{ID: "user-1", Email: "alice@example.com"}}
}

type insertCall struct {
	question string
	options  []string
}

type fakePolls struct {
	list      []sdk.Poll
	listErr   error
	poll      *sdk.Poll
	getErr    error
	myVote    *sdk.Vote
	myVoteErr error
	voteErr   error
	votes     []string
	results   *sdk.PollResults
	resultErr error
	insertErr error
	inserts   []insertCall
	listCalls int
}

func (f *fakePolls) List(context.Context) ([]sdk.Poll, error) {
	f.listCalls++
	return f.list, f.listErr
}

func (f *fakePolls) Get(context.Context, string) (*sdk.Poll, error) {
	return f.poll, f.getErr
}

func (f *fakePolls) Vote(_ context.Context, id, option string) (*sdk.Vote, error) {
	f.votes = append(f.votes, option)
	if f.voteErr != nil {
		return nil, f.voteErr
	}
	return &sdk.Vote{PollID: id, Option: option}, nil
}

func (f *fakePolls) MyVote(context.Context, string) (*sdk.Vote, error) {
	return f.myVote, f.myVoteErr
}

func (f *fakePolls) Results(context.Context, string) (*sdk.PollResults, error) {
	return f.results, f.resultErr
}

func (f *fakePolls) Insert(_ context.Context, question string, options []string) (*sdk.Poll, error) {
	f.inserts = append(f.inserts, insertCall{question: question, options: options})
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return &sdk.Poll{ID: "p-new", Question: question, Options: options}, nil
}

type fakeAuth struct {
	session    *sdk.Session
	err        error
	signIns    int
	signUps    int
	signOuts   int
	signOutErr error
}

func (f *fakeAuth) SignInWithPassword(context.Context, string, string) (*sdk.Session, error) {
	f.signIns++
	return f.session, f.err
}

func (f *fakeAuth) SignUp(context.Context, string, string) (*sdk.Session, error) {
	f.signUps++
	return f.session, f.err
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.signOuts++
	return f.signOutErr
}
