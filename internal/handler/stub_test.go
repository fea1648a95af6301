package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pollster/pollster/internal/auth"
	"github.com/pollster/pollster/internal/model"
	"github.com/pollster/pollster/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser() *model.User {
	return &model.User{ID: "user-1", Email: "alice@example.com", CreatedAt: time.Unix(1700000000, 0).UTC()}
}

func testSession() *model.Session {
	return &model.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    model.TokenTypeBearer,
		ExpiresIn:    3600,
		ExpiresAt:    time.Unix(1700003600, 0).UTC(),
		User:         *testUser(),
	}
}

type stubAuthService struct {
	err       error
	gotEmail  string
	gotSignOf *model.AuthContext
}

func (s *stubAuthService) SignUp(_ context.Context, email, _ string) (*model.Session, error) {
	s.gotEmail = email
	if s.err != nil {
		return nil, s.err
	}
	return testSession(), nil
}

func (s *stubAuthService) SignIn(_ context.Context, email, _ string) (*model.Session, error) {
	s.gotEmail = email
	if s.err != nil {
		return nil, s.err
	}
	return testSession(), nil
}

func (s *stubAuthService) Refresh(context.Context, string) (*model.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return testSession(), nil
}

func (s *stubAuthService) SignOut(_ context.Context, ac *model.AuthContext) error {
	s.gotSignOf = ac
	return s.err
}

func (s *stubAuthService) GetUser(context.Context, string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return testUser(), nil
}

type stubPollService struct {
	polls     []*model.Poll
	err       error
	gotInput  service.CreatePollInput
	gotOption string
	gotUser   string
}

func (s *stubPollService) ListPolls(context.Context) ([]*model.Poll, error) {
	return s.polls, s.err
}

func (s *stubPollService) GetPoll(_ context.Context, id string) (*model.Poll, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.polls {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, service.ErrPollNotFound
}

func (s *stubPollService) CreatePoll(_ context.Context, in service.CreatePollInput) (*model.Poll, error) {
	s.gotInput = in
	if s.err != nil {
		return nil, s.err
	}
	return &model.Poll{ID: "poll-new", Question: in.Question, Options: in.Options, CreatedBy: in.CreatedBy}, nil
}

func (s *stubPollService) Vote(_ context.Context, pollID, userID, option string) (*model.Vote, error) {
	s.gotOption = option
	s.gotUser = userID
	if s.err != nil {
		return nil, s.err
	}
	return &model.Vote{PollID: pollID, UserID: userID, Option: option}, nil
}

func (s *stubPollService) MyVote(_ context.Context, pollID, userID string) (*model.Vote, error) {
	s.gotUser = userID
	if s.err != nil {
		return nil, s.err
	}
	return &model.Vote{PollID: pollID, UserID: userID, Option: "yes"}, nil
}

func (s *stubPollService) Results(_ context.Context, pollID string) (*model.PollResults, error) {
	if s.err != nil {
		return nil, s.err
	}
	poll := &model.Poll{ID: pollID, Options: []string{"yes", "no"}}
	return model.NewPollResults(poll, map[int]int64{0: 2, 1: 1}), nil
}

func jsonRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withAuth(req *http.Request, userID string) *http.Request {
	ac := &model.AuthContext{UserID: userID, SessionID: "sess-1", TokenID: "jti-1"}
	return req.WithContext(auth.ContextWithAuth(req.Context(), ac))
}
