package sdk

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pollster/pollster/internal/handler/dto"
)

// fakeAPI is an in-process stand-in for the Pollster API.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu            sync.Mutex
	expiresAt     time.Time
	refreshStatus int
	signOutStatus int
	polls         []dto.PollResponse
	myVote        *dto.VoteResponse
	lastAuth      map[string]string
	inserted      []dto.CreatePollRequest
	refreshes     int

	// When set, refresh signals refreshStarted and then waits for
	// refreshRelease before answering.
	refreshStarted chan struct{}
	refreshRelease chan struct{}

	seenRefreshTokens map[string]bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		t:             t,
		expiresAt:     time.Now().Add(time.Hour),
		refreshStatus: http.StatusOK,
		signOutStatus: http.StatusNoContent,
		polls:         []dto.PollResponse{},
		lastAuth:      make(map[string]string),

		seenRefreshTokens: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/signin", f.signIn)
	mux.HandleFunc("POST /auth/v1/signup", f.signIn)
	mux.HandleFunc("POST /auth/v1/refresh", f.refresh)
	mux.HandleFunc("POST /auth/v1/signout", f.signOut)
	mux.HandleFunc("GET /api/v1/polls", f.listPolls)
	mux.HandleFunc("POST /api/v1/polls", f.createPoll)
	mux.HandleFunc("GET /api/v1/polls/{id}", f.getPoll)
	mux.HandleFunc("GET /api/v1/polls/{id}/votes/me", f.getMyVote)
	mux.HandleFunc("POST /api/v1/polls/{id}/votes", f.vote)
	mux.HandleFunc("GET /api/v1/polls/{id}/results", f.results)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	c, err := New(f.srv.URL, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAuth[r.Method+" "+r.URL.Path] = r.Header.Get("Authorization")
}

func (f *fakeAPI) authHeader(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth[key]
}

func (f *fakeAPI) insertedRequests() []dto.CreatePollRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.CreatePollRequest(nil), f.inserted...)
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) session(token string) dto.SessionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return dto.SessionResponse{
		AccessToken:  token,
		RefreshToken: "refresh-" + token,
		TokenType:    "bearer",
		ExpiresIn:    3600,
		ExpiresAt:    f.expiresAt.Unix(),
		User:         dto.UserResponse{ID: "user-1", Email: "alice@example.com"},
	}
}

func (f *fakeAPI) signIn(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Password != "correct-horse" {
		writeTestJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid login credentials", Code: "INVALID_CREDENTIALS"})
		return
	}
	writeTestJSON(w, http.StatusOK, f.session("access-1"))
}

func (f *fakeAPI) refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.seenRefreshTokens[req.RefreshToken] = true
	f.refreshes++
	n := f.refreshes
	status := f.refreshStatus
	started, release := f.refreshStarted, f.refreshRelease
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}

	if status != http.StatusOK {
		writeTestJSON(w, status, dto.ErrorResponse{Error: "Invalid refresh token", Code: "INVALID_REFRESH_TOKEN"})
		return
	}
	writeTestJSON(w, http.StatusOK, f.session("access-refreshed-"+strings.Repeat("x", n)))
}

func (f *fakeAPI) signOut(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	f.mu.Lock()
	status := f.signOutStatus
	f.mu.Unlock()
	if status != http.StatusNoContent {
		writeTestJSON(w, status, dto.ErrorResponse{Error: "boom", Code: "INTERNAL_ERROR"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) listPolls(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeTestJSON(w, http.StatusOK, dto.PollListResponse{Data: f.polls})
}

func (f *fakeAPI) createPoll(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	var req dto.CreatePollRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.inserted = append(f.inserted, req)
	f.mu.Unlock()

	writeTestJSON(w, http.StatusCreated, dto.PollResponse{ID: "p-new", Question: req.Question, Options: req.Options})
}

func (f *fakeAPI) getPoll(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.polls {
		if p.ID == id {
			writeTestJSON(w, http.StatusOK, p)
			return
		}
	}
	writeTestJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Poll not found", Code: "POLL_NOT_FOUND"})
}

func (f *fakeAPI) getMyVote(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.myVote == nil {
		writeTestJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "No vote in this poll", Code: "VOTE_NOT_FOUND"})
		return
	}
	writeTestJSON(w, http.StatusOK, f.myVote)
}

func (f *fakeAPI) vote(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	var req dto.VoteRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	writeTestJSON(w, http.StatusOK, dto.VoteResponse{PollID: r.PathValue("id"), Option: req.Option})
}

func (f *fakeAPI) results(w http.ResponseWriter, r *http.Request) {
	writeTestJSON(w, http.StatusOK, dto.ResultsResponse{
		PollID: r.PathValue("id"),
		Total:  3,
		Counts: []dto.OptionCountResponse{{Option: "A", Votes: 2}, {Option: "B", Votes: 1}},
	})
}

// eventLog records auth-state events.
type eventLog struct {
	mu     sync.Mutex
	events []AuthChangeEvent
	last   *Session
}

func (l *eventLog) listen(event AuthChangeEvent, s *Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	l.last = s
}

func (l *eventLog) snapshot() ([]AuthChangeEvent, *Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuthChangeEvent(nil), l.events...), l.last
}
