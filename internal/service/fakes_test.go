package service

import (
	"context"
	"sync"
	"time"

	"github.com/pollster/pollster/internal/model"
	"github.com/pollster/pollster/internal/repository"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*model.User{}, byEmail: map[string]*model.User{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	cp := *u
	f.byID[u.ID] = &cp
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[string]*model.RefreshSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]*model.RefreshSession{}}
}

func (f *fakeSessions) CreateSession(_ context.Context, s *model.RefreshSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeSessions) GetSessionByTokenHash(_ context.Context, hash string) (*model.RefreshSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byID {
		if s.TokenHash == hash {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (f *fakeSessions) RotateSession(_ context.Context, id, oldHash, newHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok || s.TokenHash != oldHash {
		return repository.ErrSessionNotFound
	}
	s.TokenHash = newHash
	s.ExpiresAt = expiresAt
	return nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSessions) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.byID {
		if s.IsExpired(now) {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: map[string]time.Duration{}}
}

func (f *fakeRevoker) RevokeToken(_ context.Context, id string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ttl > 0 {
		f.revoked[id] = ttl
	}
	return nil
}

func (f *fakeRevoker) IsTokenRevoked(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[id]
	return ok, nil
}

type fakePolls struct {
	mu        sync.Mutex
	polls     map[string]*model.Poll
	order     []string
	votes     map[string]*model.Vote
	createErr error
	inserts   int
}

func newFakePolls() *fakePolls {
	return &fakePolls{polls: map[string]*model.Poll{}, votes: map[string]*model.Vote{}}
}

func (f *fakePolls) CreatePoll(_ context.Context, p *model.Poll) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.inserts++
	cp := *p
	f.polls[p.ID] = &cp
	f.order = append([]string{p.ID}, f.order...)
	return nil
}

func (f *fakePolls) GetPollByID(_ context.Context, id string) (*model.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.polls[id]
	if !ok {
		return nil, repository.ErrPollNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePolls) ListPolls(_ context.Context) ([]*model.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Poll, 0, len(f.order))
	for _, id := range f.order {
		cp := *f.polls[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakePolls) UpsertVote(_ context.Context, v *model.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.polls[v.PollID]; !ok {
		return repository.ErrPollNotFound
	}
	key := v.PollID + "/" + v.UserID
	if prev, ok := f.votes[key]; ok {
		v.CreatedAt = prev.CreatedAt
	} else {
		v.CreatedAt = v.UpdatedAt
	}
	cp := *v
	cp.Option = ""
	f.votes[key] = &cp
	return nil
}

func (f *fakePolls) GetVote(_ context.Context, pollID, userID string) (*model.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.votes[pollID+"/"+userID]
	if !ok {
		return nil, repository.ErrVoteNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakePolls) CountVotes(_ context.Context, pollID string) (map[int]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[int]int64{}
	for _, v := range f.votes {
		if v.PollID == pollID {
			counts[v.OptionIndex]++
		}
	}
	return counts, nil
}
