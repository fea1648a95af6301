// Package session holds the process-wide view of who is signed in.
//
// A Store mirrors the SDK session: it fetches it once on Start, then follows
// auth-state events until Close. The last event always wins.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pollster/pollster/internal/sdk"
)

// AuthClient is the slice of the SDK auth API the Store depends on.
type AuthClient interface {
	GetSession(ctx context.Context) (*sdk.Session, error)
	OnAuthStateChange(fn sdk.AuthStateListener) sdk.Subscription
	StartAutoRefresh()
	StopAutoRefresh()
}

// Listener is called with the new session, nil after sign-out.
type Listener func(session *sdk.Session)

// Store is a read-only, concurrency-safe holder of the current session.
type Store struct {
	client AuthClient
	logger *slog.Logger

	mu         sync.RWMutex
	session    *sdk.Session
	events     uint64
	sub        sdk.Subscription
	started    bool
	closed     bool
	foreground bool
	listeners  map[int]Listener
	nextID     int
}

// New creates a Store over client.
func New(client AuthClient, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client:    client,
		logger:    logger.With("component", "session"),
		listeners: make(map[int]Listener),
	}
}

// Start subscribes to auth-state events and fetches the current session once.
// A failed fetch is logged and leaves the session nil. Start runs once.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	sub := s.client.OnAuthStateChange(s.handleEvent)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	s.sub = sub
	seen := s.events
	s.mu.Unlock()

	session, err := s.client.GetSession(ctx)
	if err != nil {
		s.logger.Debug("initial session fetch failed", "error", err)
		return
	}

	s.mu.Lock()
	// An event that arrived during the fetch is newer than the fetch result.
	// The initial-session event the subscription emits does not count.
	if s.events > seen {
		s.mu.Unlock()
		return
	}
	s.session = session
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, session)
}

func (s *Store) handleEvent(event sdk.AuthChangeEvent, session *sdk.Session) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if event != sdk.EventInitialSession {
		s.events++
	}
	s.session = session
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Debug("auth state changed", "event", string(event), "signed_in", session != nil)
	notify(listeners, session)
}

// Session returns the current session, or nil.
func (s *Store) Session() *sdk.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// User returns the signed-in user, or nil.
func (s *Store) User() *sdk.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	user := s.session.User
	return &user
}

// Authenticated reports whether a session is held.
func (s *Store) Authenticated() bool {
	return s.Session() != nil
}

// Subscribe registers fn for session changes and returns its unsubscribe func.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SetForeground starts the SDK auto-refresh timer while the process is in the
// foreground and stops it in the background.
func (s *Store) SetForeground(active bool) {
	s.mu.Lock()
	if s.closed || s.foreground == active {
		s.mu.Unlock()
		return
	}
	s.foreground = active
	s.mu.Unlock()

	if active {
		s.client.StartAutoRefresh()
	} else {
		s.client.StopAutoRefresh()
	}
}

// Close tears the Store down: it unsubscribes from the SDK, stops
// auto-refresh and drops every listener. The last session stays readable.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sub := s.sub
	s.sub = nil
	foreground := s.foreground
	s.foreground = false
	s.listeners = make(map[int]Listener)
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	if foreground {
		s.client.StopAutoRefresh()
	}
}

// snapshotListeners must be called with s.mu held.
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []Listener, session *sdk.Session) {
	for _, fn := range listeners {
		fn(session)
	}
}
