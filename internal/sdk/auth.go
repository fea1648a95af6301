package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pollster/pollster/internal/handler/dto"
)

// DefaultAutoRefreshInterval is how often the auto-refresh timer checks the session.
const DefaultAutoRefreshInterval = 30 * time.Second

// autoRefreshTicks is how many ticks ahead of expiry the timer refreshes.
const autoRefreshTicks = 3

// AuthChangeEvent names a change of the held session.
type AuthChangeEvent string

const (
	EventInitialSession AuthChangeEvent = "INITIAL_SESSION"
	EventSignedIn       AuthChangeEvent = "SIGNED_IN"
	EventSignedOut      AuthChangeEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthChangeEvent = "TOKEN_REFRESHED"
)

// AuthStateListener receives every session change. session is nil after sign-out.
type AuthStateListener func(event AuthChangeEvent, session *Session)

// Subscription is a registered AuthStateListener.
type Subscription interface {
	Unsubscribe()
}

// Auth manages the signed-in session.
type Auth struct {
	c               *Client
	storage         Storage
	now             func() time.Time
	refreshInterval time.Duration

	mu         sync.Mutex
	session    *Session
	generation uint64 // bumped on every session change
	loaded     bool
	listeners  map[uint64]AuthStateListener
	nextID     uint64

	// refreshing serializes token refreshes so one refresh token is never
	// redeemed twice.
	refreshing sync.Mutex

	refreshMu     sync.Mutex
	refreshCancel context.CancelFunc
	refreshDone   chan struct{}
}

func newAuth(c *Client, storage Storage, now func() time.Time, interval time.Duration) *Auth {
	return &Auth{
		c:               c,
		storage:         storage,
		now:             now,
		refreshInterval: interval,
		listeners:       make(map[uint64]AuthStateListener),
	}
}

// SignInWithPassword signs in and stores the new session.
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var resp dto.SessionResponse
	req := dto.CredentialsRequest{Email: email, Password: password}
	if err := a.c.do(ctx, http.MethodPost, "/auth/v1/signin", "", req, &resp); err != nil {
		return nil, err
	}

	session := sessionFromDTO(&resp)
	a.setSession(session, EventSignedIn)
	return session, nil
}

// SignUp registers an account. A nil session with no error means the account
// must be confirmed before it can sign in.
func (a *Auth) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var resp dto.SessionResponse
	req := dto.CredentialsRequest{Email: email, Password: password}
	if err := a.c.do(ctx, http.MethodPost, "/auth/v1/signup", "", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, nil
	}

	session := sessionFromDTO(&resp)
	a.setSession(session, EventSignedIn)
	return session, nil
}

// SignOut ends the session on the server and forgets it locally.
// The local session is cleared even when the server call fails.
func (a *Auth) SignOut(ctx context.Context) error {
	current := a.current()
	if current == nil {
		return nil
	}

	err := a.c.do(ctx, http.MethodPost, "/auth/v1/signout", current.AccessToken, nil, nil)
	a.setSession(nil, EventSignedOut)

	if err != nil && !IsUnauthorized(err) {
		return err
	}
	return nil
}

// GetSession returns the held session, refreshing it first when the access
// token has expired. It returns nil with no error when signed out.
func (a *Auth) GetSession(ctx context.Context) (*Session, error) {
	current := a.current()
	if current == nil || !current.Expired(a.now()) {
		return current, nil
	}
	if current.RefreshToken == "" {
		a.setSession(nil, EventSignedOut)
		return nil, nil
	}
	session, err := a.RefreshSession(ctx)
	if errors.Is(err, ErrSessionChanged) {
		return a.current(), nil
	}
	return session, err
}

// RefreshSession exchanges the refresh token for a new session.
// A rejected refresh token signs the user out.
func (a *Auth) RefreshSession(ctx context.Context) (*Session, error) {
	a.refreshing.Lock()
	defer a.refreshing.Unlock()

	current, gen := a.snapshot()
	if current == nil || current.RefreshToken == "" {
		return nil, ErrNotSignedIn
	}

	var resp dto.SessionResponse
	req := dto.RefreshRequest{RefreshToken: current.RefreshToken}
	if err := a.c.do(ctx, http.MethodPost, "/auth/v1/refresh", "", req, &resp); err != nil {
		if isRejection(err) {
			a.replaceSession(gen, nil, EventSignedOut)
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	// A sign-out or sign-in while the request was in flight wins.
	session := sessionFromDTO(&resp)
	if !a.replaceSession(gen, session, EventTokenRefreshed) {
		return nil, ErrSessionChanged
	}
	return session, nil
}

// OnAuthStateChange registers fn for session changes. fn is called once
// right away with EventInitialSession and the session currently held.
func (a *Auth) OnAuthStateChange(fn AuthStateListener) Subscription {
	current := a.current()

	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.listeners[id] = fn
	a.mu.Unlock()

	fn(EventInitialSession, current)

	return &subscription{auth: a, id: id}
}

type subscription struct {
	auth *Auth
	id   uint64
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.auth.mu.Lock()
		delete(s.auth.listeners, s.id)
		s.auth.mu.Unlock()
	})
}

// StartAutoRefresh starts a timer that refreshes the session shortly before
// it expires. Calling it while running is a no-op.
func (a *Auth) StartAutoRefresh() {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	if a.refreshCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.refreshCancel = cancel
	a.refreshDone = done

	go func() {
		defer close(done)

		ticker := time.NewTicker(a.refreshInterval)
		defer ticker.Stop()

		a.autoRefreshTick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.autoRefreshTick(ctx)
			}
		}
	}()
}

// StopAutoRefresh stops the timer and waits for an in-flight refresh to end.
func (a *Auth) StopAutoRefresh() {
	a.refreshMu.Lock()
	cancel, done := a.refreshCancel, a.refreshDone
	a.refreshCancel, a.refreshDone = nil, nil
	a.refreshMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// AutoRefreshing reports whether the auto-refresh timer is running.
func (a *Auth) AutoRefreshing() bool {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()
	return a.refreshCancel != nil
}

func (a *Auth) autoRefreshTick(ctx context.Context) {
	current := a.current()
	if current == nil || current.RefreshToken == "" {
		return
	}
	if current.ExpiresAt.Sub(a.now()) > autoRefreshTicks*a.refreshInterval {
		return
	}

	if _, err := a.RefreshSession(ctx); err != nil && ctx.Err() == nil && !errors.Is(err, ErrSessionChanged) {
		a.c.logger.Warn("auto refresh failed", "error", err)
	}
}

// accessToken returns a valid access token for authenticated calls.
func (a *Auth) accessToken(ctx context.Context) (string, error) {
	session, err := a.GetSession(ctx)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrNotSignedIn
	}
	return session.AccessToken, nil
}

// current returns the held session, loading it from storage on first use.
func (a *Auth) current() *Session {
	session, _ := a.snapshot()
	return session
}

// snapshot returns the held session and its generation.
func (a *Auth) snapshot() (*Session, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded {
		a.loaded = true
		session, err := a.storage.Load()
		if err != nil {
			a.c.logger.Warn("failed to load stored session", "error", err)
		}
		a.session = session
	}
	return a.session, a.generation
}

// setSession replaces the held session, persists it and notifies listeners.
// Listeners run outside the lock so they may call back into Auth.
func (a *Auth) setSession(session *Session, event AuthChangeEvent) {
	a.mu.Lock()
	a.commit(session, event)
}

// replaceSession is setSession for a session derived from generation gen.
// It reports false and changes nothing when the session moved on since.
func (a *Auth) replaceSession(gen uint64, session *Session, event AuthChangeEvent) bool {
	a.mu.Lock()
	if a.generation != gen {
		a.mu.Unlock()
		return false
	}
	a.commit(session, event)
	return true
}

// commit installs and persists session, then releases a.mu, which the
// caller holds. Storage writes happen in generation order.
func (a *Auth) commit(session *Session, event AuthChangeEvent) {
	a.generation++
	a.session = session
	a.loaded = true

	var err error
	if session == nil {
		err = a.storage.Clear()
	} else {
		err = a.storage.Save(session)
	}
	if err != nil {
		a.c.logger.Warn("failed to persist session", "event", string(event), "error", err)
	}

	listeners := make([]AuthStateListener, 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(event, session)
	}
}
