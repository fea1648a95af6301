package route

import (
	"fmt"
	"log/slog"
)

// SessionSource reports whether a session is held.
type SessionSource interface {
	Authenticated() bool
}

// Navigator keeps the back stack and performs guard redirects.
// It is not safe for concurrent use.
type Navigator struct {
	session SessionSource
	logger  *slog.Logger
	stack   []Location
}

// NewNavigator creates a Navigator with an empty stack.
func NewNavigator(session SessionSource, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		session: session,
		logger:  logger.With("component", "navigator"),
	}
}

// Push navigates to path. When the guard refuses path, the redirect target
// is pushed in its place: the refused screen never enters the stack and the
// entry below it is kept for Back.
func (n *Navigator) Push(path string) (Location, error) {
	loc, err := Resolve(path)
	if err != nil {
		return Location{}, fmt.Errorf("push %q: %w", path, err)
	}

	d := Guard(n.session.Authenticated(), loc.Route.Group)
	if !d.Allow {
		return n.redirect(loc, d.Redirect, n.push)
	}

	n.push(loc)
	return loc, nil
}

// Replace swaps the current entry for path, subject to the guard.
func (n *Navigator) Replace(path string) (Location, error) {
	loc, err := Resolve(path)
	if err != nil {
		return Location{}, fmt.Errorf("replace %q: %w", path, err)
	}

	d := Guard(n.session.Authenticated(), loc.Route.Group)
	if !d.Allow {
		return n.redirect(loc, d.Redirect, n.setTop)
	}

	n.setTop(loc)
	return loc, nil
}

// Back pops the current entry. It reports false when there is nothing to go back to.
func (n *Navigator) Back() (Location, bool) {
	if len(n.stack) < 2 {
		return n.Current(), false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return n.Current(), true
}

// Current returns the top of the stack, or the zero Location.
func (n *Navigator) Current() Location {
	if len(n.stack) == 0 {
		return Location{}
	}
	return n.stack[len(n.stack)-1]
}

// Depth returns the number of stacked entries.
func (n *Navigator) Depth() int {
	return len(n.stack)
}

// Refresh re-runs the guard for the current entry, typically after the
// session changed, and redirects if it no longer applies.
func (n *Navigator) Refresh() Location {
	cur := n.Current()
	if cur.Path == "" {
		return cur
	}
	d := Guard(n.session.Authenticated(), cur.Route.Group)
	if d.Allow {
		return cur
	}
	loc, err := n.redirect(cur, d.Redirect, n.setTop)
	if err != nil {
		return cur
	}
	return loc
}

// redirect resolves target and places it on the stack with place.
func (n *Navigator) redirect(from Location, target string, place func(Location)) (Location, error) {
	loc, err := Resolve(target)
	if err != nil {
		return Location{}, fmt.Errorf("redirect to %q: %w", target, err)
	}
	n.logger.Debug("guard redirect", "from", from.Path, "to", loc.Path, "group", from.Route.Group.String())
	place(loc)
	return loc, nil
}

func (n *Navigator) push(loc Location) {
	n.stack = append(n.stack, loc)
}

func (n *Navigator) setTop(loc Location) {
	if len(n.stack) == 0 {
		n.stack = append(n.stack, loc)
		return
	}
	n.stack[len(n.stack)-1] = loc
}
