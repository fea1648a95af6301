// Package route names the client's screens and decides, as a pure function of
// session presence, whether a screen may be shown.
package route

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Paths of the named routes.
const (
	SignIn   = "/login"
	Profile  = "/profile"
	PollList = "/"
	PollNew  = "/polls/new"

	pollDetailPattern = "/polls/{id}"
)

// Group says which session state a route requires.
type Group int

const (
	// Public routes are reachable with or without a session.
	Public Group = iota
	// RequiresSession routes redirect to SignIn when signed out.
	RequiresSession
	// RequiresNoSession routes redirect to Profile when signed in.
	RequiresNoSession
)

func (g Group) String() string {
	switch g {
	case Public:
		return "public"
	case RequiresSession:
		return "requires-session"
	case RequiresNoSession:
		return "requires-no-session"
	default:
		return "unknown"
	}
}

// Name identifies a screen.
type Name string

const (
	NameSignIn     Name = "sign-in"
	NameProfile    Name = "profile"
	NamePollList   Name = "poll-list"
	NamePollDetail Name = "poll-detail"
	NamePollNew    Name = "poll-new"
)

// Route is a screen reachable by path.
type Route struct {
	Name    Name
	Pattern string
	Group   Group
}

// Routes is the navigation table.
var Routes = []Route{
	{Name: NameSignIn, Pattern: SignIn, Group: RequiresNoSession},
	{Name: NameProfile, Pattern: Profile, Group: RequiresSession},
	{Name: NamePollList, Pattern: PollList, Group: Public},
	{Name: NamePollNew, Pattern: PollNew, Group: RequiresSession},
	{Name: NamePollDetail, Pattern: pollDetailPattern, Group: Public},
}

// ErrUnknownRoute is returned for a path no route matches.
var ErrUnknownRoute = errors.New("unknown route")

// PollDetail returns the path of the detail screen of poll id.
func PollDetail(id string) string {
	return "/polls/" + url.PathEscape(id)
}

// Location is a resolved path.
type Location struct {
	Path   string
	Route  Route
	Params map[string]string
}

// Param returns a path parameter, or "".
func (l Location) Param(key string) string {
	return l.Params[key]
}

var table = newTable()

func newTable() *chi.Mux {
	mux := chi.NewRouter()
	for _, r := range Routes {
		mux.Get(r.Pattern, func(http.ResponseWriter, *http.Request) {})
	}
	return mux
}

// Resolve matches path against the navigation table.
func Resolve(path string) (Location, error) {
	if path == "" {
		path = PollList
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	rctx := chi.NewRouteContext()
	if !table.Match(rctx, http.MethodGet, path) {
		return Location{}, ErrUnknownRoute
	}

	pattern := rctx.RoutePattern()
	for _, r := range Routes {
		if r.Pattern != pattern {
			continue
		}
		params := make(map[string]string, len(rctx.URLParams.Keys))
		for i, key := range rctx.URLParams.Keys {
			value, err := url.PathUnescape(rctx.URLParams.Values[i])
			if err != nil {
				return Location{}, ErrUnknownRoute
			}
			params[key] = value
		}
		return Location{Path: path, Route: r, Params: params}, nil
	}
	return Location{}, ErrUnknownRoute
}
