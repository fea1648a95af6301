package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pollster/pollster/internal/route"
	"github.com/pollster/pollster/internal/sdk"
	"github.com/pollster/pollster/internal/session"
)

// errAlerted marks a command whose failure was already shown to the user.
var errAlerted = errors.New("command failed")

// errNotSignedIn is returned when a command needs a session.
var errNotSignedIn = errors.New("not signed in, run: pollctl login")

// termAlerter prints alerts to stderr.
type termAlerter struct {
	w     io.Writer
	count int
}

func (a *termAlerter) Alert(message string) {
	a.count++
	fmt.Fprintf(a.w, "! %s\n", message)
}

// app wires the SDK, the session store and the navigator for one command.
type app struct {
	cfg    *Config
	logger *slog.Logger
	out    io.Writer

	client *sdk.Client
	store  *session.Store
	nav    *route.Navigator
	alert  *termAlerter
}

func newApp(ctx context.Context, cfg *Config, logger *slog.Logger, out, errOut io.Writer) (*app, error) {
	httpClient := sdk.NewHTTPClient()
	httpClient.Timeout = cfg.Timeout

	client, err := sdk.New(cfg.APIURL,
		sdk.WithHTTPClient(httpClient),
		sdk.WithStorage(sdk.NewFileStorage(cfg.SessionFile)),
		sdk.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	store := session.New(client.Auth, logger)
	store.Start(ctx)
	store.SetForeground(true)

	return &app{
		cfg:    cfg,
		logger: logger,
		out:    out,
		client: client,
		store:  store,
		nav:    route.NewNavigator(store, logger),
		alert:  &termAlerter{w: errOut},
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.client.Close()
}

// open pushes path and reports whether the guard let it through.
func (a *app) open(path string) (route.Location, bool, error) {
	loc, err := a.nav.Push(path)
	if err != nil {
		return route.Location{}, false, err
	}
	want, err := route.Resolve(path)
	if err != nil {
		return route.Location{}, false, err
	}
	return loc, loc.Route.Name == want.Route.Name, nil
}

// failed turns an alerted failure into errAlerted.
func (a *app) failed() error {
	if a.alert.count > 0 {
		return errAlerted
	}
	return nil
}
