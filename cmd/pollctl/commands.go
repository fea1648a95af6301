package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pollster/pollster/internal/route"
	"github.com/pollster/pollster/internal/screen"
)

type credentials struct {
	email    string
	password string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "account password (read from stdin when omitted)")
}

// resolve fills in a missing password from the first line of in.
func (c *credentials) resolve(in io.Reader) {
	if c.password != "" {
		return
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	c.password = strings.TrimRight(line, "\r\n")
}

func newLoginCmd(get func() *app) *cobra.Command {
	return newCredentialsCmd(get, "login", "Sign in with email and password", "Signed in as %s\n",
		func(ctx context.Context, s *screen.SignIn) bool { return s.SignIn(ctx) })
}

func newSignupCmd(get func() *app) *cobra.Command {
	return newCredentialsCmd(get, "signup", "Create an account", "Signed up as %s\n",
		func(ctx context.Context, s *screen.SignIn) bool { return s.SignUp(ctx) })
}

// newCredentialsCmd opens the sign-in screen and submits it with submit.
// A pending email confirmation leaves the user signed out and prints nothing.
func newCredentialsCmd(get func() *app, use, short, done string, submit func(context.Context, *screen.SignIn) bool) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			_, ok, err := a.open(route.SignIn)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(a.out, "Already signed in as %s\n", a.store.User().Email)
				return nil
			}

			creds.resolve(cmd.InOrStdin())
			s := screen.NewSignIn(a.client.Auth, a.alert, a.logger)
			s.SetEmail(creds.email)
			s.SetPassword(creds.password)
			if !submit(cmd.Context(), s) {
				return errAlerted
			}

			if a.nav.Refresh().Route.Name == route.NameProfile {
				fmt.Fprintf(a.out, done, a.store.User().Email)
			}
			return nil
		},
	}
	creds.bind(cmd)
	return cmd
}

func newLogoutCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			_, ok, err := a.open(route.Profile)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "Not signed in")
				return nil
			}

			screen.NewProfile(a.client.Auth, a.store, a.nav, a.alert, a.logger).SignOut(cmd.Context())
			fmt.Fprintln(a.out, "Signed out")
			return a.failed()
		},
	}
}

func newProfileCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			_, ok, err := a.open(route.Profile)
			if err != nil {
				return err
			}
			if !ok {
				return errNotSignedIn
			}

			p := screen.NewProfile(a.client.Auth, a.store, a.nav, a.alert, a.logger)
			fmt.Fprintf(a.out, "User id: %s\nEmail:   %s\n", p.UserID(), p.Email())
			return nil
		},
	}
}

func newPollsCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "polls",
		Short: "List all polls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if _, _, err := a.open(route.PollList); err != nil {
				return err
			}

			list := screen.NewPollList(a.client.Polls, a.alert, a.logger)
			list.Load(cmd.Context())
			if err := a.failed(); err != nil {
				return err
			}

			if len(list.Polls()) == 0 {
				fmt.Fprintln(a.out, "No polls yet")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tQUESTION\tOPTIONS")
			for _, p := range list.Polls() {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", p.ID, p.Question, len(p.Options))
			}
			return tw.Flush()
		},
	}
}

func newPollCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Show, create and vote on polls",
	}
	cmd.AddCommand(
		newPollShowCmd(get),
		newPollCreateCmd(get),
		newPollVoteCmd(get),
		newPollResultsCmd(get),
	)
	return cmd
}

// openDetail navigates to a poll and loads it.
func openDetail(ctx context.Context, a *app, id string) (*screen.PollDetail, error) {
	if _, _, err := a.open(route.PollDetail(id)); err != nil {
		return nil, err
	}
	d := screen.NewPollDetail(id, a.client.Polls, a.store, a.nav, a.alert, a.logger)
	d.Load(ctx)
	if d.Poll() == nil {
		return nil, errAlerted
	}
	return d, nil
}

func newPollShowCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a poll and your vote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			d, err := openDetail(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			p := d.Poll()
			fmt.Fprintln(a.out, p.Question)
			for _, o := range p.Options {
				mark := " "
				if o == d.Selected() {
					mark = "*"
				}
				fmt.Fprintf(a.out, "  [%s] %s\n", mark, o)
			}
			return nil
		},
	}
}

func newPollCreateCmd(get func() *app) *cobra.Command {
	var (
		question string
		options  []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a poll",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if _, _, err := a.open(route.PollList); err != nil {
				return err
			}
			_, ok, err := a.open(route.PollNew)
			if err != nil {
				return err
			}
			if !ok {
				return errNotSignedIn
			}

			form := screen.NewPollForm(a.client.Polls, a.store, a.nav, a.alert, a.logger)
			if !form.Mount() {
				return errNotSignedIn
			}
			form.SetQuestion(question)
			for i, o := range options {
				if i >= len(form.Options()) {
					form.AddOption()
				}
				form.SetOption(i, o)
			}

			if !form.Submit(cmd.Context()) {
				if msg := form.Error(); msg != "" {
					return errors.New(msg)
				}
				return errAlerted
			}
			fmt.Fprintf(a.out, "Created poll %s\n", form.Created().ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "poll question")
	cmd.Flags().StringArrayVarP(&options, "option", "o", nil, "an option; repeat for each option")
	return cmd
}

func newPollVoteCmd(get func() *app) *cobra.Command {
	var option string
	cmd := &cobra.Command{
		Use:   "vote ID",
		Short: "Vote in a poll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			d, err := openDetail(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			if err := d.Select(option); err != nil {
				return fmt.Errorf("%q is not one of: %s", option, strings.Join(d.Poll().Options, ", "))
			}
			if !d.Vote(cmd.Context()) {
				switch {
				case a.nav.Current().Route.Name == route.NameSignIn:
					return errNotSignedIn
				case d.Error() != "":
					return errors.New(d.Error())
				default:
					return errAlerted
				}
			}
			fmt.Fprintf(a.out, "Voted for %s\n", d.MyVote().Option)
			return nil
		},
	}
	cmd.Flags().StringVarP(&option, "option", "o", "", "the option to vote for")
	return cmd
}

func newPollResultsCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "results ID",
		Short: "Show vote counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if _, _, err := a.open(route.PollDetail(args[0])); err != nil {
				return err
			}
			d := screen.NewPollDetail(args[0], a.client.Polls, a.store, a.nav, a.alert, a.logger)
			d.LoadResults(cmd.Context())
			r := d.Results()
			if r == nil {
				return errAlerted
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OPTION\tVOTES\tSHARE")
			for _, c := range r.Counts {
				share := 0.0
				if r.Total > 0 {
					share = float64(c.Votes) * 100 / float64(r.Total)
				}
				fmt.Fprintf(tw, "%s\t%d\t%.0f%%\n", c.Option, c.Votes, share)
			}
			fmt.Fprintf(tw, "TOTAL\t%d\t\n", r.Total)
			return tw.Flush()
		},
	}
}
