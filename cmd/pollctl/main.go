// Command pollctl is a terminal client for Pollster.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, closeApp := newRootCmd(os.Stdout, os.Stderr)
	err := root.ExecuteContext(ctx)
	closeApp()
	if err != nil {
		if !errors.Is(err, errAlerted) {
			fmt.Fprintf(os.Stderr, "pollctl: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The returned func releases whatever
// the executed command opened and must be called after Execute.
func newRootCmd(out, errOut io.Writer) (*cobra.Command, func()) {
	var (
		configPath string
		apiURL     string
		verbose    bool
		current    *app
	)

	root := &cobra.Command{
		Use:           "pollctl",
		Short:         "Create and vote on polls from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(errOut, verbose)

			explicit := cmd.Flags().Changed("config")
			if !explicit {
				configPath = defaultConfigPath()
			}
			cfg, err := loadConfig(configPath, explicit)
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.APIURL = apiURL
			}

			a, err := newApp(cmd.Context(), cfg, logger, out, errOut)
			if err != nil {
				return err
			}
			current = a
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+defaultConfigPath()+")")
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL, overrides the config")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	get := func() *app { return current }
	root.AddCommand(
		newLoginCmd(get),
		newSignupCmd(get),
		newLogoutCmd(get),
		newProfileCmd(get),
		newPollsCmd(get),
		newPollCmd(get),
	)
	closeApp := func() {
		if current != nil {
			current.Close()
			current = nil
		}
	}
	return root, closeApp
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
