// Package cli implements vaultctl, the command-line client of the vault.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/client/api"
	"github.com/dmitrijs2005/gophvault/internal/client/config"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/spf13/cobra"
)

// App carries what every command needs. It is filled in by the root
// command before any subcommand runs.
type App struct {
	config *config.Config
	api    *api.Client
	in     *bufio.Reader
	inFd   int
	out    io.Writer
	errOut io.Writer
}

// Streams are the standard streams of a vaultctl invocation. InFd is the
// descriptor checked for a terminal before reading passwords.
type Streams struct {
	In     io.Reader
	InFd   int
	Out    io.Writer
	ErrOut io.Writer
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, InFd: int(os.Stdin.Fd()), Out: os.Stdout, ErrOut: os.Stderr}
}

// NewRootCmd builds the vaultctl command tree. lookup reads the
// environment.
func NewRootCmd(s Streams, lookup func(string) (string, bool)) *cobra.Command {
	app := &App{
		in:     bufio.NewReader(s.In),
		inFd:   s.InFd,
		out:    s.Out,
		errOut: s.ErrOut,
	}

	var (
		configFile string
		serverURL  string
		tokenFile  string
		timeout    time.Duration
	)

	root := &cobra.Command{
		Use:   "vaultctl",
		Short: "Command-line client for the gophvault credential vault",
		Long: `vaultctl stores and retrieves credentials in a gophvault server.

Examples:
  vaultctl register --email ada@example.com
  vaultctl login --email ada@example.com
  vaultctl add --label mail --site mail.example.com
  vaultctl list
  vaultctl get <id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, lookup)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("server") {
				cfg.ServerURL = serverURL
			}
			if flags.Changed("token-file") {
				cfg.TokenFile = tokenFile
			}
			if flags.Changed("timeout") {
				cfg.Timeout = timeout
			}

			client, err := api.New(cfg.ServerURL, cfg.Timeout)
			if err != nil {
				return err
			}
			app.config = cfg
			app.api = client
			return nil
		},
	}

	root.SetIn(s.In)
	root.SetOut(s.Out)
	root.SetErr(s.ErrOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "path to JSON config file")
	pf.StringVarP(&serverURL, "server", "s", "", "server URL (default http://127.0.0.1:8000)")
	pf.StringVar(&tokenFile, "token-file", "", "where the login token is kept")
	pf.DurationVar(&timeout, "timeout", 0, "request timeout (default 10s)")

	root.AddCommand(
		app.registerCmd(),
		app.loginCmd(),
		app.logoutCmd(),
		app.whoamiCmd(),
		app.addCmd(),
		app.listCmd(),
		app.getCmd(),
		app.updateCmd(),
		app.deleteCmd(),
		app.genenvCmd(),
	)

	return root
}

// Execute runs vaultctl with the process arguments and returns the exit
// code.
func Execute(ctx context.Context) int {
	s := StdStreams()
	root := NewRootCmd(s, os.LookupEnv)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(s.ErrOut, "Error:", describe(err))
		return 1
	}
	return 0
}

// describe turns an error into a message for the terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "session expired, run \"vaultctl login\" again"
	case errors.Is(err, api.ErrUnavailable):
		return "server unavailable: " + err.Error()
	}
	return err.Error()
}

// session loads the saved login or fails with ErrNotLoggedIn.
func (a *App) session() (*Session, error) {
	return LoadSession(a.config.TokenFile)
}

// readSecret prompts for a value without echo and refuses empty input.
func (a *App) readSecret(prompt string) (string, error) {
	b, err := GetPassword(a.in, a.inFd, prompt, a.errOut)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(b)
	if len(b) == 0 {
		return "", fmt.Errorf("%s must not be empty", prompt)
	}
	return string(b), nil
}
