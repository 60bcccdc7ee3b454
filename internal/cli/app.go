// Package cli implements the librarian command line client.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/segyhp/library-circulation/internal/catalog"
	"github.com/segyhp/library-circulation/internal/circulation"
	"github.com/segyhp/library-circulation/internal/config"
	"github.com/segyhp/library-circulation/internal/ledger"
	"github.com/segyhp/library-circulation/internal/notify"
	"github.com/segyhp/library-circulation/internal/session"
	"github.com/segyhp/library-circulation/pkg/client"
)

// Deps are the process-level collaborators of the CLI
type Deps struct {
	Config *config.Config
	Store  session.Store
	Logger *slog.Logger
	In     io.Reader
	Out    io.Writer
	Err    io.Writer

	// Now drives the fine estimate; nil means time.Now
	Now func() time.Time
}

type App struct {
	sessions    *session.Manager
	api         *client.Client
	circulation *circulation.Service
	notify      *notify.Notifier
	logger      *slog.Logger

	in  io.Reader
	out io.Writer
}

func NewApp(deps Deps) *App {
	if deps.In == nil {
		deps.In = os.Stdin
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Err == nil {
		deps.Err = os.Stderr
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(deps.Err, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	sessions := session.NewManager(deps.Store)
	if deps.Now != nil {
		sessions.WithClock(deps.Now)
	}

	api := client.New(deps.Config.Client.BaseURL, deps.Config.Client.Timeout, sessions)
	estimator := ledger.NewEstimator(deps.Config.GetClientFineRate(), deps.Now)

	return &App{
		sessions:    sessions,
		api:         api,
		circulation: circulation.NewService(api, sessions, catalog.New(), estimator),
		notify:      notify.New(deps.Out, deps.Err),
		logger:      deps.Logger,
		in:          deps.In,
		out:         deps.Out,
	}
}

// reportedError marks an error whose message the notifier already printed
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// Reported tells main whether err still needs printing
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// fail prints the user-facing message for err and marks it reported
func (a *App) fail(err error, fallback string) error {
	if err == nil {
		return nil
	}
	a.logger.Debug("command failed", "error", err)
	return reportedError{a.notify.Error(err, fallback)}
}

// currentSession returns the active session or a reported login prompt
func (a *App) currentSession() (*session.Session, error) {
	s, ok := a.sessions.Current()
	if !ok {
		return nil, a.fail(client.ErrNotAuthenticated, "")
	}
	return s, nil
}

func parseID(arg, name string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, arg)
	}
	return id, nil
}

// idArg runs fn with the first positional argument parsed as an id
func idArg(name string, fn func(cmd *cobra.Command, id int64) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], name)
		if err != nil {
			return err
		}
		return fn(cmd, id)
	}
}
