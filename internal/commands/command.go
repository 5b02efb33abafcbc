// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"taskdesk/internal/config"
	"taskdesk/internal/logging"
	"taskdesk/internal/service"
	"taskdesk/internal/session"
	"taskdesk/internal/taskview"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a session.
	// Commands like help, version, login, register, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Env is what a command runs against. Config and Session are always set;
// Service is nil only for commands that never reach the server.
type Env struct {
	Config  *config.Config
	Service service.Service
	Session *session.Session
	Log     *logging.Logger
}

func (e *Env) logger() *logging.Logger {
	if e.Log == nil {
		return logging.Nop()
	}
	return e.Log
}

func (e *Env) quiet() bool {
	return e.Config != nil && e.Config.Quiet
}

// manager returns a session manager over the env's session and service.
func (e *Env) manager() *session.Manager {
	return session.NewManager(e.Session, e.Service, e.logger())
}

// load creates a task view and fetches the tasks in the given order.
func (e *Env) load(ctx context.Context, order service.Sort) (*taskview.Controller, error) {
	ctrl := taskview.New(e.Service, e.Session, e.logger())
	if order == ctrl.Sort() {
		return ctrl, ctrl.Mount(ctx)
	}
	if !e.Session.IsAuthenticated() {
		return ctrl, taskview.ErrLoginRequired
	}
	return ctrl, ctrl.SetSort(ctx, order)
}
