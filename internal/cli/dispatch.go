// Package cli parses the command line and dispatches to a command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/pflag"

	"taskdesk/internal/commands"
	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/logging"
	"taskdesk/internal/service"
	"taskdesk/internal/session"
)

// ServiceFactory creates a Service from config. The session is the token
// source for every request the service sends.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, sess *session.Session, log *logging.Logger) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	metrics  prometheus.Gatherer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics makes --debug print the gathered metrics after the command.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(d *Dispatcher) { d.metrics = g }
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		factory:  factory,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	log, err := logging.New(cfg.LogLevel(), cfg.Logger.Format, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	defer log.Close()
	log.Debugw("Dispatching command", "command", cmd.Name(), "config_dir", cfg.Dir)

	sess, err := session.Open(session.NewFileStore(cfg.SessionPath()))
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}

	// Check auth requirements
	if cmd.NeedsAuth() && !sess.IsAuthenticated() {
		fmt.Fprintln(errOut, "error: not logged in (run: taskdesk login)")
		return exitcode.AuthError
	}

	env := &commands.Env{Config: cfg, Session: sess, Log: log}
	if d.factory != nil {
		env.Service, err = d.factory(ctx, cfg, sess, log)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}

	code := cmd.Run(ctx, env, fs.Args(), out, errOut)
	if cfg.Debug {
		d.dumpMetrics(errOut, log)
	}
	return code
}

// dumpMetrics writes the gathered metrics in the Prometheus text format.
func (d *Dispatcher) dumpMetrics(w io.Writer, log *logging.Logger) {
	if d.metrics == nil {
		return
	}
	families, err := d.metrics.Gather()
	if err != nil {
		log.WithError(err).Warnw("Failed to gather metrics")
		return
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			log.WithError(err).Warnw("Failed to write metrics")
			return
		}
	}
}
