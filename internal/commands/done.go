package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskdesk/internal/exitcode"
	"taskdesk/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&StatusCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task complete" }
func (c *DoneCmd) Usage() string     { return "taskdesk done <ref>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ref, n, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	if len(args) > n {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[n])
		return exitcode.UserError
	}
	return setStatus(ctx, env, ref, service.StatusComplete, out, errOut)
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"move"} }
func (c *StatusCmd) Synopsis() string  { return "Change the status of a task" }
func (c *StatusCmd) Usage() string     { return "taskdesk status <ref> todo|in-progress|complete" }
func (c *StatusCmd) NeedsAuth() bool   { return true }

func (c *StatusCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ref, n, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	rest := args[n:]
	if len(rest) == 0 {
		fmt.Fprintln(errOut, "error: status required")
		return exitcode.UserError
	}
	if len(rest) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[1])
		return exitcode.UserError
	}
	status, err := parseStatusFlag(rest[0])
	if err != nil {
		return report(errOut, err)
	}
	return setStatus(ctx, env, ref, status, out, errOut)
}

// setStatus is the shared implementation for done and status.
func setStatus(ctx context.Context, env *Env, ref TaskRef, status service.Status, out, errOut io.Writer) int {
	ctrl, err := env.load(ctx, service.SortAscending)
	if err != nil {
		return report(errOut, err)
	}
	task, err := ref.Resolve(ctrl)
	if err != nil {
		return report(errOut, err)
	}
	if err := ctrl.SetStatus(ctx, task.ID, status); err != nil {
		return report(errOut, err)
	}

	if !env.quiet() {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
