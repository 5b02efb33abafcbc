package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskdesk/internal/exitcode"
	"taskdesk/internal/output"
	"taskdesk/internal/service"
)

func init() {
	Register(&RmCmd{})
	Register(&ShowCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskdesk rm <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ref, n, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	if len(args) > n {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[n])
		return exitcode.UserError
	}

	ctrl, err := env.load(ctx, service.SortAscending)
	if err != nil {
		return report(errOut, err)
	}
	task, err := ref.Resolve(ctrl)
	if err != nil {
		return report(errOut, err)
	}
	if err := ctrl.Remove(ctx, task.ID); err != nil {
		return report(errOut, err)
	}

	if !env.quiet() {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show task details" }
func (c *ShowCmd) Usage() string     { return "taskdesk show <ref>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ref, n, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	if len(args) > n {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[n])
		return exitcode.UserError
	}

	ctrl, err := env.load(ctx, service.SortAscending)
	if err != nil {
		return report(errOut, err)
	}
	task, err := ref.Resolve(ctrl)
	if err != nil {
		return report(errOut, err)
	}
	if err := ctrl.Select(task.ID); err != nil {
		return report(errOut, err)
	}

	selected, _ := ctrl.Selected()
	output.FormatTaskDetail(out, selected)
	return exitcode.Success
}
