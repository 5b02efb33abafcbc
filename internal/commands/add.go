package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskdesk/internal/exitcode"
	"taskdesk/internal/taskview"
)

func init() {
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// taskFlags are the form fields shared by add and create.
type taskFlags struct {
	desc   string
	due    string
	status string
}

func (f *taskFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.desc, "desc", "d", "", "")
	fs.StringVar(&f.due, "due", "", "")
	fs.StringVarP(&f.status, "status", "s", "todo", "")
}

// AddCmd implements the add command.
type AddCmd struct {
	flags taskFlags
}

// SetFields sets the flag values (for testing).
func (c *AddCmd) SetFields(desc, due, status string) {
	c.flags = taskFlags{desc: desc, due: due, status: status}
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskdesk add --due <date> [--desc <text>] [--status <status>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) { c.flags.register(fs) }

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, env, c.flags, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	flags taskFlags
}

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return nil }
func (c *CreateCmd) Synopsis() string  { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string {
	return "taskdesk create --due <date> [--desc <text>] [--status <status>] <title...>"
}
func (c *CreateCmd) NeedsAuth() bool { return true }

func (c *CreateCmd) RegisterFlags(fs *pflag.FlagSet) { c.flags.register(fs) }

func (c *CreateCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, env, c.flags, args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
func runAdd(ctx context.Context, env *Env, flags taskFlags, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	status, err := parseStatusFlag(flags.status)
	if err != nil {
		return report(errOut, err)
	}

	ctrl := taskview.New(env.Service, env.Session, env.logger())
	ctrl.OpenCreate()
	if err := ctrl.SetDraft(taskview.Draft{
		Title:       title,
		Description: flags.desc,
		DueDate:     strings.TrimSpace(flags.due),
		Status:      status,
	}); err != nil {
		return report(errOut, err)
	}
	if err := ctrl.SubmitDraft(ctx); err != nil {
		return report(errOut, err)
	}

	if !env.quiet() {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
