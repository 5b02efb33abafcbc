package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskdesk/internal/exitcode"
	"taskdesk/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the flags given on the
// command line overwrite the task's fields.
type EditCmd struct {
	fs     *pflag.FlagSet
	title  string
	desc   string
	due    string
	status string
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Edit a task" }
func (c *EditCmd) Usage() string {
	return "taskdesk edit <ref> [--title <text>] [--desc <text>] [--due <date>] [--status <status>]"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.fs = fs
	fs.StringVarP(&c.title, "title", "t", "", "")
	fs.StringVarP(&c.desc, "desc", "d", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVarP(&c.status, "status", "s", "", "")
}

func (c *EditCmd) changed(name string) bool {
	return c.fs != nil && c.fs.Changed(name)
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ref, n, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	if len(args) > n {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[n])
		return exitcode.UserError
	}

	var status service.Status
	if c.changed("status") {
		if status, err = parseStatusFlag(c.status); err != nil {
			return report(errOut, err)
		}
	}

	ctrl, err := env.load(ctx, service.SortAscending)
	if err != nil {
		return report(errOut, err)
	}
	task, err := ref.Resolve(ctrl)
	if err != nil {
		return report(errOut, err)
	}

	if err := ctrl.OpenEdit(task.ID); err != nil {
		return report(errOut, err)
	}
	draft, _ := ctrl.Draft()
	if c.changed("title") {
		draft.Title = strings.TrimSpace(c.title)
	}
	if c.changed("desc") {
		draft.Description = c.desc
	}
	if c.changed("due") {
		draft.DueDate = strings.TrimSpace(c.due)
	}
	if c.changed("status") {
		draft.Status = status
	}
	if err := ctrl.SetDraft(draft); err != nil {
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
