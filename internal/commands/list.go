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
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskdesk` (no args) and `taskdesk list`.
type ListCmd struct {
	status string
	order  string
	all    bool
}

// SetOptions sets the flag values (for testing).
func (c *ListCmd) SetOptions(status, order string, all bool) {
	c.status, c.order, c.all = status, order, all
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskdesk list [--status <status>] [--sort asc|desc] [--all]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.status, "status", "s", "todo", "")
	fs.StringVar(&c.order, "sort", "asc", "")
	fs.BoolVarP(&c.all, "all", "a", false, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	status, err := parseStatusFlag(c.status)
	if err != nil {
		return report(errOut, err)
	}
	order, err := parseSortFlag(c.order)
	if err != nil {
		return report(errOut, err)
	}

	ctrl, err := env.load(ctx, order)
	if err != nil {
		return report(errOut, err)
	}
	ctrl.SetFilter(status)

	if c.all {
		return c.listAll(env, ctrl.Tab, out)
	}

	tasks := ctrl.Visible()
	if len(tasks) == 0 {
		if !env.quiet() {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	for i, task := range tasks {
		output.FormatTask(out, i+1, task)
	}
	return exitcode.Success
}

// listAll prints every non-empty tab with tab-letter references.
func (c *ListCmd) listAll(env *Env, tab func(service.Status) []service.Task, out io.Writer) int {
	found := false
	for _, status := range service.Statuses {
		tasks := tab(status)
		if len(tasks) == 0 {
			continue
		}
		found = true
		output.FormatTabHeader(out, status, len(tasks))
		for i, task := range tasks {
			ref := TaskRef{Tab: status, Num: i + 1}
			output.FormatTaskWithRef(out, ref.String(), task)
		}
	}
	if !found && !env.quiet() {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

func parseStatusFlag(s string) (service.Status, error) {
	status, err := service.ParseStatus(s)
	if err != nil {
		return 0, userErrorf("invalid status: %s", s)
	}
	return status, nil
}

func parseSortFlag(s string) (service.Sort, error) {
	order, err := service.ParseSort(s)
	if err != nil {
		return 0, userErrorf("invalid sort order: %s", s)
	}
	return order, nil
}
