package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskdesk/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskdesk help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, usageText)
	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range DefaultRegistry.All() {
		line := fmt.Sprintf("  %-10s %s", cmd.Name(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprint(out, flagsText)
	return exitcode.Success
}

const usageText = `Usage:
  taskdesk                                           List the To Do tab
  taskdesk list [common flags] [--status <s>] [--sort asc|desc] [--all]
  taskdesk add [common flags] --due <date> [--desc <text>] [--status <s>] <title...>
  taskdesk create [common flags] --due <date> [--desc <text>] [--status <s>] <title...>
  taskdesk edit [common flags] <ref> [--title <text>] [--desc <text>] [--due <date>] [--status <s>]
  taskdesk status [common flags] <ref> <status>
  taskdesk done [common flags] <ref>
  taskdesk rm [common flags] <ref>
  taskdesk show [common flags] <ref>
  taskdesk login [common flags] --username <name> --password <password>
  taskdesk register [common flags] --username <name> --email <address> --password <password>
  taskdesk logout [common flags]
  taskdesk whoami [common flags]
  taskdesk help
  taskdesk version

Task references:
  3, t3            third task in To Do
  p1, c2           first in In Progress, second in Complete
  <id>             a task id

Statuses: todo, in-progress, complete
Dates:    YYYY-MM-DD
`

const flagsText = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs and request metrics to stderr
`
