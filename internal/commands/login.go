package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"taskdesk/internal/exitcode"
	"taskdesk/internal/session"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username string
	password string
}

// SetCredentials sets the flag values (for testing).
func (c *LoginCmd) SetCredentials(username, password string) {
	c.username, c.password = username, password
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in to the task server" }
func (c *LoginCmd) Usage() string {
	return "taskdesk login --username <name> --password <password>"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "")
	fs.StringVarP(&c.password, "password", "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	// A stored token is reused until its exp claim has passed.
	if env.Session.IsAuthenticated() && !isTokenExpired(env.Session) {
		if !env.quiet() {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	if err := env.Config.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := env.manager().Login(ctx, strings.TrimSpace(c.username), c.password); err != nil {
		return report(errOut, err)
	}

	if !env.quiet() {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// isTokenExpired reports whether the session token carries an exp claim in
// the past. Opaque tokens never expire client-side.
func isTokenExpired(sess *session.Session) bool {
	id, ok := sess.Identity()
	return ok && id.Expired(time.Now())
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username string
	email    string
	password string
}

// SetAccount sets the flag values (for testing).
func (c *RegisterCmd) SetAccount(username, email, password string) {
	c.username, c.email, c.password = username, email, password
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskdesk register --username <name> --email <address> --password <password>"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "")
	fs.StringVarP(&c.email, "email", "e", "", "")
	fs.StringVarP(&c.password, "password", "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	user, err := env.manager().Register(ctx, strings.TrimSpace(c.username), strings.TrimSpace(c.email), c.password)
	if err != nil {
		return report(errOut, err)
	}

	if !env.quiet() {
		name := user.UserName
		if name == "" {
			name = strings.TrimSpace(c.username)
		}
		fmt.Fprintf(out, "registered %s (run: taskdesk login)\n", name)
	}
	return exitcode.Success
}
