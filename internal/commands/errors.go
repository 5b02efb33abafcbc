package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"taskdesk/internal/exitcode"
	"taskdesk/internal/service"
	"taskdesk/internal/session"
	"taskdesk/internal/taskview"
	"taskdesk/internal/transport"
)

// report prints err as an "error: ..." line and returns its exit code.
func report(errOut io.Writer, err error) int {
	var (
		verr  *service.ValidationError
		serr  *transport.ServerError
		nerr  *transport.NetworkError
		rserr *transport.RequestSetupError
	)

	switch {
	case errors.Is(err, taskview.ErrLoginRequired):
		fmt.Fprintln(errOut, "error: not logged in (run: taskdesk login)")
		return exitcode.AuthError
	case errors.Is(err, taskview.ErrReauthRequired):
		fmt.Fprintln(errOut, "error: session expired (run: taskdesk login)")
		return exitcode.AuthError
	case errors.Is(err, session.ErrInvalidCredentials):
		fmt.Fprintln(errOut, "error: invalid username or password")
		return exitcode.AuthError
	case errors.As(err, &verr):
		fmt.Fprintf(errOut, "error: %v\n", verr)
		return exitcode.UserError
	case errors.Is(err, errUser), errors.Is(err, taskview.ErrTaskNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.As(err, &serr):
		// The server rejected the request itself.
		if serr.Status >= http.StatusBadRequest && serr.Status < http.StatusInternalServerError {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	case errors.As(err, &nerr), errors.As(err, &rserr):
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
}

// errUser marks argument errors detected by the commands themselves.
var errUser = errors.New("invalid usage")

// userErrorf returns an error that report maps to exitcode.UserError. The
// message is printed as given.
func userErrorf(format string, args ...any) error {
	return &userError{msg: fmt.Sprintf(format, args...)}
}

type userError struct{ msg string }

func (e *userError) Error() string        { return e.msg }
func (e *userError) Is(target error) bool { return target == errUser }
