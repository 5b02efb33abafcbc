// Package exitcode defines the process exit codes of taskdesk.
package exitcode

const (
	// Success: the command did what was asked.
	Success = 0

	// UserError: bad arguments, an unknown task reference, a rejected form
	// or a request the server refused as invalid.
	UserError = 1

	// AuthError: not logged in, wrong credentials, or a session the server
	// no longer accepts.
	AuthError = 2

	// BackendError: the server failed or could not be reached.
	BackendError = 3
)
