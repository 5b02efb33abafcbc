// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All remote API calls go through this interface.
// Commands and the task view never build HTTP requests directly.
//
// Implementations do not recover from errors: transport failures are
// returned to the caller as-is.
type Service interface {
	// SignIn exchanges credentials for a bearer token.
	// A rejected sign-in is not an error: IsSuccess is false.
	SignIn(ctx context.Context, req SignInRequest) (SignInResult, error)

	// Register creates a new account. It does not sign in.
	Register(ctx context.Context, req RegisterRequest) (User, error)

	// ListTasks returns the user's tasks ordered by due date on the server.
	// No client-side sorting is applied.
	ListTasks(ctx context.Context, order Sort) ([]Task, error)

	// CreateTask creates a task; the server assigns the ID.
	CreateTask(ctx context.Context, req TaskRequest) (Task, error)

	// UpdateTask replaces a task. The ID travels in the body, not the path.
	UpdateTask(ctx context.Context, id string, req TaskRequest) (Task, error)

	// UpdateTaskStatus changes only the status of a task.
	UpdateTaskStatus(ctx context.Context, id string, status Status) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error
}
