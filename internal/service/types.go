// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the workflow state of a task. The wire format is the ordinal.
type Status int

const (
	StatusToDo Status = iota
	StatusInProgress
	StatusComplete
)

// Statuses lists every status in tab order.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusComplete}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s >= StatusToDo && s <= StatusComplete
}

func (s Status) String() string {
	switch s {
	case StatusToDo:
		return "todo"
	case StatusInProgress:
		return "in-progress"
	case StatusComplete:
		return "complete"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Title returns the tab label for s.
func (s Status) Title() string {
	switch s {
	case StatusToDo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusComplete:
		return "Complete"
	default:
		return s.String()
	}
}

// ParseStatus accepts a status name (case-insensitive) or its ordinal.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "todo", "to-do", "t":
		return StatusToDo, nil
	case "1", "inprogress", "in-progress", "progress", "p":
		return StatusInProgress, nil
	case "2", "complete", "completed", "done", "c":
		return StatusComplete, nil
	}
	return 0, fmt.Errorf("invalid status: %s", s)
}

// Sort is the due-date ordering requested from the server.
type Sort int

const (
	SortAscending Sort = iota
	SortDescending
)

func (s Sort) String() string {
	if s == SortDescending {
		return "desc"
	}
	return "asc"
}

// ParseSort accepts asc/desc (or the long forms) and the ordinals 0/1.
func ParseSort(s string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "asc", "ascending":
		return SortAscending, nil
	case "1", "desc", "descending":
		return SortDescending, nil
	}
	return 0, fmt.Errorf("invalid sort order: %s", s)
}

// Task represents a single task item.
type Task struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	DueDate     string `json:"dueDate"` // ISO date or timestamp
}

// User is a registered account. Password is write-only.
type User struct {
	ID       string `json:"id,omitempty"`
	UserName string `json:"userName"`
	Password string `json:"password,omitempty"`
	Email    string `json:"email"`
}

// SignInRequest is the body of POST /users/signin.
type SignInRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignInResult is the sign-in envelope: Token carries its data field.
type SignInResult struct {
	Token     string
	IsSuccess bool
	Message   string
}

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	UserName string `json:"userName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TaskRequest is the body of POST /tasks and PUT /tasks.
// ID is only sent on update.
type TaskRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Status      Status `json:"status" validate:"taskstatus"`
	DueDate     string `json:"dueDate" validate:"required,isodate"`
}

// StatusRequest is the body of PUT /tasks/status.
type StatusRequest struct {
	ID     string `json:"id" validate:"required"`
	Status Status `json:"status" validate:"taskstatus"`
}
