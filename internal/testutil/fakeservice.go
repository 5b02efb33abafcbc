// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"taskdesk/internal/service"
	"taskdesk/internal/transport"
)

// FakeUserID is the owner assigned to every task the fakes create.
const FakeUserID = "user-1"

// ErrTaskNotFound is the 404 the fakes return for unknown task ids.
var ErrTaskNotFound = &transport.ServerError{Status: http.StatusNotFound, Message: "Task not found"}

type fakeUser struct {
	service.User
	password string
	token    string
}

// FakeService is an in-memory implementation of service.Service for testing.
// Call logs are appended under the lock; read them once calls have returned.
type FakeService struct {
	mu     sync.Mutex
	users  map[string]fakeUser
	tasks  []service.Task
	nextID int

	// Error injection for testing
	SignInErr       error
	RegisterErr     error
	ListTasksErr    error
	CreateTaskErr   error
	UpdateTaskErr   error
	UpdateStatusErr error
	DeleteTaskErr   error

	// ListHook, if set, runs after a ListTasks snapshot is taken and before
	// it is returned. call is 1-based.
	ListHook func(call int)

	// Call logs
	SignInCalls   []service.SignInRequest
	RegisterCalls []service.RegisterRequest
	ListCalls     []service.Sort
	CreateCalls   []service.TaskRequest
	UpdateCalls   []service.TaskRequest
	StatusCalls   []service.StatusRequest
	DeleteCalls   []string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{users: make(map[string]fakeUser)}
}

// AddUser registers credentials that SignIn accepts with the given token.
func (f *FakeService) AddUser(userName, password, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userName] = fakeUser{
		User:     service.User{ID: "user-" + userName, UserName: userName},
		password: password,
		token:    token,
	}
}

// AddTask stores a task as-is, assigning an ID when it has none.
func (f *FakeService) AddTask(task service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == "" {
		task.ID = f.newID()
	}
	if task.UserID == "" {
		task.UserID = FakeUserID
	}
	f.tasks = append(f.tasks, task)
	return task
}

// Tasks returns a copy of the stored tasks in insertion order.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// ListCount returns how many times ListTasks was called.
func (f *FakeService) ListCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ListCalls)
}

func (f *FakeService) newID() string {
	f.nextID++
	return fmt.Sprintf("task-%d", f.nextID)
}

func (f *FakeService) indexOf(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// SignIn implements service.Service.
func (f *FakeService) SignIn(ctx context.Context, req service.SignInRequest) (service.SignInResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignInCalls = append(f.SignInCalls, req)
	if f.SignInErr != nil {
		return service.SignInResult{}, f.SignInErr
	}

	u, ok := f.users[req.UserName]
	if !ok || u.password != req.Password {
		return service.SignInResult{IsSuccess: false, Message: "Invalid username or password"}, nil
	}
	return service.SignInResult{Token: u.token, IsSuccess: true, Message: "Login successful"}, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, req service.RegisterRequest) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RegisterCalls = append(f.RegisterCalls, req)
	if f.RegisterErr != nil {
		return service.User{}, f.RegisterErr
	}
	if _, exists := f.users[req.UserName]; exists {
		return service.User{}, &transport.ServerError{Status: http.StatusConflict, Message: "User already exists"}
	}

	u := fakeUser{
		User:     service.User{ID: "user-" + req.UserName, UserName: req.UserName, Email: req.Email},
		password: req.Password,
		token:    "token-" + req.UserName,
	}
	f.users[req.UserName] = u
	return u.User, nil
}

// ListTasks implements service.Service. Tasks are ordered by due date the
// way the server does it.
func (f *FakeService) ListTasks(ctx context.Context, order service.Sort) ([]service.Task, error) {
	f.mu.Lock()
	f.ListCalls = append(f.ListCalls, order)
	call := len(f.ListCalls)
	err := f.ListTasksErr
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	hook := f.ListHook
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	SortByDueDate(out, order)
	if hook != nil {
		hook(call)
	}
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, req service.TaskRequest) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls = append(f.CreateCalls, req)
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}

	task := service.Task{
		ID:          f.newID(),
		UserID:      FakeUserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, req service.TaskRequest) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.ID = id
	f.UpdateCalls = append(f.UpdateCalls, req)
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}

	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, ErrTaskNotFound
	}
	f.tasks[i].Title = req.Title
	f.tasks[i].Description = req.Description
	f.tasks[i].Status = req.Status
	f.tasks[i].DueDate = req.DueDate
	return f.tasks[i], nil
}

// UpdateTaskStatus implements service.Service.
func (f *FakeService) UpdateTaskStatus(ctx context.Context, id string, status service.Status) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StatusCalls = append(f.StatusCalls, service.StatusRequest{ID: id, Status: status})
	if f.UpdateStatusErr != nil {
		return service.Task{}, f.UpdateStatusErr
	}

	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, ErrTaskNotFound
	}
	f.tasks[i].Status = status
	return f.tasks[i], nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls = append(f.DeleteCalls, id)
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	i := f.indexOf(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

// SortByDueDate orders tasks by due date, ties kept in insertion order.
func SortByDueDate(tasks []service.Task, order service.Sort) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := dueKey(tasks[i]), dueKey(tasks[j])
		if order == service.SortDescending {
			return a > b
		}
		return a < b
	})
}

func dueKey(t service.Task) int64 {
	due, err := service.ParseDueDate(t.DueDate)
	if err != nil {
		return 0
	}
	return due.Unix()
}
