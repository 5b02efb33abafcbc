// Package httpapi implements the service.Service interface over the task
// HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"taskdesk/internal/service"
	"taskdesk/internal/transport"
)

// Sender is the transport operation the client needs.
type Sender interface {
	Send(ctx context.Context, method, path string, body any) (*transport.Envelope, error)
}

// Client implements service.Service. Transport errors are returned
// unchanged; only payload decoding failures are added here.
type Client struct {
	tr Sender
}

// New creates a client on top of a transport.
func New(tr Sender) *Client {
	return &Client{tr: tr}
}

// SignIn implements service.Service.
func (c *Client) SignIn(ctx context.Context, req service.SignInRequest) (service.SignInResult, error) {
	env, err := c.tr.Send(ctx, http.MethodPost, "/users/signin", req)
	if err != nil {
		return service.SignInResult{}, err
	}

	var token string
	if err := env.Decode(&token); err != nil {
		return service.SignInResult{}, fmt.Errorf("invalid sign-in response: %w", err)
	}
	return service.SignInResult{
		Token:     token,
		IsSuccess: env.IsSuccess,
		Message:   env.Message,
	}, nil
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, req service.RegisterRequest) (service.User, error) {
	env, err := c.tr.Send(ctx, http.MethodPost, "/users", req)
	if err != nil {
		return service.User{}, err
	}

	// The payload shape varies; only an object is taken as the user.
	var user service.User
	if isObject(env.Data) {
		if err := env.Decode(&user); err != nil {
			return service.User{}, fmt.Errorf("invalid register response: %w", err)
		}
	}
	user.Password = ""
	return user, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, order service.Sort) ([]service.Task, error) {
	path := "/tasks?order=" + strconv.Itoa(int(order))
	env, err := c.tr.Send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var tasks []service.Task
	if err := env.Decode(&tasks); err != nil {
		return nil, fmt.Errorf("invalid task list response: %w", err)
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, req service.TaskRequest) (service.Task, error) {
	req.ID = ""
	env, err := c.tr.Send(ctx, http.MethodPost, "/tasks", req)
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(env)
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, req service.TaskRequest) (service.Task, error) {
	req.ID = id
	env, err := c.tr.Send(ctx, http.MethodPut, "/tasks", req)
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(env)
}

// UpdateTaskStatus implements service.Service.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status service.Status) (service.Task, error) {
	env, err := c.tr.Send(ctx, http.MethodPut, "/tasks/status", service.StatusRequest{ID: id, Status: status})
	if err != nil {
		return service.Task{}, err
	}
	return decodeTask(env)
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.tr.Send(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil)
	return err
}

// decodeTask returns the task in the payload, or a zero Task when the
// server sent something else.
func decodeTask(env *transport.Envelope) (service.Task, error) {
	var task service.Task
	if !isObject(env.Data) {
		return task, nil
	}
	if err := env.Decode(&task); err != nil {
		return service.Task{}, fmt.Errorf("invalid task response: %w", err)
	}
	return task, nil
}

func isObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
