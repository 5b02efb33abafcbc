// Package taskview holds the state of the task list screen and keeps it in
// step with the server.
//
// The held collection is only ever replaced by a successful fetch; no
// mutation patches it locally.
package taskview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskdesk/internal/logging"
	"taskdesk/internal/service"
	"taskdesk/internal/transport"
)

var (
	// ErrLoginRequired is returned by Mount when there is no session.
	ErrLoginRequired = errors.New("login required")

	// ErrReauthRequired wraps any failure caused by a rejected token. The
	// session has been cleared by the time it is returned.
	ErrReauthRequired = errors.New("session expired, please log in again")

	// ErrTaskNotFound is returned for ids absent from the held collection.
	ErrTaskNotFound = errors.New("task not found")

	// ErrFormClosed is returned by draft operations when no form is open.
	ErrFormClosed = errors.New("no task form open")
)

// User-visible failure messages.
const (
	MsgLoadFailed   = "failed to load tasks"
	MsgSaveFailed   = "failed to save task"
	MsgStatusFailed = "failed to update task status"
	MsgDeleteFailed = "failed to delete task"
)

// SessionGuard is the part of the session the controller needs.
type SessionGuard interface {
	IsAuthenticated() bool
	Clear() error
}

// Draft is the content of an open create or edit form. ID is empty when
// creating.
type Draft struct {
	ID          string
	Title       string
	Description string
	DueDate     string
	Status      service.Status
}

func (d Draft) request() service.TaskRequest {
	return service.TaskRequest{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		DueDate:     d.DueDate,
	}
}

// Controller drives the task list. It is safe for concurrent use; no lock is
// held while a request is in flight.
type Controller struct {
	svc  service.Service
	sess SessionGuard
	log  *logging.Logger

	mu       sync.Mutex
	tasks    []service.Task
	filter   service.Status
	order    service.Sort
	selected string
	draft    *Draft
	errMsg   string
	reauth   bool

	// issued is the generation of the latest Refresh started, applied the
	// generation of the collection currently held.
	issued  uint64
	applied uint64
}

// New creates a controller showing the ToDo tab in ascending due date
// order. log may be nil.
func New(svc service.Service, sess SessionGuard, log *logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{
		svc:    svc,
		sess:   sess,
		log:    log.WithComponent("taskview"),
		filter: service.StatusToDo,
		order:  service.SortAscending,
	}
}

// Mount performs the initial fetch. Without a session nothing is fetched
// and ErrLoginRequired is returned.
func (c *Controller) Mount(ctx context.Context) error {
	if !c.sess.IsAuthenticated() {
		return ErrLoginRequired
	}
	return c.Refresh(ctx)
}

// Refresh fetches the tasks under the active sort order and replaces the
// held collection. A response older than the collection already held is
// dropped.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	gen := c.issued
	order := c.order
	c.mu.Unlock()

	tasks, err := c.svc.ListTasks(ctx, order)
	if err != nil {
		return c.fail(err, MsgLoadFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.applied {
		c.log.Debugw("Discarding stale refresh", "generation", gen, "applied", c.applied)
		return nil
	}
	c.tasks = tasks
	c.applied = gen
	c.log.Debugw("Tasks refreshed", "generation", gen, "count", len(tasks), "order", order.String())
	return nil
}

// SetFilter changes the active tab. Nothing is fetched.
func (c *Controller) SetFilter(status service.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = status
}

// Filter returns the active tab.
func (c *Controller) Filter() service.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// SetSort changes the sort order and refreshes once, since ordering is
// done by the server.
func (c *Controller) SetSort(ctx context.Context, order service.Sort) error {
	c.mu.Lock()
	c.order = order
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Sort returns the active sort order.
func (c *Controller) Sort() service.Sort {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order
}

// Tasks returns a copy of the held collection in server order.
func (c *Controller) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]service.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Visible returns the held tasks whose status is the active tab.
func (c *Controller) Visible() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tabLocked(c.filter)
}

// Tab returns the held tasks with the given status, in server order.
func (c *Controller) Tab(status service.Status) []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tabLocked(status)
}

func (c *Controller) tabLocked(status service.Status) []service.Task {
	var out []service.Task
	for _, t := range c.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Task returns the held task with the given id.
func (c *Controller) Task(id string) (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(id)
}

func (c *Controller) findLocked(id string) (service.Task, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// OpenCreate opens an empty form. The status starts on the active tab.
func (c *Controller) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = &Draft{Status: c.filter}
}

// OpenEdit opens a form pre-filled from the held task id.
func (c *Controller) OpenEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	task, ok := c.findLocked(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	c.draft = &Draft{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     dateOnly(task.DueDate),
		Status:      task.Status,
	}
	return nil
}

// SetDraft replaces the form content. The id of the open form is kept.
func (c *Controller) SetDraft(d Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return ErrFormClosed
	}
	d.ID = c.draft.ID
	c.draft = &d
	return nil
}

// Draft returns the open form content.
func (c *Controller) Draft() (Draft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return Draft{}, false
	}
	return *c.draft, true
}

// CloseForm discards the open form.
func (c *Controller) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = nil
}

// IsModalOpen reports whether a form is open.
func (c *Controller) IsModalOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft != nil
}

// IsEditing reports whether the open form edits an existing task.
func (c *Controller) IsEditing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft != nil && c.draft.ID != ""
}

// SubmitDraft validates the open form and creates or updates the task.
// On success the form is closed and the list refreshed. On failure the
// form stays open and the held collection is unchanged.
func (c *Controller) SubmitDraft(ctx context.Context) error {
	draft, ok := c.Draft()
	if !ok {
		return ErrFormClosed
	}

	req := draft.request()
	if err := service.Validate(req); err != nil {
		c.setError(err.Error())
		return err
	}

	var err error
	if draft.ID == "" {
		_, err = c.svc.CreateTask(ctx, req)
	} else {
		_, err = c.svc.UpdateTask(ctx, draft.ID, req)
	}
	if err != nil {
		return c.fail(err, MsgSaveFailed)
	}

	c.log.Infow("Task saved", "id", draft.ID, "title", draft.Title)
	c.mu.Lock()
	c.draft = nil
	c.errMsg = ""
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SetStatus changes the status of task id and refreshes.
func (c *Controller) SetStatus(ctx context.Context, id string, status service.Status) error {
	if _, err := c.svc.UpdateTaskStatus(ctx, id, status); err != nil {
		return c.fail(err, MsgStatusFailed)
	}
	c.log.Infow("Task status updated", "id", id, "status", status.String())
	return c.Refresh(ctx)
}

// Remove deletes task id and refreshes. A selection of that task is
// cleared.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if err := c.svc.DeleteTask(ctx, id); err != nil {
		return c.fail(err, MsgDeleteFailed)
	}
	c.log.Infow("Task deleted", "id", id)

	c.mu.Lock()
	if c.selected == id {
		c.selected = ""
	}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Select marks a held task for the detail view.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.findLocked(id); !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	c.selected = id
	return nil
}

// Selected returns the selected task as currently held.
func (c *Controller) Selected() (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == "" {
		return service.Task{}, false
	}
	return c.findLocked(c.selected)
}

// ClearSelection drops the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = ""
}

// Error returns the current error message, "" when none.
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// ClearError drops the error message.
func (c *Controller) ClearError() {
	c.setError("")
}

// NeedsReauth reports whether a request was rejected for its token.
func (c *Controller) NeedsReauth() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reauth
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = msg
}

// fail records msg and returns err wrapped with it. A 401 also clears the
// session and is reported as ErrReauthRequired.
func (c *Controller) fail(err error, msg string) error {
	log := c.log.WithError(err)
	if errors.Is(err, transport.ErrUnauthorized) {
		if cerr := c.sess.Clear(); cerr != nil {
			log.Warnw("Failed to clear session", "clear_error", cerr.Error())
		}
		c.mu.Lock()
		c.reauth = true
		c.errMsg = ErrReauthRequired.Error()
		c.mu.Unlock()
		log.Infow("Token rejected, session cleared")
		return fmt.Errorf("%w: %w", ErrReauthRequired, err)
	}

	c.setError(msg)
	log.Warnw("Task operation failed", "message", msg)
	return fmt.Errorf("%s: %w", msg, err)
}

// dateOnly trims a server timestamp to its date for the form.
func dateOnly(s string) string {
	t, err := service.ParseDueDate(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}
