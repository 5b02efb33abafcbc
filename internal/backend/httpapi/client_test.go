package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"taskdesk/internal/backend/httpapi"
	"taskdesk/internal/service"
	"taskdesk/internal/testutil"
	"taskdesk/internal/transport"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// newClient starts a FakeAPI and returns a client authenticated with token.
func newClient(t *testing.T, token string) (*httpapi.Client, *testutil.FakeAPI) {
	t.Helper()
	api := testutil.NewFakeAPI(testutil.NewFakeService())
	t.Cleanup(api.Close)
	if token != "" {
		api.AcceptToken(token)
	}

	tr, err := transport.New(api.URL, staticToken(token))
	if err != nil {
		t.Fatalf("failed to create transport: %v", err)
	}
	return httpapi.New(tr), api
}

func TestSignIn_Success(t *testing.T) {
	client, api := newClient(t, "")
	api.Service.AddUser("ann", "secret", "jwt-ann")

	res, err := client.SignIn(context.Background(), service.SignInRequest{UserName: "ann", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsSuccess || res.Token != "jwt-ann" {
		t.Errorf("unexpected result: %+v", res)
	}

	reqs := api.Requests()
	if len(reqs) != 1 || reqs[0].Method != http.MethodPost || reqs[0].Path != "/users/signin" {
		t.Fatalf("unexpected requests: %+v", reqs)
	}
	if reqs[0].Body != `{"userName":"ann","password":"secret"}`+"\n" && reqs[0].Body != `{"userName":"ann","password":"secret"}` {
		t.Errorf("unexpected body: %q", reqs[0].Body)
	}
}

func TestSignIn_Rejected(t *testing.T) {
	client, api := newClient(t, "")
	api.Service.AddUser("ann", "secret", "jwt-ann")

	res, err := client.SignIn(context.Background(), service.SignInRequest{UserName: "ann", Password: "wrong"})
	if err != nil {
		t.Fatalf("rejected sign-in must not be an error: %v", err)
	}
	if res.IsSuccess || res.Token != "" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Message != "Invalid username or password" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestRegister(t *testing.T) {
	client, api := newClient(t, "")

	user, err := client.Register(context.Background(), service.RegisterRequest{
		UserName: "bob", Email: "bob@example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UserName != "bob" || user.Email != "bob@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.Password != "" {
		t.Error("password must not be returned")
	}

	reqs := api.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/users" {
		t.Fatalf("unexpected requests: %+v", reqs)
	}
}

func TestRegister_Conflict(t *testing.T) {
	client, api := newClient(t, "")
	api.Service.AddUser("bob", "pw", "t")

	_, err := client.Register(context.Background(), service.RegisterRequest{
		UserName: "bob", Email: "bob@example.com", Password: "pw",
	})
	var serr *transport.ServerError
	if !errors.As(err, &serr) || serr.Status != http.StatusConflict {
		t.Fatalf("expected 409 server error, got %v", err)
	}
}

func TestCreateThenList_RoundTrip(t *testing.T) {
	client, _ := newClient(t, "tok")
	ctx := context.Background()

	draft := service.TaskRequest{
		Title:       "Buy milk",
		Description: "2 litres",
		Status:      service.StatusInProgress,
		DueDate:     "2024-01-15",
	}
	created, err := client.CreateTask(ctx, draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}

	tasks, err := client.ListTasks(ctx, service.SortAscending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.ID != created.ID || got.Title != draft.Title || got.Description != draft.Description ||
		got.Status != draft.Status || got.DueDate != draft.DueDate {
		t.Errorf("task does not match draft: %+v", got)
	}
}

func TestListTasks_OrderQuery(t *testing.T) {
	client, api := newClient(t, "tok")
	api.Service.AddTask(service.Task{Title: "late", DueDate: "2024-03-01"})
	api.Service.AddTask(service.Task{Title: "early", DueDate: "2024-01-01"})

	tasks, err := client.ListTasks(context.Background(), service.SortDescending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Title != "late" {
		t.Errorf("expected server order (desc), got %+v", tasks)
	}

	reqs := api.Requests()
	last := reqs[len(reqs)-1]
	if last.Path != "/tasks" || last.Query != "order=1" {
		t.Errorf("unexpected request: %+v", last)
	}
	if last.Authorization != "Bearer tok" {
		t.Errorf("expected bearer token, got %q", last.Authorization)
	}
}

func TestUpdateTask_IDInBody(t *testing.T) {
	client, api := newClient(t, "tok")
	task := api.Service.AddTask(service.Task{Title: "old", DueDate: "2024-01-01"})

	_, err := client.UpdateTask(context.Background(), task.ID, service.TaskRequest{
		Title: "new", DueDate: "2024-02-01", Status: service.StatusComplete,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqs := api.Requests()
	last := reqs[len(reqs)-1]
	if last.Method != http.MethodPut || last.Path != "/tasks" {
		t.Fatalf("expected PUT /tasks, got %s %s", last.Method, last.Path)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(last.Body), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["id"] != task.ID {
		t.Errorf("expected id %q in body, got %v", task.ID, body["id"])
	}

	stored := api.Service.Tasks()[0]
	if stored.Title != "new" || stored.Status != service.StatusComplete {
		t.Errorf("task not updated: %+v", stored)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	client, api := newClient(t, "tok")
	task := api.Service.AddTask(service.Task{Title: "x", DueDate: "2024-01-01"})

	if _, err := client.UpdateTaskStatus(context.Background(), task.ID, service.StatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqs := api.Requests()
	last := reqs[len(reqs)-1]
	if last.Method != http.MethodPut || last.Path != "/tasks/status" {
		t.Fatalf("expected PUT /tasks/status, got %s %s", last.Method, last.Path)
	}
	var body service.StatusRequest
	if err := json.Unmarshal([]byte(last.Body), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.ID != task.ID || body.Status != service.StatusInProgress {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestDeleteThenList(t *testing.T) {
	client, api := newClient(t, "tok")
	keep := api.Service.AddTask(service.Task{Title: "keep", DueDate: "2024-01-01"})
	drop := api.Service.AddTask(service.Task{Title: "drop", DueDate: "2024-01-02"})
	ctx := context.Background()

	if err := client.DeleteTask(ctx, drop.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tasks, err := client.ListTasks(ctx, service.SortAscending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, task := range tasks {
		if task.ID == drop.ID {
			t.Errorf("deleted task still listed: %+v", task)
		}
	}
	if len(tasks) != 1 || tasks[0].ID != keep.ID {
		t.Errorf("unexpected tasks: %+v", tasks)
	}

	reqs := api.Requests()
	var sawDelete bool
	for _, r := range reqs {
		if r.Method == http.MethodDelete && r.Path == "/tasks/"+drop.ID {
			sawDelete = true
		}
	}
	if !sawDelete {
		t.Error("expected DELETE /tasks/{id}")
	}
}

func TestDeleteTask_NotFound(t *testing.T) {
	client, _ := newClient(t, "tok")

	err := client.DeleteTask(context.Background(), "missing")
	var serr *transport.ServerError
	if !errors.As(err, &serr) || serr.Status != http.StatusNotFound || serr.Message != "Task not found" {
		t.Fatalf("expected 404 Task not found, got %v", err)
	}
}

func TestListTasks_Unauthorized(t *testing.T) {
	client, _ := newClient(t, "")

	_, err := client.ListTasks(context.Background(), service.SortAscending)
	if !errors.Is(err, transport.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
