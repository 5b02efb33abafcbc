package testutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"taskdesk/internal/service"
	"taskdesk/internal/transport"
)

// RecordedRequest is one request seen by FakeAPI.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          string
}

// FakeAPI serves the task HTTP API over httptest, backed by a FakeService.
// Task routes require a bearer token issued by sign-in or AcceptToken.
type FakeAPI struct {
	*httptest.Server
	Service *FakeService

	mu       sync.Mutex
	tokens   map[string]bool
	requests []RecordedRequest
}

// NewFakeAPI starts a server. Close it when done.
func NewFakeAPI(svc *FakeService) *FakeAPI {
	api := &FakeAPI{Service: svc, tokens: make(map[string]bool)}

	r := mux.NewRouter()
	r.Use(api.record)
	r.HandleFunc("/users/signin", api.signIn).Methods(http.MethodPost)
	r.HandleFunc("/users", api.register).Methods(http.MethodPost)

	tasks := r.PathPrefix("/tasks").Subrouter()
	tasks.Use(api.requireToken)
	tasks.HandleFunc("", api.listTasks).Methods(http.MethodGet)
	tasks.HandleFunc("", api.createTask).Methods(http.MethodPost)
	tasks.HandleFunc("", api.updateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/status", api.updateStatus).Methods(http.MethodPut)
	tasks.HandleFunc("/{id}", api.deleteTask).Methods(http.MethodDelete)

	api.Server = httptest.NewServer(r)
	return api
}

// AcceptToken makes token valid for task routes.
func (a *FakeAPI) AcceptToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens[token] = true
}

// RevokeTokens invalidates every token, so task routes answer 401.
func (a *FakeAPI) RevokeTokens() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens = make(map[string]bool)
}

// Requests returns the requests seen so far.
func (a *FakeAPI) Requests() []RecordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]RecordedRequest, len(a.requests))
	copy(out, a.requests)
	return out
}

func (a *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		a.mu.Lock()
		a.requests = append(a.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		a.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		a.mu.Lock()
		ok := a.tokens[token]
		a.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type envelope struct {
	Data      any    `json:"data"`
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var serr *transport.ServerError
	if errors.As(err, &serr) {
		status = serr.Status
	}
	msg := err.Error()
	if serr != nil {
		msg = serr.Message
	}
	writeJSON(w, status, envelope{IsSuccess: false, Message: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid body"})
		return false
	}
	return true
}

func (a *FakeAPI) signIn(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := a.Service.SignIn(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.IsSuccess {
		a.AcceptToken(res.Token)
	}
	writeJSON(w, http.StatusOK, envelope{Data: res.Token, IsSuccess: res.IsSuccess, Message: res.Message})
}

func (a *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := a.Service.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: user, IsSuccess: true, Message: "User created"})
}

func (a *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	order, err := service.ParseSort(r.URL.Query().Get("order"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: err.Error()})
		return
	}
	tasks, err := a.Service.ListTasks(r.Context(), order)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	writeJSON(w, http.StatusOK, envelope{Data: tasks, IsSuccess: true})
}

func (a *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var req service.TaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := a.Service.CreateTask(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: task, IsSuccess: true})
}

func (a *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	var req service.TaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := a.Service.UpdateTask(r.Context(), req.ID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: task, IsSuccess: true})
}

func (a *FakeAPI) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req service.StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := a.Service.UpdateTaskStatus(r.Context(), req.ID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: task, IsSuccess: true})
}

func (a *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.Service.DeleteTask(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{IsSuccess: true, Message: "Task deleted"})
}
