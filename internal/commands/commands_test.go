package commands_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/spf13/pflag"

	"taskdesk/internal/commands"
	"taskdesk/internal/config"
	"taskdesk/internal/exitcode"
	"taskdesk/internal/service"
	"taskdesk/internal/session"
	"taskdesk/internal/testutil"
	"taskdesk/internal/transport"
)

// newEnv returns an env over svc with an in-memory session holding token.
func newEnv(t *testing.T, svc service.Service, token string, quiet bool) *commands.Env {
	t.Helper()
	sess, err := session.Open(session.NewMemoryStore(token))
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	cfg := config.Default(t.TempDir())
	cfg.Quiet = quiet
	return &commands.Env{Config: cfg, Service: svc, Session: sess}
}

// runCommand parses args with the command's flags and runs it.
func runCommand(t *testing.T, cmd commands.Command, env *commands.Env, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), env, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func sampleTasks(svc *testutil.FakeService) {
	svc.AddTask(service.Task{Title: "Call mom", DueDate: "2024-01-20"})
	svc.AddTask(service.Task{Title: "Buy milk", DueDate: "2024-01-15T00:00:00"})
	svc.AddTask(service.Task{Title: "Write report", Status: service.StatusInProgress, DueDate: "2024-01-10"})
}

func expectCode(t *testing.T, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("expected exit code %d, got %d", want, got)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, newEnv(t, nil, "", false))

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskdesk 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, newEnv(t, nil, "", false))

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !bytes.Contains([]byte(stdout), []byte("Usage:")) {
		t.Error("help output should contain 'Usage:'")
	}
	if !bytes.Contains([]byte(stdout), []byte("  list       List tasks (ls)\n")) {
		t.Errorf("help output should list registered commands, got:\n%s", stdout)
	}
}

// Tests for list command
func TestListCommand_ToDoTab(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, newEnv(t, svc, "tok", false))

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  2024-01-15  Buy milk\n   2  2024-01-20  Call mom\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_StatusFlag(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, newEnv(t, svc, "tok", false), "--status", "in-progress")

	expectCode(t, exitcode.Success, code)
	expected := "   1  2024-01-10  Write report\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_SortDescending(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, newEnv(t, svc, "tok", false), "--sort", "desc")

	expectCode(t, exitcode.Success, code)
	expected := "   1  2024-01-20  Call mom\n   2  2024-01-15  Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	if len(svc.ListCalls) != 1 || svc.ListCalls[0] != service.SortDescending {
		t.Errorf("expected a single descending fetch, got %v", svc.ListCalls)
	}
}

func TestListCommand_All(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, newEnv(t, svc, "tok", false), "--all")

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "list_all", stdout)
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.ListCmd{}, newEnv(t, svc, "tok", false))
	expectCode(t, exitcode.Success, code)
	if stdout != "no tasks found\n" {
		t.Errorf("expected %q, got %q", "no tasks found\n", stdout)
	}

	// Quiet mode should suppress "no tasks found"
	stdout, _, code = runCommand(t, &commands.ListCmd{}, newEnv(t, svc, "tok", true))
	expectCode(t, exitcode.Success, code)
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_InvalidFlags(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.ListCmd{}, newEnv(t, svc, "tok", false), "--status", "later")
	expectCode(t, exitcode.UserError, code)
	if stderr != "error: invalid status: later\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}

	_, stderr, code = runCommand(t, &commands.ListCmd{}, newEnv(t, svc, "tok", false), "--sort", "random")
	expectCode(t, exitcode.UserError, code)
	if stderr != "error: invalid sort order: random\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if svc.ListCount() != 0 {
		t.Error("nothing should be fetched")
	}
}

func TestListCommand_NotLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.ListCmd{}, newEnv(t, svc, "", false))

	expectCode(t, exitcode.AuthError, code)
	if stderr != "error: not logged in (run: taskdesk login)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if svc.ListCount() != 0 {
		t.Error("nothing should be fetched")
	}
}

func TestListCommand_TokenRejected(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = &transport.ServerError{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	env := newEnv(t, svc, "stale", false)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, env)

	expectCode(t, exitcode.AuthError, code)
	if stderr != "error: session expired (run: taskdesk login)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if env.Session.IsAuthenticated() {
		t.Error("rejected session should be cleared")
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = &transport.NetworkError{Message: "connection refused"}

	_, stderr, code := runCommand(t, &commands.ListCmd{}, newEnv(t, svc, "tok", false))

	expectCode(t, exitcode.BackendError, code)
	expected := "error: backend error: failed to load tasks: network error: connection refused\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, newEnv(t, svc, "tok", false),
		"--due", "2024-01-15", "--desc", "2 litres", "Buy", "milk")

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}

	if len(svc.CreateCalls) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(svc.CreateCalls))
	}
	req := svc.CreateCalls[0]
	if req.Title != "Buy milk" || req.Description != "2 litres" || req.DueDate != "2024-01-15" || req.Status != service.StatusToDo {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.CreateCmd{}, newEnv(t, svc, "tok", true),
		"--due", "2024-01-15", "--status", "p", "Write report")

	expectCode(t, exitcode.Success, code)
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
	if len(svc.CreateCalls) != 1 || svc.CreateCalls[0].Status != service.StatusInProgress {
		t.Errorf("unexpected create calls: %+v", svc.CreateCalls)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, newEnv(t, svc, "tok", false), "--due", "2024-01-15")

	expectCode(t, exitcode.UserError, code)
	if stderr != "error: title required\n" {
		t.Errorf("expected %q, got %q", "error: title required\n", stderr)
	}
}

func TestAddCommand_DueDateValidation(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"Buy milk"}, "error: due date required\n"},
		{[]string{"--due", "15/01/2024", "Buy milk"}, "error: invalid due date: expected YYYY-MM-DD\n"},
	}
	for _, tt := range tests {
		svc := testutil.NewFakeService()
		_, stderr, code := runCommand(t, &commands.AddCmd{}, newEnv(t, svc, "tok", false), tt.args...)

		expectCode(t, exitcode.UserError, code)
		if stderr != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.want, stderr)
		}
		if len(svc.CreateCalls) != 0 {
			t.Errorf("%v: nothing should be sent", tt.args)
		}
	}
}

func TestAddCommand_ServerRejects(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = &transport.ServerError{Status: http.StatusBadRequest, Message: "Title too long"}

	_, stderr, code := runCommand(t, &commands.AddCmd{}, newEnv(t, svc, "tok", false), "--due", "2024-01-15", "x")

	expectCode(t, exitcode.UserError, code)
	expected := "error: failed to save task: server error 400: Title too long\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

// Tests for edit command
func TestEditCommand_OnlyChangedFields(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, newEnv(t, svc, "tok", false), "1", "--title", "Buy oat milk")

	expectCode(t, exitcode.Success, code)
	if stderr != "" || stdout != "ok\n" {
		t.Errorf("unexpected output: %q / %q", stdout, stderr)
	}
	if len(svc.UpdateCalls) != 1 {
		t.Fatalf("expected 1 update call, got %d", len(svc.UpdateCalls))
	}
	req := svc.UpdateCalls[0]
	if req.Title != "Buy oat milk" || req.DueDate != "2024-01-15" || req.Status != service.StatusToDo {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestEditCommand_Status(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	_, _, code := runCommand(t, &commands.EditCmd{}, newEnv(t, svc, "tok", false), "p1", "--status", "complete", "--due", "2024-02-01")

	expectCode(t, exitcode.Success, code)
	req := svc.UpdateCalls[0]
	if req.Title != "Write report" || req.Status != service.StatusComplete || req.DueDate != "2024-02-01" {
		t.Errorf("unexpected request: %+v", req)
	}
}

// Tests for done and status commands
func TestDoneCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, newEnv(t, svc, "tok", false), "2")

	expectCode(t, exitcode.Success, code)
	if stderr != "" || stdout != "ok\n" {
		t.Errorf("unexpected output: %q / %q", stdout, stderr)
	}
	if len(svc.StatusCalls) != 1 {
		t.Fatalf("expected 1 status call, got %d", len(svc.StatusCalls))
	}
	call := svc.StatusCalls[0]
	if call.ID != "task-1" || call.Status != service.StatusComplete {
		t.Errorf("expected task-1 (Call mom) completed, got %+v", call)
	}
}

func TestDoneCommand_NoRef(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, newEnv(t, svc, "tok", false))

	expectCode(t, exitcode.UserError, code)
	if stderr != "error: task reference required\n" {
		t.Errorf("expected %q, got %q", "error: task reference required\n", stderr)
	}
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, newEnv(t, svc, "tok", false), "5")

	expectCode(t, exitcode.UserError, code)
	if stderr != "error: task number out of range: t5\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if len(svc.StatusCalls) != 0 {
		t.Error("no update should be sent")
	}
}

func TestStatusCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	_, _, code := runCommand(t, &commands.StatusCmd{}, newEnv(t, svc, "tok", false), "p", "1", "todo")

	expectCode(t, exitcode.Success, code)
	if len(svc.StatusCalls) != 1 || svc.StatusCalls[0].ID != "task-3" || svc.StatusCalls[0].Status != service.StatusToDo {
		t.Errorf("unexpected status calls: %+v", svc.StatusCalls)
	}
}

func TestStatusCommand_MissingStatus(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.StatusCmd{}, newEnv(t, svc, "tok", false), "t1")

	expectCode(t, exitcode.UserError, code)
	if stderr != "error: status required\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestStatusCommand_Failure(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)
	svc.UpdateStatusErr = &transport.ServerError{Status: http.StatusInternalServerError, Message: "Internal Server Error"}

	_, stderr, code := runCommand(t, &commands.StatusCmd{}, newEnv(t, svc, "tok", false), "t1", "complete")

	expectCode(t, exitcode.BackendError, code)
	expected := "error: backend error: failed to update task status: server error 500: Internal Server Error\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

// Tests for rm and show commands
func TestRmCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	stdout, _, code := runCommand(t, &commands.RmCmd{}, newEnv(t, svc, "tok", false), "task-3")

	expectCode(t, exitcode.Success, code)
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if len(svc.DeleteCalls) != 1 || svc.DeleteCalls[0] != "task-3" {
		t.Errorf("unexpected delete calls: %v", svc.DeleteCalls)
	}
	for _, task := range svc.Tasks() {
		if task.ID == "task-3" {
			t.Error("task should be deleted")
		}
	}
}

func TestRmCommand_UnknownID(t *testing.T) {
	svc := testutil.NewFakeService()
	sampleTasks(svc)

	_, stderr, code := runCommand(t, &commands.RmCmd{}, newEnv(t, svc, "tok", false), "task-99")

	expectCode(t, exitcode.UserError, code)
	if stderr != "error: task not found: task-99\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if len(svc.DeleteCalls) != 0 {
		t.Error("no delete should be sent")
	}
}

func TestShowCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{Title: "Buy milk", Description: "2 litres", DueDate: "2024-01-15T00:00:00"})

	stdout, stderr, code := runCommand(t, &commands.ShowCmd{}, newEnv(t, svc, "tok", false), "t1")

	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "show", stdout)
}
