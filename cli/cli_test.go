package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"focusdeck/app"
	"focusdeck/kanban"
	"focusdeck/store"
)

type cliEnv struct {
	dataDir string
	config  string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return cliEnv{
		dataDir: t.TempDir(),
		config:  filepath.Join(t.TempDir(), "missing.toml"),
	}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.config, "--data-dir", e.dataDir}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func (e cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("focusdeck %v failed: %v\nstdout:\n%s", args, err, out)
	}
	return out
}

func TestTodoAddListToggle(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "todo", "add", "Buy", "milk")
	if !strings.HasPrefix(out, "added ") || !strings.Contains(out, "Buy milk") {
		t.Fatalf("unexpected add output %q", out)
	}
	id := strings.Fields(out)[1]

	list := env.mustRun(t, "todo", "ls")
	if !strings.Contains(list, "[ ] Buy milk  (Current Tasks)") {
		t.Fatalf("unexpected list output %q", list)
	}

	toggled := env.mustRun(t, "todo", "toggle", id)
	if !strings.HasPrefix(toggled, "completed ") {
		t.Fatalf("unexpected toggle output %q", toggled)
	}

	finished := env.mustRun(t, "todo", "ls", "--group", "finished")
	if !strings.Contains(finished, "[x] Buy milk") {
		t.Fatalf("completed todo should be listed under finished, got %q", finished)
	}
	current := env.mustRun(t, "todo", "ls", "--group", "Current Tasks")
	if current != "no todos\n" {
		t.Fatalf("expected empty current group, got %q", current)
	}
}

func TestTodoErrors(t *testing.T) {
	env := newCLIEnv(t)

	if _, err := env.run(t, "todo", "add", "   "); !errors.Is(err, app.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := env.run(t, "todo", "add", "x", "--group", "nope"); !errors.Is(err, app.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
	if _, err := env.run(t, "todo", "toggle", "zzz"); !errors.Is(err, app.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestStatePersistsToDataDir(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "todo", "add", "persist me")

	state, report := store.LoadState(store.NewFileBackend(env.dataDir))
	if report.Source != store.SourceStored {
		t.Fatalf("expected stored snapshot, got %+v", report)
	}
	if len(state.Todos) != 1 || state.Todos[0].Text != "persist me" {
		t.Fatalf("unexpected todos %+v", state.Todos)
	}
}

func TestSQLiteStorageFlag(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "--storage", "sqlite", "todo", "add", "in sqlite")

	if _, err := os.Stat(filepath.Join(env.dataDir, "focusdeck.db")); err != nil {
		t.Fatalf("expected sqlite database: %v", err)
	}
	out := env.mustRun(t, "--storage", "sqlite", "todo", "ls")
	if !strings.Contains(out, "in sqlite") {
		t.Fatalf("sqlite todo not listed: %q", out)
	}
	if out := env.mustRun(t, "todo", "ls"); out != "no todos\n" {
		t.Fatalf("json storage should be untouched, got %q", out)
	}
}

func TestBoardAddAndList(t *testing.T) {
	env := newCLIEnv(t)

	env.mustRun(t, "board", "add", "todo", "Write", "report")
	env.mustRun(t, "board", "add", "in progress", "Review", "-d", "second pass")

	out := env.mustRun(t, "board", "ls")
	for _, want := range []string{"To Do [todo] (1)", "  - Write report", "In Progress [inProgress] (1)", "  - Review", "Done [done] (0)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("board output missing %q:\n%s", want, out)
		}
	}

	if _, err := env.run(t, "board", "add", "backlog", "x"); !errors.Is(err, kanban.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestStatsAndExport(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "todo", "add", "open item")

	stats := env.mustRun(t, "stats")
	if !strings.Contains(stats, "pending:   1") || !strings.Contains(stats, "sessions:  0") {
		t.Fatalf("unexpected stats %q", stats)
	}

	doc := env.mustRun(t, "export")
	if !strings.HasPrefix(doc, "---\n") || !strings.Contains(doc, "- [ ] open item") {
		t.Fatalf("unexpected export %q", doc)
	}

	path := filepath.Join(t.TempDir(), "out", "today.md")
	if out := env.mustRun(t, "export", "-o", path); out != "" {
		t.Fatalf("export to file should not print, got %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != doc {
		t.Fatalf("file export differs from stdout export")
	}
}

func TestInvalidStorageFlag(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run(t, "--storage", "redis", "todo", "ls"); err == nil {
		t.Fatalf("expected an error for unknown storage")
	}
}

func TestTodoEditDeadlineAndGroup(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "todo", "add", "file", "taxes", "--deadline", "2026-03-01 17:30")
	id := strings.Fields(out)[1]
	if list := env.mustRun(t, "todo", "ls"); !strings.Contains(list, "file taxes  (Current Tasks)  due 2026-03-01 17:30") {
		t.Fatalf("deadline not listed: %q", list)
	}

	env.mustRun(t, "todo", "edit", id, "--deadline", "09:15", "--text", "file the taxes")
	if list := env.mustRun(t, "todo", "ls"); !strings.Contains(list, "file the taxes  (Current Tasks)  due 2026-03-01 09:15") {
		t.Fatalf("a bare time should keep the date: %q", list)
	}

	env.mustRun(t, "todo", "edit", id, "--clear-deadline", "--group", "finished")
	list := env.mustRun(t, "todo", "ls", "--group", "Finished")
	if !strings.Contains(list, "file the taxes  (Finished)\n") {
		t.Fatalf("expected todo moved without a deadline, got %q", list)
	}
}

func TestTodoEditErrors(t *testing.T) {
	env := newCLIEnv(t)
	id := strings.Fields(env.mustRun(t, "todo", "add", "x"))[1]

	if _, err := env.run(t, "todo", "edit", id); !errors.Is(err, errNothingToEdit) {
		t.Fatalf("expected errNothingToEdit, got %v", err)
	}
	if _, err := env.run(t, "todo", "edit", id, "--deadline", "someday"); !errors.Is(err, app.ErrInvalidDeadline) {
		t.Fatalf("expected ErrInvalidDeadline, got %v", err)
	}
	if _, err := env.run(t, "todo", "edit", id, "--group", "garden"); !errors.Is(err, app.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
	if _, err := env.run(t, "todo", "edit", id, "--deadline", "18:00", "--clear-deadline"); err == nil {
		t.Fatalf("expected --deadline and --clear-deadline to conflict")
	}
	if _, err := env.run(t, "todo", "add", "y", "--deadline", "later"); !errors.Is(err, app.ErrInvalidDeadline) {
		t.Fatalf("expected ErrInvalidDeadline on add, got %v", err)
	}
	if out := env.mustRun(t, "todo", "ls"); strings.Contains(out, " y ") {
		t.Fatalf("a rejected add must not create a todo: %q", out)
	}
}

func TestPomodoroSettings(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "pomodoro")
	if !strings.Contains(out, "work:       25 min") || !strings.Contains(out, "break:      5 min") || !strings.Contains(out, "auto-break: false") {
		t.Fatalf("unexpected defaults %q", out)
	}

	env.mustRun(t, "pomodoro", "--break", "10", "--auto-break")
	out = env.mustRun(t, "pomodoro")
	if !strings.Contains(out, "work:       25 min") || !strings.Contains(out, "break:      10 min") || !strings.Contains(out, "auto-break: true") {
		t.Fatalf("settings not saved: %q", out)
	}

	if _, err := env.run(t, "pomodoro", "--work", "0"); !errors.Is(err, app.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
}
