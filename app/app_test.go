package app

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"focusdeck/model"
)

type fakeClock struct{ now time.Time }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 2, 19, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time               { return c.now }
func (c *fakeClock) Advance(d time.Duration)      { c.now = c.now.Add(d) }
func (c *fakeClock) At(d time.Duration) time.Time { return c.now.Add(d) }

type seqIDs struct{ n int }

func (g *seqIDs) New() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func newTestService() (*Service, *fakeClock) {
	clock := newClock()
	return NewService(model.NewState(), WithClock(clock), WithIDs(&seqIDs{})), clock
}

func mustAddTodo(t *testing.T, svc *Service, text, group string) model.TodoItem {
	t.Helper()
	todo, err := svc.AddTodo(text, group)
	if err != nil {
		t.Fatalf("add todo failed: %v", err)
	}
	return todo
}

func TestBuyMilkScenario(t *testing.T) {
	svc, clock := newTestService()
	todo := mustAddTodo(t, svc, "Buy milk", model.GroupCurrent)

	todos := svc.Todos()
	if len(todos) != 1 || todos[0].Completed || todos[0].CompletedAt != nil {
		t.Fatalf("unexpected initial todos %+v", todos)
	}

	done, err := svc.ToggleTodo(todo.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil || !done.CompletedAt.Equal(clock.now) || done.GroupID != model.GroupFinished {
		t.Fatalf("unexpected completed todo %+v", done)
	}

	open, err := svc.ToggleTodo(todo.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if open.Completed || open.CompletedAt != nil || open.GroupID != model.GroupCurrent {
		t.Fatalf("unexpected reopened todo %+v", open)
	}
}

func TestToggleIsAnInvolutionExceptForGroup(t *testing.T) {
	svc, _ := newTestService()
	g, err := svc.AddGroup("Errands")
	if err != nil {
		t.Fatalf("add group failed: %v", err)
	}
	todo := mustAddTodo(t, svc, "post office", g.ID)

	_, _ = svc.ToggleTodo(todo.ID)
	back, _ := svc.ToggleTodo(todo.ID)

	if back.Completed != todo.Completed || back.CompletedAt != nil {
		t.Fatalf("completion not restored: %+v", back)
	}
	if back.GroupID != model.GroupCurrent {
		t.Fatalf("expected re-filing to current, got %q", back.GroupID)
	}
}

func TestAddTodoValidation(t *testing.T) {
	svc, _ := newTestService()
	var notified int
	svc.Subscribe(func(model.AppState) { notified++ })

	if _, err := svc.AddTodo("   ", ""); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if notified != 0 || len(svc.Todos()) != 0 {
		t.Fatalf("rejected add must not change state")
	}

	todo := mustAddTodo(t, svc, "  trimmed  ", "")
	if todo.Text != "trimmed" || todo.GroupID != model.GroupCurrent || todo.Category != "General" {
		t.Fatalf("unexpected todo %+v", todo)
	}
	if notified != 1 {
		t.Fatalf("expected one notification, got %d", notified)
	}
}

func TestUpdateTodoPatch(t *testing.T) {
	svc, clock := newTestService()
	todo := mustAddTodo(t, svc, "draft", "")
	deadline := clock.At(48 * time.Hour)
	text := "final"
	link := " https://example.com "

	got, err := svc.UpdateTodo(todo.ID, TodoPatch{Text: &text, Deadline: &deadline, Link: &link})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Text != "final" || got.Deadline == nil || !got.Deadline.Equal(deadline) || got.Link != "https://example.com" {
		t.Fatalf("unexpected patched todo %+v", got)
	}

	got, err = svc.UpdateTodo(todo.ID, TodoPatch{ClearDeadline: true})
	if err != nil || got.Deadline != nil {
		t.Fatalf("expected deadline cleared, got %+v (%v)", got, err)
	}

	empty := " "
	if _, err := svc.UpdateTodo(todo.ID, TodoPatch{Text: &empty}); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := svc.UpdateTodo("missing", TodoPatch{Text: &text}); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestDeleteAndClearTodos(t *testing.T) {
	svc, _ := newTestService()
	a := mustAddTodo(t, svc, "a", "")
	b := mustAddTodo(t, svc, "b", "")
	mustAddTodo(t, svc, "c", "")
	_, _ = svc.ToggleTodo(b.ID)

	svc.DeleteTodo("missing")
	svc.DeleteTodo(a.ID)
	if len(svc.Todos()) != 2 {
		t.Fatalf("expected 2 todos after delete, got %d", len(svc.Todos()))
	}

	if n := svc.ClearCompleted(); n != 1 {
		t.Fatalf("expected 1 cleared, got %d", n)
	}
	if n := svc.ClearAllTodos(); n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if len(svc.Todos()) != 0 {
		t.Fatalf("expected empty list")
	}
}

func TestGroups(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.AddGroup(" "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	g, err := svc.AddGroup(" Side ")
	if err != nil {
		t.Fatalf("add group failed: %v", err)
	}
	if g.Name != "Side" || g.Type != model.GroupCustom {
		t.Fatalf("unexpected group %+v", g)
	}

	if err := svc.DeleteGroup(model.GroupCurrent); !errors.Is(err, ErrSystemGroup) {
		t.Fatalf("expected ErrSystemGroup, got %v", err)
	}
	if err := svc.DeleteGroup("missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}

	todo := mustAddTodo(t, svc, "orphan soon", g.ID)
	if got := svc.TodosInGroup(g.ID); len(got) != 1 {
		t.Fatalf("expected todo in custom group, got %+v", got)
	}
	if err := svc.DeleteGroup(g.ID); err != nil {
		t.Fatalf("delete group failed: %v", err)
	}

	kept, err := svc.Todo(todo.ID)
	if err != nil || kept.GroupID != g.ID {
		t.Fatalf("delete must not cascade: %+v (%v)", kept, err)
	}
	if got := svc.TodosInGroup(model.GroupCurrent); len(got) != 1 || got[0].ID != todo.ID {
		t.Fatalf("orphaned todo must show under current, got %+v", got)
	}
	if len(svc.Groups()) != 2 {
		t.Fatalf("expected only system groups left, got %+v", svc.Groups())
	}
}

func TestSubtasks(t *testing.T) {
	svc, _ := newTestService()
	todo := mustAddTodo(t, svc, "parent", "")

	if _, err := svc.AddSubtask("missing", "x"); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
	if _, err := svc.AddSubtask(todo.ID, ""); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}

	sub, err := svc.AddSubtask(todo.ID, "child")
	if err != nil {
		t.Fatalf("add subtask failed: %v", err)
	}
	if err := svc.ToggleSubtask(todo.ID, sub.ID); err != nil {
		t.Fatalf("toggle subtask failed: %v", err)
	}
	got, _ := svc.Todo(todo.ID)
	if len(got.Subtasks) != 1 || !got.Subtasks[0].Completed {
		t.Fatalf("unexpected subtasks %+v", got.Subtasks)
	}

	if err := svc.DeleteSubtask(todo.ID, sub.ID); err != nil {
		t.Fatalf("delete subtask failed: %v", err)
	}
	got, _ = svc.Todo(todo.ID)
	if len(got.Subtasks) != 0 {
		t.Fatalf("expected no subtasks, got %+v", got.Subtasks)
	}
}

func TestTodoPrefixReference(t *testing.T) {
	svc := NewService(model.NewState())
	svc.Set(func(st model.AppState) model.AppState {
		st.Todos = []model.TodoItem{{ID: "abc123", Text: "a"}, {ID: "abd456", Text: "b"}}
		return st
	})

	if got, err := svc.Todo("abc"); err != nil || got.Text != "a" {
		t.Fatalf("expected prefix match, got %+v (%v)", got, err)
	}
	if _, err := svc.Todo("ab"); !errors.Is(err, ErrAmbiguousRef) {
		t.Fatalf("expected ErrAmbiguousRef, got %v", err)
	}
	if _, err := svc.Todo("zz"); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestFocusOnTodo(t *testing.T) {
	svc, _ := newTestService()
	_ = svc.SetView(model.ViewTodo)
	todo := mustAddTodo(t, svc, "write report", "")

	if err := svc.FocusOnTodo(todo.ID); err != nil {
		t.Fatalf("focus failed: %v", err)
	}
	st := svc.State()
	if st.SessionName != "write report" || st.CurrentView != model.ViewFocus {
		t.Fatalf("unexpected state %q %q", st.SessionName, st.CurrentView)
	}
}

func TestSetViewValidation(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.SetView("SETTINGS"); !errors.Is(err, ErrInvalidView) {
		t.Fatalf("expected ErrInvalidView, got %v", err)
	}
	if err := svc.SetView(model.ViewJournal); err != nil || svc.State().CurrentView != model.ViewJournal {
		t.Fatalf("set view failed: %v", err)
	}
}

func TestSubscribersSeeSnapshotsInOrder(t *testing.T) {
	svc, _ := newTestService()
	var order []string
	cancelA := svc.Subscribe(func(st model.AppState) { order = append(order, "a:"+st.Notes) })
	svc.Subscribe(func(st model.AppState) {
		order = append(order, "b:"+st.Notes)
		st.Notes = "mutated by subscriber"
	})

	svc.SetNotes("one")
	cancelA()
	cancelA()
	svc.SetNotes("two")

	want := []string{"a:one", "b:one", "b:two"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Fatalf("unexpected notifications %v", order)
	}
	if svc.State().Notes != "two" {
		t.Fatalf("subscriber copy must not leak into state")
	}
}

func TestStateIsACopy(t *testing.T) {
	svc, _ := newTestService()
	mustAddTodo(t, svc, "a", "")

	st := svc.State()
	st.Todos[0].Text = "changed"
	st.Groups = nil

	if svc.Todos()[0].Text != "a" || len(svc.Groups()) != 2 {
		t.Fatalf("state snapshot aliases service state")
	}
}

func TestAddSessionFillsDefaults(t *testing.T) {
	svc, clock := newTestService()
	got := svc.AddSession(model.Session{Duration: 60, Mode: model.ModeStopwatch})
	if got.ID == "" || !got.Date.Equal(clock.now) {
		t.Fatalf("expected id and date to be filled, got %+v", got)
	}
	if len(svc.Sessions()) != 1 {
		t.Fatalf("expected one session")
	}
}

func TestPlaylistOperations(t *testing.T) {
	svc, _ := newTestService()

	for i := 0; i < 2; i++ {
		if err := svc.AddToPlaylist("https://youtu.be/x"); err != nil {
			t.Fatalf("add to playlist failed: %v", err)
		}
	}
	m := svc.State().Media
	if len(m.YouTubePlaylist) != 2 || m.YouTubeURL != "https://youtu.be/x" {
		t.Fatalf("unexpected media %+v", m)
	}

	svc.RemoveFromPlaylist("https://youtu.be/x")
	if got := svc.State().Media.YouTubeURL; got != model.DefaultYouTubeURL {
		t.Fatalf("expected fallback to first entry, got %q", got)
	}

	if err := svc.SetMediaType("VHS"); err == nil {
		t.Fatalf("expected invalid media type error")
	}
	svc.SetPlayerOpen(false)
	if svc.State().Media.PlayerOpen {
		t.Fatalf("expected player closed")
	}
}
