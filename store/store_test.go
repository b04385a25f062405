package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"focusdeck/model"
)

func sampleState(label string) model.AppState {
	now := time.Date(2026, 2, 19, 12, 30, 0, 0, time.UTC)
	state := model.NewState()
	state.CurrentView = model.ViewTodo
	state.SessionName = "session-" + label
	state.Sessions = []model.Session{{ID: "s-" + label, Date: now, Duration: 1500, Mode: model.ModePomodoro}}
	state.Todos = []model.TodoItem{
		{ID: "todo-" + label, Text: "Task-" + label, GroupID: model.GroupCurrent},
		{ID: "done-" + label, Text: "Done-" + label, Completed: true, CompletedAt: &now, GroupID: model.GroupFinished},
	}
	state.Groups = append(state.Groups, model.Group{ID: "g-" + label, Name: "Work", Type: model.GroupCustom})
	state.Notes = "notes " + label
	return state
}

func writeRaw(t *testing.T, b *FileBackend, key, data string) {
	t.Helper()
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(b.Path(key), []byte(data), 0o644); err != nil {
		t.Fatalf("write raw failed: %v", err)
	}
}

func TestLoadMissingKeyReturnsDefaults(t *testing.T) {
	b := NewFileBackend(t.TempDir())

	state, report := LoadState(b)
	if !reflect.DeepEqual(model.NewState(), state) {
		t.Fatalf("unexpected state for missing key\nwant=%+v\ngot=%+v", model.NewState(), state)
	}
	if report.Source != SourceDefaults || report.Err != nil {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Message() != "" {
		t.Fatalf("expected silent report, got %q", report.Message())
	}

	board, report := LoadBoard(b)
	if !reflect.DeepEqual(model.NewBoard(), board) {
		t.Fatalf("unexpected board for missing key: %+v", board)
	}
	if report.Source != SourceDefaults {
		t.Fatalf("unexpected board report %+v", report)
	}
}

func TestSaveThenLoad(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	saver := NewAutosaver(b, nil)
	want := sampleState("a")

	saver.State(want)
	if err := saver.Err(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, report := LoadState(b)
	if report.Source != SourceStored {
		t.Fatalf("expected stored source, got %+v", report)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("save/load mismatch\nwant=%+v\ngot=%+v", want, got)
	}
}

func TestSaveThenLoadBoard(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	saver := NewAutosaver(b, nil)
	want := model.NewBoard()
	want.Columns[1].Tasks = []model.KanbanTask{{ID: "k1", Content: "ship", Description: "v1"}}

	saver.Board(want)

	data, err := os.ReadFile(b.Path(BoardKey))
	if err != nil {
		t.Fatalf("read board file failed: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		t.Fatalf("board must be stored as a bare column array, got %s", data)
	}

	got, _ := LoadBoard(b)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("board mismatch\nwant=%+v\ngot=%+v", want, got)
	}
}

func TestWriteCreatesBackupAndPersistsLatestState(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	saver := NewAutosaver(b, nil)
	initial := sampleState("old")
	updated := sampleState("new")

	saver.State(initial)
	saver.State(updated)

	gotLatest, _ := LoadState(b)
	if !reflect.DeepEqual(updated, gotLatest) {
		t.Fatalf("latest state mismatch\nwant=%+v\ngot=%+v", updated, gotLatest)
	}

	data, err := os.ReadFile(b.Path(StateKey) + ".bak")
	if err != nil {
		t.Fatalf("read backup failed: %v", err)
	}
	gotBackup, err := DecodeState(data)
	if err != nil {
		t.Fatalf("decode backup failed: %v", err)
	}
	if !reflect.DeepEqual(initial, gotBackup) {
		t.Fatalf("backup mismatch\nwant=%+v\ngot=%+v", initial, gotBackup)
	}
}

func TestRotatingBackupsArePruned(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	saver := NewAutosaver(b, nil)

	saver.State(sampleState("seed"))
	for i := 0; i < 15; i++ {
		saver.State(sampleState(fmt.Sprintf("%d", i)))
		time.Sleep(1 * time.Millisecond)
	}

	files, err := filepath.Glob(b.Path(StateKey) + ".bak.*")
	if err != nil {
		t.Fatalf("glob rotating backups failed: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("expected rotating backups, found none")
	}
	if len(files) > maxRotatingBackups {
		t.Fatalf("expected at most %d rotating backups, got %d", maxRotatingBackups, len(files))
	}
}

func TestLoadRecoversFromBackup(t *testing.T) {
	dir := t.TempDir()
	b := NewFileBackend(dir)
	saver := NewAutosaver(b, nil)
	good := sampleState("good")

	saver.State(good)
	saver.State(sampleState("later"))
	writeRaw(t, b, StateKey, "{not-json")

	got, report := LoadState(b)
	if report.Source != SourceBackup {
		t.Fatalf("expected backup source, got %+v", report)
	}
	if report.Err == nil {
		t.Fatalf("expected decode error to be reported")
	}
	if !reflect.DeepEqual(good, got) {
		t.Fatalf("recovered state mismatch\nwant=%+v\ngot=%+v", good, got)
	}
	if !strings.Contains(report.Message(), "recovered") {
		t.Fatalf("unexpected message %q", report.Message())
	}

	corrupt, err := filepath.Glob(filepath.Join(dir, StateKey+".corrupt-*.json"))
	if err != nil {
		t.Fatalf("glob corrupt failed: %v", err)
	}
	if len(corrupt) != 1 {
		t.Fatalf("expected corrupt file to be moved aside, got %v", corrupt)
	}
}

func TestLoadCorruptWithoutBackupFallsBackToDefaults(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	writeRaw(t, b, StateKey, "[]]")
	writeRaw(t, b, BoardKey, `{"columns": 1}`)

	state, report := LoadState(b)
	if report.Source != SourceDefaults || report.Err == nil {
		t.Fatalf("unexpected report %+v", report)
	}
	if !reflect.DeepEqual(model.NewState(), state) {
		t.Fatalf("expected defaults, got %+v", state)
	}

	board, report := LoadBoard(b)
	if report.Source != SourceDefaults || report.Err == nil {
		t.Fatalf("unexpected board report %+v", report)
	}
	if !reflect.DeepEqual(model.NewBoard(), board) {
		t.Fatalf("expected default board, got %+v", board)
	}
}

func TestDecodeStateRejectsNewerVersion(t *testing.T) {
	_, err := DecodeState([]byte(`{"metadata":{"version":99}}`))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestDecodeStateNormalizes(t *testing.T) {
	raw := `{
  "currentView": "NOPE",
  "timerMode": "STOPWATCH",
  "timeLeft": 42,
  "isActive": true,
  "sessionStartTime": "2026-02-19T12:00:00Z",
  "pomodoroSettings": {"work": 0, "break": 10},
  "todos": [
    {"id": "a", "text": "orphan"},
    {"id": "b", "text": "done", "completed": true},
    {"id": "c", "text": "open", "completedAt": "2026-02-19T12:00:00Z", "groupId": "g1"}
  ],
  "groups": [{"id": "g1", "name": "Side", "type": "system"}, {"id": "g1", "name": "dup"}],
  "media": {"mediaType": "YOUTUBE", "youtubeUrl": "", "youtubePlaylist": ["u1", "u1", "u2"]}
}`
	state, err := DecodeState([]byte(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if state.CurrentView != model.ViewFocus {
		t.Fatalf("expected invalid view to reset, got %q", state.CurrentView)
	}
	if state.TimerMode != model.ModeStopwatch || state.TimeLeft != 42 {
		t.Fatalf("unexpected timer fields %q %d", state.TimerMode, state.TimeLeft)
	}
	if state.IsActive || state.SessionStartTime != nil {
		t.Fatalf("running timer must load paused")
	}
	if state.PomodoroSettings.Work != 25 || state.PomodoroSettings.Break != 10 {
		t.Fatalf("unexpected settings %+v", state.PomodoroSettings)
	}
	if state.Todos[0].GroupID != model.GroupCurrent {
		t.Fatalf("expected empty group to become current, got %q", state.Todos[0].GroupID)
	}
	if state.Todos[1].CompletedAt == nil {
		t.Fatalf("completed todo must carry completedAt")
	}
	if state.Todos[2].CompletedAt != nil {
		t.Fatalf("open todo must not carry completedAt")
	}

	ids := make([]string, 0, len(state.Groups))
	for _, g := range state.Groups {
		ids = append(ids, g.ID)
	}
	if strings.Join(ids, ",") != "current,finished,g1" {
		t.Fatalf("unexpected groups %v", ids)
	}
	if state.Groups[2].Type != model.GroupCustom {
		t.Fatalf("custom group type must be enforced")
	}

	if !reflect.DeepEqual(state.Media.YouTubePlaylist, []string{"u1", "u2"}) {
		t.Fatalf("expected deduplicated playlist, got %v", state.Media.YouTubePlaylist)
	}
	if state.Media.YouTubeURL != "u1" {
		t.Fatalf("expected url to fall back to first entry, got %q", state.Media.YouTubeURL)
	}
	if state.Metadata.Version != model.SchemaVersion {
		t.Fatalf("expected version %d, got %d", model.SchemaVersion, state.Metadata.Version)
	}
}

func TestDecodeStateAcceptsLegacyEnvelope(t *testing.T) {
	raw := `{"state": {"notes": "old", "youtubeUrl": "https://youtu.be/abc", "youtubePlaylist": ["https://youtu.be/abc"], "mediaType": "SPOTIFY", "mediaPlayerOpen": false}, "version": 0}`
	state, err := DecodeState([]byte(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if state.Notes != "old" {
		t.Fatalf("unexpected notes %q", state.Notes)
	}
	if state.Media.Type != model.MediaSpotify || state.Media.YouTubeURL != "https://youtu.be/abc" || state.Media.PlayerOpen {
		t.Fatalf("legacy media fields not applied: %+v", state.Media)
	}
	if len(state.Groups) != 2 {
		t.Fatalf("expected system groups to be added, got %+v", state.Groups)
	}
}

func TestCompletedTodoWithoutStampGetsARealTime(t *testing.T) {
	loaded := time.Date(2026, 2, 19, 18, 0, 0, 0, time.UTC)
	orig := loadClock
	loadClock = func() time.Time { return loaded }
	t.Cleanup(func() { loadClock = orig })

	state, err := DecodeState([]byte(`{"todos":[{"id":"a","text":"done","completed":true}]}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got := state.Todos[0].CompletedAt; got == nil || !got.Equal(loaded) {
		t.Fatalf("expected load time %v, got %v", loaded, got)
	}

	raw := `{
  "sessions": [
    {"id": "s1", "date": "2026-02-17T09:00:00Z", "duration": 1500, "mode": "POMODORO"},
    {"id": "s2", "date": "2026-02-18T16:30:00Z", "duration": 1500, "mode": "POMODORO"}
  ],
  "todos": [{"id": "a", "text": "done", "completed": true}]
}`
	state, err = DecodeState([]byte(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := time.Date(2026, 2, 18, 16, 30, 0, 0, time.UTC)
	if got := state.Todos[0].CompletedAt; got == nil || !got.Equal(want) {
		t.Fatalf("expected latest session %v, got %v", want, got)
	}
}

func TestDecodeBoardDropsDuplicateTasks(t *testing.T) {
	raw := `[{"id":"todo","title":"To Do","tasks":[{"id":"k1","content":"a"}]},{"id":"done","title":"Done","tasks":[{"id":"k1","content":"copy"},{"id":"k2","content":"b"}]}]`
	board, err := DecodeBoard([]byte(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(board.Columns[0].Tasks) != 1 || len(board.Columns[1].Tasks) != 1 {
		t.Fatalf("unexpected tasks %+v", board.Columns)
	}
	if board.Columns[1].Tasks[0].ID != "k2" {
		t.Fatalf("expected duplicate to be dropped, got %+v", board.Columns[1].Tasks)
	}
}

type failingBackend struct{ err error }

func (f failingBackend) Read(string) ([]byte, error) { return nil, f.err }
func (f failingBackend) Write(string, []byte) error  { return f.err }
func (f failingBackend) Close() error                { return nil }

// keyedBackend fails writes to the keys in fail and stores everything else.
type keyedBackend struct {
	fail map[string]error
	data map[string][]byte
}

func (k *keyedBackend) Read(key string) ([]byte, error) { return k.data[key], nil }
func (k *keyedBackend) Close() error                    { return nil }
func (k *keyedBackend) Write(key string, data []byte) error {
	if err := k.fail[key]; err != nil {
		return err
	}
	k.data[key] = data
	return nil
}

func TestAutosaverTracksErrorsPerKey(t *testing.T) {
	boom := errors.New("disk full")
	backend := &keyedBackend{fail: map[string]error{StateKey: boom}, data: map[string][]byte{}}
	saver := NewAutosaver(backend, nil)

	saver.State(model.NewState())
	saver.Board(model.NewBoard())
	if !errors.Is(saver.Err(), boom) {
		t.Fatalf("a board save must not hide the failing state save, got %v", saver.Err())
	}
	if _, ok := backend.data[BoardKey]; !ok {
		t.Fatalf("board should have been written")
	}

	backend.fail[BoardKey] = errors.New("read-only")
	saver.Board(model.NewBoard())
	err := saver.Err()
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("expected both failures, got %v", err)
	}

	delete(backend.fail, StateKey)
	saver.State(model.NewState())
	err = saver.Err()
	if errors.Is(err, boom) || err == nil || !strings.Contains(err.Error(), BoardKey) {
		t.Fatalf("expected only the board failure to remain, got %v", err)
	}

	delete(backend.fail, BoardKey)
	saver.Board(model.NewBoard())
	if err := saver.Err(); err != nil {
		t.Fatalf("expected no failures after both keys saved, got %v", err)
	}
}

func TestAutosaverKeepsLastError(t *testing.T) {
	boom := errors.New("disk full")
	saver := NewAutosaver(failingBackend{err: boom}, nil)

	saver.State(model.NewState())
	if !errors.Is(saver.Err(), boom) {
		t.Fatalf("expected write error to be kept, got %v", saver.Err())
	}

	state, report := LoadState(failingBackend{err: boom})
	if report.Source != SourceDefaults || !errors.Is(report.Err, boom) {
		t.Fatalf("unexpected report %+v", report)
	}
	if !reflect.DeepEqual(model.NewState(), state) {
		t.Fatalf("expected defaults on read error")
	}
}
