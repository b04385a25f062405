package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"focusdeck/model"
)

// ErrUnsupportedVersion marks a snapshot written by a newer build.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// LoadSource describes where a loaded snapshot came from.
type LoadSource string

const (
	SourceDefaults LoadSource = "defaults"
	SourceStored   LoadSource = "stored"
	SourceBackup   LoadSource = "backup"
)

// LoadReport explains the outcome of a load. Err holds the decode or read
// failure that forced a fallback, if any.
type LoadReport struct {
	Key    string
	Source LoadSource
	Backup string
	Err    error
}

// Message returns a status line for the report, empty when nothing notable happened.
func (r LoadReport) Message() string {
	switch {
	case r.Source == SourceBackup:
		return fmt.Sprintf("%s recovered from %s", r.Key, filepath.Base(r.Backup))
	case r.Err != nil:
		return fmt.Sprintf("%s could not be read, started from defaults", r.Key)
	default:
		return ""
	}
}

// LoadState reads the application snapshot. It never fails: a missing or
// unreadable blob yields the default state.
func LoadState(b Backend) (model.AppState, LoadReport) {
	report := LoadReport{Key: StateKey, Source: SourceDefaults}
	data, err := b.Read(StateKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			report.Err = err
		}
		return model.NewState(), report
	}
	state, err := DecodeState(data)
	if err == nil {
		report.Source = SourceStored
		return state, report
	}
	report.Err = err

	if rec, ok := b.(Recoverer); ok {
		valid := func(raw []byte) bool {
			_, err := DecodeState(raw)
			return err == nil
		}
		if raw, source, recErr := rec.Recover(StateKey, valid); recErr == nil {
			if recovered, decErr := DecodeState(raw); decErr == nil {
				report.Source = SourceBackup
				report.Backup = source
				return recovered, report
			}
		}
	}
	return model.NewState(), report
}

// LoadBoard reads the kanban board with the same fallback policy as LoadState.
func LoadBoard(b Backend) (model.Board, LoadReport) {
	report := LoadReport{Key: BoardKey, Source: SourceDefaults}
	data, err := b.Read(BoardKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			report.Err = err
		}
		return model.NewBoard(), report
	}
	board, err := DecodeBoard(data)
	if err == nil {
		report.Source = SourceStored
		return board, report
	}
	report.Err = err

	if rec, ok := b.(Recoverer); ok {
		valid := func(raw []byte) bool {
			_, err := DecodeBoard(raw)
			return err == nil
		}
		if raw, source, recErr := rec.Recover(BoardKey, valid); recErr == nil {
			if recovered, decErr := DecodeBoard(raw); decErr == nil {
				report.Source = SourceBackup
				report.Backup = source
				return recovered, report
			}
		}
	}
	return model.NewBoard(), report
}

// EncodeState serializes the snapshot as indented JSON.
func EncodeState(state model.AppState) ([]byte, error) {
	state.Metadata.Version = model.SchemaVersion
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// EncodeBoard serializes the board as a bare column array.
func EncodeBoard(board model.Board) ([]byte, error) {
	cols := board.Columns
	if cols == nil {
		cols = []model.Column{}
	}
	data, err := json.MarshalIndent(cols, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// legacyFields are the flat media keys written before the media slice was nested.
type legacyFields struct {
	MediaType       model.MediaType `json:"mediaType"`
	YouTubeURL      string          `json:"youtubeUrl"`
	YouTubePlaylist []string        `json:"youtubePlaylist"`
	SpotifyURL      string          `json:"spotifyUrl"`
	MediaPlayerOpen *bool           `json:"mediaPlayerOpen"`
}

// DecodeState parses a snapshot and normalizes it. Both the current shape and
// the older {"state": {...}, "version": n} envelope with flat media keys are
// accepted.
func DecodeState(data []byte) (model.AppState, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return model.AppState{}, err
	}
	if inner, ok := envelope["state"]; ok {
		data = inner
		envelope = nil
		if err := json.Unmarshal(data, &envelope); err != nil {
			return model.AppState{}, err
		}
	}

	// Scalars default to the stock state; slices start empty so decoding
	// never merges into the default elements.
	state := model.NewState()
	state.Metadata.Version = 0
	state.Sessions, state.Todos, state.Groups, state.Media.YouTubePlaylist = nil, nil, nil, nil
	if err := json.Unmarshal(data, &state); err != nil {
		return model.AppState{}, err
	}
	if state.Metadata.Version > model.SchemaVersion {
		return model.AppState{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, state.Metadata.Version)
	}

	if _, nested := envelope["media"]; !nested {
		var legacy legacyFields
		if err := json.Unmarshal(data, &legacy); err != nil {
			return model.AppState{}, err
		}
		applyLegacyMedia(&state.Media, legacy)
	}

	return NormalizeState(state), nil
}

func applyLegacyMedia(m *model.Media, legacy legacyFields) {
	if legacy.MediaType != "" {
		m.Type = legacy.MediaType
	}
	if legacy.YouTubeURL != "" {
		m.YouTubeURL = legacy.YouTubeURL
	}
	if legacy.YouTubePlaylist != nil {
		m.YouTubePlaylist = legacy.YouTubePlaylist
	}
	if legacy.SpotifyURL != "" {
		m.SpotifyURL = legacy.SpotifyURL
	}
	if legacy.MediaPlayerOpen != nil {
		m.PlayerOpen = *legacy.MediaPlayerOpen
	}
}

// loadClock is read when normalization needs the current time.
var loadClock = time.Now

// NormalizeState repairs a decoded snapshot so every invariant holds.
// A running timer is not resumed across restarts: it is loaded paused.
func NormalizeState(state model.AppState) model.AppState {
	switch state.CurrentView {
	case model.ViewFocus, model.ViewTodo, model.ViewBoard, model.ViewJournal:
	default:
		state.CurrentView = model.ViewFocus
	}
	if state.TimerMode != model.ModePomodoro && state.TimerMode != model.ModeStopwatch {
		state.TimerMode = model.ModePomodoro
	}
	if state.TimerState != model.PhaseWork && state.TimerState != model.PhaseBreak {
		state.TimerState = model.PhaseWork
	}

	defaults := model.DefaultSettings()
	if state.PomodoroSettings.Work <= 0 {
		state.PomodoroSettings.Work = defaults.Work
	}
	if state.PomodoroSettings.Break <= 0 {
		state.PomodoroSettings.Break = defaults.Break
	}
	if state.TimeLeft < 0 {
		state.TimeLeft = 0
	}
	state.IsActive = false
	state.SessionStartTime = nil

	if state.Sessions == nil {
		state.Sessions = []model.Session{}
	}
	if state.Todos == nil {
		state.Todos = []model.TodoItem{}
	}
	for i := range state.Todos {
		t := &state.Todos[i]
		if strings.TrimSpace(t.GroupID) == "" {
			t.GroupID = model.GroupCurrent
		}
		if t.Completed && t.CompletedAt == nil {
			stamp := completionFallback(state.Sessions)
			t.CompletedAt = &stamp
		}
		if !t.Completed {
			t.CompletedAt = nil
		}
	}
	state.Groups = normalizeGroups(state.Groups)
	state.Media = normalizeMedia(state.Media)
	state.Metadata.Version = model.SchemaVersion
	return state
}

// completionFallback stamps completed todos that lost their completedAt:
// the latest session, or the load time when no session was recorded.
func completionFallback(sessions []model.Session) time.Time {
	var latest time.Time
	for _, s := range sessions {
		if s.Date.After(latest) {
			latest = s.Date
		}
	}
	if latest.IsZero() {
		return loadClock().UTC()
	}
	return latest
}

func normalizeGroups(groups []model.Group) []model.Group {
	out := make([]model.Group, 0, len(groups)+2)
	seen := make(map[string]bool, len(groups)+2)
	for _, sys := range model.SystemGroups() {
		for _, g := range groups {
			if g.ID == sys.ID {
				sys.Name = g.Name
				break
			}
		}
		out = append(out, sys)
		seen[sys.ID] = true
	}
	for _, g := range groups {
		if g.ID == "" || seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		g.Type = model.GroupCustom
		out = append(out, g)
	}
	return out
}

func normalizeMedia(m model.Media) model.Media {
	if m.Type != model.MediaYouTube && m.Type != model.MediaSpotify {
		m.Type = model.MediaYouTube
	}
	playlist := make([]string, 0, len(m.YouTubePlaylist))
	seen := make(map[string]bool, len(m.YouTubePlaylist))
	for _, u := range m.YouTubePlaylist {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		playlist = append(playlist, u)
	}
	m.YouTubePlaylist = playlist
	if m.YouTubeURL == "" {
		if len(playlist) > 0 {
			m.YouTubeURL = playlist[0]
		} else {
			m.YouTubeURL = model.DefaultYouTubeURL
		}
	}
	if m.SpotifyURL == "" {
		m.SpotifyURL = model.DefaultSpotifyURL
	}
	return m
}

// DecodeBoard parses a column array. Tasks repeated across columns keep
// only their first occurrence.
func DecodeBoard(data []byte) (model.Board, error) {
	var cols []model.Column
	if err := json.Unmarshal(data, &cols); err != nil {
		return model.Board{}, err
	}
	if cols == nil {
		return model.NewBoard(), nil
	}
	seen := make(map[string]bool)
	for i := range cols {
		kept := make([]model.KanbanTask, 0, len(cols[i].Tasks))
		for _, task := range cols[i].Tasks {
			if seen[task.ID] {
				continue
			}
			seen[task.ID] = true
			kept = append(kept, task)
		}
		cols[i].Tasks = kept
	}
	return model.Board{Columns: cols}, nil
}
