package model

import "time"

// View selects which panel is rendered.
type View string

const (
	ViewFocus   View = "FOCUS"
	ViewTodo    View = "TODO"
	ViewBoard   View = "BOARD"
	ViewJournal View = "JOURNAL"
)

// TimerMode is the counting strategy of the focus timer.
type TimerMode string

const (
	ModePomodoro  TimerMode = "POMODORO"
	ModeStopwatch TimerMode = "STOPWATCH"
)

// TimerPhase is the WORK or BREAK sub-state of the timer.
type TimerPhase string

const (
	PhaseWork  TimerPhase = "WORK"
	PhaseBreak TimerPhase = "BREAK"
)

// MediaType names the media source the player panel targets.
type MediaType string

const (
	MediaYouTube MediaType = "YOUTUBE"
	MediaSpotify MediaType = "SPOTIFY"
)

// GroupType separates fixed groups from user-created ones.
type GroupType string

const (
	GroupSystem GroupType = "system"
	GroupCustom GroupType = "custom"
)

const (
	GroupCurrent  = "current"
	GroupFinished = "finished"
)

// SchemaVersion is the snapshot version written by this build.
const SchemaVersion = 2

const (
	DefaultYouTubeURL = "https://www.youtube.com/watch?v=DEWzT1geuPU"
	DefaultSpotifyURL = "https://open.spotify.com/playlist/37i9dQZF1DX8Uebhn9wzrS?si=5rvssghNSWKXYYRCYbb5Xg"
)

// PomodoroSettings holds durations in minutes.
type PomodoroSettings struct {
	Work           int  `json:"work"`
	Break          int  `json:"break"`
	AutoStartBreak bool `json:"autoStartBreak"`
}

// WorkSeconds is the configured work duration in seconds.
func (p PomodoroSettings) WorkSeconds() int {
	return p.Work * 60
}

// Session is a completed interval of focused time.
type Session struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Duration int       `json:"duration"`
	Mode     TimerMode `json:"mode"`
	Name     string    `json:"name,omitempty"`
}

// Subtask is a checklist entry under a todo.
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TodoItem is an individual task of the flat todo list.
type TodoItem struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	Category    string     `json:"category,omitempty"`
	GroupID     string     `json:"groupId,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Subtasks    []Subtask  `json:"subtasks,omitempty"`
	Link        string     `json:"link,omitempty"`
}

// Group is a named bucket for todos.
type Group struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type GroupType `json:"type"`
}

// Media is the persisted playlist slice of the state.
type Media struct {
	Type            MediaType `json:"mediaType"`
	YouTubeURL      string    `json:"youtubeUrl"`
	YouTubePlaylist []string  `json:"youtubePlaylist"`
	SpotifyURL      string    `json:"spotifyUrl"`
	PlayerOpen      bool      `json:"mediaPlayerOpen"`
}

// Metadata is app-level metadata persisted alongside the state.
type Metadata struct {
	Version int `json:"version"`
}

// AppState is the full persisted state.
type AppState struct {
	CurrentView View `json:"currentView"`

	TimerMode        TimerMode        `json:"timerMode"`
	TimerState       TimerPhase       `json:"timerState"`
	TimeLeft         int              `json:"timeLeft"`
	IsActive         bool             `json:"isActive"`
	SessionStartTime *time.Time       `json:"sessionStartTime"`
	SessionName      string           `json:"sessionName"`
	PomodoroSettings PomodoroSettings `json:"pomodoroSettings"`

	Sessions []Session  `json:"sessions"`
	Todos    []TodoItem `json:"todos"`
	Groups   []Group    `json:"groups"`
	Notes    string     `json:"notes"`

	Media Media `json:"media"`

	Metadata Metadata `json:"metadata"`
}

// KanbanTask is a card on the board.
type KanbanTask struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

// Column is a named ordered bucket of kanban tasks.
type Column struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Tasks []KanbanTask `json:"tasks"`
}

// Board is persisted under its own key, as a bare column list.
type Board struct {
	Columns []Column
}

// SystemGroups returns the two groups that always exist.
func SystemGroups() []Group {
	return []Group{
		{ID: GroupCurrent, Name: "Current Tasks", Type: GroupSystem},
		{ID: GroupFinished, Name: "Finished", Type: GroupSystem},
	}
}

// DefaultSettings mirrors the stock 25/5 pomodoro.
func DefaultSettings() PomodoroSettings {
	return PomodoroSettings{Work: 25, Break: 5, AutoStartBreak: false}
}

// NewState returns an initialized default state.
func NewState() AppState {
	settings := DefaultSettings()
	return AppState{
		CurrentView:      ViewFocus,
		TimerMode:        ModePomodoro,
		TimerState:       PhaseWork,
		TimeLeft:         settings.WorkSeconds(),
		PomodoroSettings: settings,
		Sessions:         []Session{},
		Todos:            []TodoItem{},
		Groups:           SystemGroups(),
		Media: Media{
			Type:            MediaYouTube,
			YouTubeURL:      DefaultYouTubeURL,
			YouTubePlaylist: []string{DefaultYouTubeURL},
			SpotifyURL:      DefaultSpotifyURL,
			PlayerOpen:      true,
		},
		Metadata: Metadata{Version: SchemaVersion},
	}
}

// NewBoard returns the three default columns.
func NewBoard() Board {
	return Board{Columns: []Column{
		{ID: "todo", Title: "To Do", Tasks: []KanbanTask{}},
		{ID: "inProgress", Title: "In Progress", Tasks: []KanbanTask{}},
		{ID: "done", Title: "Done", Tasks: []KanbanTask{}},
	}}
}

// Clone returns a deep copy of the todo.
func (t TodoItem) Clone() TodoItem {
	out := t
	if t.Subtasks != nil {
		out.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(out.Subtasks, t.Subtasks)
	}
	out.Deadline = cloneTime(t.Deadline)
	out.CompletedAt = cloneTime(t.CompletedAt)
	return out
}

// Clone returns a deep copy of the state.
func (s AppState) Clone() AppState {
	out := s
	out.SessionStartTime = cloneTime(s.SessionStartTime)
	out.Sessions = append(make([]Session, 0, len(s.Sessions)), s.Sessions...)
	out.Groups = append(make([]Group, 0, len(s.Groups)), s.Groups...)
	out.Todos = make([]TodoItem, len(s.Todos))
	for i := range s.Todos {
		out.Todos[i] = s.Todos[i].Clone()
	}
	out.Media.YouTubePlaylist = append(make([]string, 0, len(s.Media.YouTubePlaylist)), s.Media.YouTubePlaylist...)
	return out
}

// Clone returns a deep copy of the column.
func (c Column) Clone() Column {
	out := c
	out.Tasks = append(make([]KanbanTask, 0, len(c.Tasks)), c.Tasks...)
	return out
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := Board{Columns: make([]Column, len(b.Columns))}
	for i := range b.Columns {
		out.Columns[i] = b.Columns[i].Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
