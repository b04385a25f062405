package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"focusdeck/model"
)

var (
	ErrEmptyText       = errors.New("text must not be empty")
	ErrInvalidName     = errors.New("name must not be empty")
	ErrTodoNotFound    = errors.New("todo not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrSystemGroup     = errors.New("system groups cannot be deleted")
	ErrAmbiguousRef    = errors.New("reference matches more than one item")
	ErrInvalidView     = errors.New("invalid view")
	ErrInvalidMode     = errors.New("invalid timer mode")
	ErrInvalidPhase    = errors.New("invalid timer phase")
	ErrInvalidSettings = errors.New("durations must be positive minutes")
)

// Clock abstracts time to keep operations deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// IDGenerator creates opaque identifiers.
type IDGenerator interface {
	New() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) New() string {
	return uuid.NewString()
}

// Option customizes a Service or BoardService.
type Option func(*deps)

type deps struct {
	clock Clock
	ids   IDGenerator
}

func WithClock(c Clock) Option { return func(d *deps) { d.clock = c } }

func WithIDs(g IDGenerator) Option { return func(d *deps) { d.ids = g } }

func newDeps(opts []Option) deps {
	d := deps{clock: SystemClock{}, ids: UUIDGenerator{}}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Service holds domain rules and the in-memory state. Every mutation
// produces a new snapshot that is handed to subscribers in order.
// Subscribers must not call back into mutating methods.
type Service struct {
	deps

	setMu sync.Mutex
	mu    sync.RWMutex
	state model.AppState
	subs  observers[model.AppState]
}

// NewService creates a service with a copy of the provided state.
func NewService(state model.AppState, opts ...Option) *Service {
	return &Service{deps: newDeps(opts), state: state.Clone()}
}

// State returns a copy of current state.
func (s *Service) State() model.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Set replaces the state with fn applied to a copy of the current one.
func (s *Service) Set(fn func(model.AppState) model.AppState) {
	_ = s.update(func(st *model.AppState) error {
		*st = fn(*st)
		return nil
	})
}

// Subscribe registers fn for every new snapshot and returns its cancel func.
func (s *Service) Subscribe(fn func(model.AppState)) func() {
	return s.subs.add(fn)
}

func (s *Service) update(fn func(st *model.AppState) error) error {
	s.setMu.Lock()
	defer s.setMu.Unlock()

	next := s.State()
	if err := fn(&next); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	s.subs.publish(next, model.AppState.Clone)
	return nil
}

func (s *Service) now() time.Time {
	return s.clock.Now()
}

// SetView selects the panel to render.
func (s *Service) SetView(v model.View) error {
	switch v {
	case model.ViewFocus, model.ViewTodo, model.ViewBoard, model.ViewJournal:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidView, v)
	}
	return s.update(func(st *model.AppState) error {
		st.CurrentView = v
		return nil
	})
}

// SetNotes replaces the journal notes.
func (s *Service) SetNotes(text string) {
	_ = s.update(func(st *model.AppState) error {
		st.Notes = text
		return nil
	})
}

// SetSessionName labels the in-progress session.
func (s *Service) SetSessionName(name string) {
	_ = s.update(func(st *model.AppState) error {
		st.SessionName = strings.TrimSpace(name)
		return nil
	})
}

// AddSession appends a session as given, filling in a missing id or date.
func (s *Service) AddSession(session model.Session) model.Session {
	if session.ID == "" {
		session.ID = s.ids.New()
	}
	if session.Date.IsZero() {
		session.Date = s.now()
	}
	_ = s.update(func(st *model.AppState) error {
		st.Sessions = append(st.Sessions, session)
		return nil
	})
	return session
}

// Sessions returns all recorded sessions.
func (s *Service) Sessions() []model.Session {
	return s.State().Sessions
}
