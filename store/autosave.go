package store

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"focusdeck/model"
)

// Autosaver writes every published snapshot to a Backend. It is meant to be
// registered as a subscriber; failures are logged and kept for the UI.
type Autosaver struct {
	backend Backend
	log     *zap.Logger

	mu   sync.Mutex
	errs map[string]error
}

// NewAutosaver returns an autosaver writing to backend. A nil logger is
// replaced by a no-op logger.
func NewAutosaver(backend Backend, log *zap.Logger) *Autosaver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Autosaver{backend: backend, log: log, errs: make(map[string]error)}
}

// State persists an application snapshot under StateKey.
func (a *Autosaver) State(state model.AppState) {
	data, err := EncodeState(state)
	if err != nil {
		a.fail(StateKey, fmt.Errorf("encode state: %w", err))
		return
	}
	a.write(StateKey, data)
}

// Board persists the board under BoardKey.
func (a *Autosaver) Board(board model.Board) {
	data, err := EncodeBoard(board)
	if err != nil {
		a.fail(BoardKey, fmt.Errorf("encode board: %w", err))
		return
	}
	a.write(BoardKey, data)
}

// Err joins the failures of every key whose latest write failed. A key's
// failure is cleared only by a later successful write of the same key.
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	errs := make([]error, 0, len(a.errs))
	for _, key := range slices.Sorted(maps.Keys(a.errs)) {
		errs = append(errs, a.errs[key])
	}
	return errors.Join(errs...)
}

func (a *Autosaver) write(key string, data []byte) {
	if err := a.backend.Write(key, data); err != nil {
		a.fail(key, err)
		return
	}
	a.mu.Lock()
	delete(a.errs, key)
	a.mu.Unlock()
}

func (a *Autosaver) fail(key string, err error) {
	a.log.Error("autosave failed", zap.String("key", key), zap.Error(err))
	a.mu.Lock()
	a.errs[key] = fmt.Errorf("save %s: %w", key, err)
	a.mu.Unlock()
}
