// Package store persists focusdeck snapshots. Each logical domain is one
// JSON blob under a fixed key; a Backend decides where blobs live.
package store

import "errors"

const (
	// StateKey holds the application snapshot.
	StateKey = "focus-app-storage-v2"
	// BoardKey holds the kanban columns.
	BoardKey = "kanbanColumns"
)

// ErrNotFound is returned by Backend.Read when no blob exists for a key.
var ErrNotFound = errors.New("blob not found")

// Backend reads and writes whole blobs by key.
type Backend interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Close() error
}

// Recoverer is implemented by backends that keep backups. Recover moves the
// current blob aside and returns the newest backup accepted by valid.
type Recoverer interface {
	Recover(key string, valid func([]byte) bool) (data []byte, source string, err error)
}
