package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const maxRotatingBackups = 10

var errNoValidBackup = errors.New("no valid backup found")

// FileBackend stores one <key>.json file per blob under Dir.
type FileBackend struct {
	Dir string
}

// NewFileBackend returns a backend rooted at dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{Dir: dir}
}

// Path returns the file that holds key.
func (f *FileBackend) Path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

func (f *FileBackend) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the blob through a temp file and rename. The previous
// content is kept as <file>.bak and as one of the timestamped backups.
func (f *FileBackend) Write(key string, data []byte) error {
	path := f.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := snapshot(path); err != nil {
		return fmt.Errorf("backup %s: %w", key, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (f *FileBackend) Close() error {
	return nil
}

// Recover moves the corrupt file aside and returns the newest valid backup.
func (f *FileBackend) Recover(key string, valid func([]byte) bool) ([]byte, string, error) {
	path := f.Path(key)
	if _, err := quarantine(path); err != nil {
		return nil, "", fmt.Errorf("move corrupt file: %w", err)
	}
	for _, candidate := range backupsNewestFirst(path) {
		data, err := os.ReadFile(candidate)
		if err != nil || (valid != nil && !valid(data)) {
			continue
		}
		return data, candidate, nil
	}
	return nil, "", errNoValidBackup
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// snapshot copies the current file to the backups and prunes the oldest.
func snapshot(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	stamp := time.Now().UTC().Format("20060102-150405.000000000")
	for _, dst := range []string{path + ".bak", path + ".bak." + stamp} {
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
	}

	rotating, err := filepath.Glob(path + ".bak.*")
	if err != nil || len(rotating) <= maxRotatingBackups {
		return err
	}
	slices.Sort(rotating)
	for _, old := range rotating[:len(rotating)-maxRotatingBackups] {
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// backupsNewestFirst lists <file>.bak, then the timestamped backups from
// newest to oldest. Timestamps sort lexically.
func backupsNewestFirst(path string) []string {
	var out []string
	if _, err := os.Stat(path + ".bak"); err == nil {
		out = append(out, path+".bak")
	}
	rotating, _ := filepath.Glob(path + ".bak.*")
	slices.Sort(rotating)
	slices.Reverse(rotating)
	return append(out, rotating...)
}

// quarantine renames an unreadable file to <name>.corrupt-<stamp>.json.
func quarantine(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	ext := filepath.Ext(path)
	stamp := time.Now().UTC().Format("20060102-150405")
	dst := strings.TrimSuffix(path, ext) + ".corrupt-" + stamp + ext
	if err := os.Rename(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}
