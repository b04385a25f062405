package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	wantDir := filepath.Join(home, ".local", "share", "focusdeck")
	if cfg.DataDir != wantDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDir)
	}
	if cfg.Storage != StorageJSON || cfg.LogLevel != "info" || cfg.Player != "mpv" || !cfg.Mouse {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.LogFile != filepath.Join(wantDir, "focusdeck.log") {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
data_dir = "  ~/focus  "
storage = " SQLite "
log_level = "DEBUG"
player = ""
mouse = false
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DataDir != filepath.Join(home, "focus") {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.Storage != StorageSQLite || cfg.LogLevel != "debug" || cfg.Player != "" || cfg.Mouse {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !strings.HasSuffix(cfg.SQLitePath(), "focusdeck.db") || !strings.HasPrefix(cfg.SocketPath(), cfg.DataDir) {
		t.Fatalf("unexpected derived paths %q %q", cfg.SQLitePath(), cfg.SocketPath())
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("storage = \"sqlite\"\nlog_level = \"warn\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("FOCUSDECK_STORAGE", "json")
	t.Setenv("FOCUSDECK_DATA_DIR", filepath.Join(home, "env-data"))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage != StorageJSON {
		t.Fatalf("Storage = %q, want json", cfg.Storage)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want the file value", cfg.LogLevel)
	}
	if cfg.DataDir != filepath.Join(home, "env-data") {
		t.Fatalf("DataDir = %q", cfg.DataDir)
	}
}

func TestLoad_RejectsUnknownStorage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("storage = \"redis\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); !errors.Is(err, ErrInvalidStorage) {
		t.Fatalf("expected ErrInvalidStorage, got %v", err)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("storage = "), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadWith_OverridesWinAndMoveLogFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FOCUSDECK_STORAGE", "json")

	dir := t.TempDir()
	cfg, err := LoadWith(filepath.Join(t.TempDir(), "missing.toml"), Overrides{DataDir: dir, Storage: "SQLITE"})
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.DataDir != dir || cfg.Storage != StorageSQLite {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.LogFile != filepath.Join(dir, "focusdeck.log") {
		t.Fatalf("LogFile = %q, want it under the overridden data dir", cfg.LogFile)
	}
	if cfg.SQLitePath() != filepath.Join(dir, "focusdeck.db") {
		t.Fatalf("SQLitePath = %q", cfg.SQLitePath())
	}
}
