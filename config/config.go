// Package config loads focusdeck settings from a TOML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

const (
	defaultConfigPath = "~/.config/focusdeck/config.toml"
	defaultDataDir    = "~/.local/share/focusdeck"
	defaultLogLevel   = "info"
	defaultPlayer     = "mpv"
	envPrefix         = "FOCUSDECK"
)

var ErrInvalidStorage = errors.New("storage must be json or sqlite")

// Config is the resolved runtime configuration. Paths are absolute.
type Config struct {
	DataDir  string `toml:"data_dir" split_words:"true"`
	Storage  string `toml:"storage" split_words:"true"`
	LogFile  string `toml:"log_file" split_words:"true"`
	LogLevel string `toml:"log_level" split_words:"true"`
	Player   string `toml:"player" split_words:"true"`
	Mouse    bool   `toml:"mouse" split_words:"true"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DataDir:  defaultDataDir,
		Storage:  StorageJSON,
		LogLevel: defaultLogLevel,
		Player:   defaultPlayer,
		Mouse:    true,
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Overrides are command line values that win over file and environment.
type Overrides struct {
	DataDir string
	Storage string
}

// Load reads the config at path (the default path when empty), then applies
// FOCUSDECK_* environment variables. A missing file is not an error.
func Load(path string) (Config, error) {
	return LoadWith(path, Overrides{})
}

// LoadWith is Load followed by the non-empty overrides.
func LoadWith(path string, o Overrides) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := readFile(resolved, &cfg); err != nil {
		return Config{}, err
	}
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if v := strings.TrimSpace(o.DataDir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(o.Storage); v != "" {
		cfg.Storage = v
	}
	return cfg.normalize()
}

func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c Config) normalize() (Config, error) {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	if c.Storage == "" {
		c.Storage = StorageJSON
	}
	if c.Storage != StorageJSON && c.Storage != StorageSQLite {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidStorage, c.Storage)
	}

	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = defaultDataDir
	}
	dir, err := expandPath(c.DataDir)
	if err != nil {
		return Config{}, fmt.Errorf("data dir: %w", err)
	}
	c.DataDir = dir

	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = filepath.Join(c.DataDir, "focusdeck.log")
	} else if c.LogFile, err = expandPath(c.LogFile); err != nil {
		return Config{}, fmt.Errorf("log file: %w", err)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.Player = strings.TrimSpace(c.Player)
	return c, nil
}

// SQLitePath is the database file used by the sqlite storage.
func (c Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "focusdeck.db")
}

// SocketPath is the IPC socket handed to the media player.
func (c Config) SocketPath() string {
	return filepath.Join(c.DataDir, "mpv.sock")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
