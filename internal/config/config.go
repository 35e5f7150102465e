// Package config loads the aligner's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/FocuswithJustin/JuniperAligner/internal/logging"
)

// FileName is the configuration file name inside the config directory.
const FileName = "config.toml"

// Config is the full aligner configuration.
type Config struct {
	Storage Storage `toml:"storage"`
	Logging Logging `toml:"logging"`
	Session Session `toml:"session"`
}

// Storage locates the project data on disk.
type Storage struct {
	// ProjectDir holds alignmentData/<book>/<chapter>.json.
	ProjectDir string `toml:"project_dir"`
	// Database is the SQLite file used for baselines and the journal.
	// Empty disables the database.
	Database string `toml:"database"`
	// SnapshotDir holds content-addressed chapter snapshots. Empty disables snapshots.
	SnapshotDir string `toml:"snapshot_dir"`
}

// Logging configures internal/logging.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Session tunes the editing session.
type Session struct {
	// HistoryLimit caps the in-memory operation journal.
	HistoryLimit int `toml:"history_limit"`
	// Writeback saves the legacy chapter file after every change.
	Writeback bool `toml:"writeback"`
	// StaleSuggestions keeps predictions whose baseline fingerprint no longer matches.
	StaleSuggestions bool `toml:"stale_suggestions"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Storage: Storage{
			ProjectDir: ".",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Session: Session{
			HistoryLimit: 200,
			Writeback:    true,
		},
	}
}

// DefaultDir returns ~/.juniper-aligner.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".juniper-aligner"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks the values that have a fixed vocabulary.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return fmt.Errorf("logging.format: %w", err)
	}
	if c.Session.HistoryLimit < 0 {
		return fmt.Errorf("session.history_limit must not be negative")
	}
	return nil
}

// ApplyLogging initialises the global logger from c.
func (c Config) ApplyLogging() {
	level, _ := logging.ParseLevel(c.Logging.Level)
	format, _ := logging.ParseFormat(c.Logging.Format)
	logging.InitLoggerTo(os.Stderr, level, format)
}
