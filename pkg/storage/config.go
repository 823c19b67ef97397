package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds backend configuration.
type Config struct {
	// WorkspaceRoot is the directory holding all scan history.
	WorkspaceRoot string

	// Retention is the history retention policy applied by Prune.
	Retention RetentionConfig
}

// RetentionConfig bounds how much scan history is kept.
type RetentionConfig struct {
	// MaxScans is the maximum number of scans to keep (0 = unlimited).
	MaxScans int

	// MaxAgeDays deletes scans older than this many days (0 = no age
	// limit).
	MaxAgeDays int
}

// IsEnabled reports whether any retention limit is configured.
func (r RetentionConfig) IsEnabled() bool {
	return r.MaxScans > 0 || r.MaxAgeDays > 0
}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("storage config is nil")
	}
	if c.WorkspaceRoot == "" {
		return errors.New("workspace root is required")
	}
	if c.Retention.MaxScans < 0 || c.Retention.MaxAgeDays < 0 {
		return errors.New("retention limits must not be negative")
	}
	return nil
}

// DefaultConfig returns the default local configuration, rooted under the
// user's home directory.
func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return &Config{
		WorkspaceRoot: filepath.Join(home, ".sitevitals"),
		Retention: RetentionConfig{
			MaxScans: 100,
		},
	}, nil
}
