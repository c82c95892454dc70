// Package config handles loading and managing mboxnav configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// BrowseConfig holds interactive browser settings.
type BrowseConfig struct {
	PageSize    int      `toml:"page_size"`    // Rows per page
	SearchLimit int      `toml:"search_limit"` // Max matches a search displays
	Columns     []string `toml:"columns"`      // Table columns after the index column
}

// SplitConfig holds year-split settings.
type SplitConfig struct {
	MaxMessageMB int `toml:"max_message_mb"` // Skip messages larger than this; <= 0 disables the cap
}

type Config struct {
	Browse BrowseConfig `toml:"browse"`
	Split  SplitConfig  `toml:"split"`

	// HomeDir is derived at load time, never read from the file.
	HomeDir string `toml:"-"`
}

// DefaultHome returns the default mboxnav home directory.
// Respects MBOXNAV_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("MBOXNAV_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mboxnav"
	}
	return filepath.Join(home, ".mboxnav")
}

// Load reads configuration from path. An empty path means the default
// location (~/.mboxnav/config.toml), where a missing file just yields the
// defaults; an explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	explicit := path != ""
	if explicit {
		path = expandPath(path)
	} else {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		Browse: BrowseConfig{
			PageSize:    20,
			SearchLimit: 100,
			Columns:     []string{"date", "from", "subject"},
		},
		Split: SplitConfig{
			MaxMessageMB: 128,
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// MaxMessageBytes converts the configured megabyte cap to bytes.
// Returns -1 when the cap is disabled.
func (c *Config) MaxMessageBytes() int64 {
	if c.Split.MaxMessageMB <= 0 {
		return -1
	}
	return int64(c.Split.MaxMessageMB) << 20
}

// expandPath resolves a leading ~ against the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
