// Package config defines the taskbook configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names selectable via the backend setting.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
)

// EnvConfig names the environment variable pointing at the config file.
const EnvConfig = "TASKBOOK_CONFIG"

// Config is the top-level taskbook configuration.
type Config struct {
	Directory               string       `json:"directory" yaml:"directory"`
	Backend                 string       `json:"backend" yaml:"backend"` // "file", "sqlite" or "remote"
	DisplayCompleteTasks    bool         `json:"display_complete_tasks" yaml:"display_complete_tasks"`
	DisplayProgressOverview bool         `json:"display_progress_overview" yaml:"display_progress_overview"`
	SQLitePath              string       `json:"sqlite_path,omitempty" yaml:"sqlite_path"` // default <directory>/taskbook.db
	Remote                  RemoteConfig `json:"remote" yaml:"remote"`
	LogLevel                string       `json:"log_level" yaml:"log_level"`
}

// RemoteConfig configures the remote sync backend.
type RemoteConfig struct {
	BaseURL           string `json:"base_url" yaml:"base_url"`
	Token             string `json:"token" yaml:"token"`
	Namespace         string `json:"namespace" yaml:"namespace"`
	AllowEmptyOnError bool   `json:"allow_empty_on_error,omitempty" yaml:"allow_empty_on_error"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Directory:               "~/.taskbook",
		Backend:                 BackendFile,
		DisplayCompleteTasks:    true,
		DisplayProgressOverview: true,
		LogLevel:                "info",
	}
}

// Load resolves and reads the configuration: an optional .env file, then the
// YAML config, then environment overrides on top. The config file is the
// explicit path argument when given, else $TASKBOOK_CONFIG, else
// ~/.taskbook.yaml. Only the implicit default path may be absent; a missing
// explicitly named file is an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional .env, absence is fine

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		explicit = false
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".taskbook.yaml")
		}
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Directory = getEnv("TASKBOOK_DIRECTORY", c.Directory)
	c.Backend = getEnv("TASKBOOK_BACKEND", c.Backend)
	c.Remote.BaseURL = getEnv("TASKBOOK_REMOTE_URL", c.Remote.BaseURL)
	c.Remote.Token = getEnv("TASKBOOK_REMOTE_TOKEN", c.Remote.Token)
	c.Remote.Namespace = getEnv("TASKBOOK_REMOTE_NAMESPACE", c.Remote.Namespace)
}

func (c *Config) normalize() {
	c.Directory = ExpandPath(c.Directory)
	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(c.Directory, "taskbook.db")
	} else {
		c.SQLitePath = ExpandPath(c.SQLitePath)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ExpandPath resolves a leading ~ against the user's home directory. Paths
// without the prefix come back unchanged.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
