// Package config loads the suipic client configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything the client needs to talk to a suipic server.
type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	DebounceWindow time.Duration
	PageSize       int
	StateDir       string
}

const (
	defaultConfigPath = "~/.config/suipic/config.toml"
	defaultAPIURL     = "http://127.0.0.1:8080/api"
	defaultStateDir   = "~/.local/share/suipic"

	defaultRequestTimeout = 30 * time.Second
	defaultDebounceWindow = 500 * time.Millisecond
	defaultPageSize       = 50
)

// DefaultPath returns the expanded default config file location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

// Load parses the config file at path, falling back to defaults when the file
// is missing. An empty path means the default location. The SUIPIC_API_URL
// environment variable overrides the configured API URL.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}
	resolved := mustExpand(path)

	cfg := Config{
		APIURL:         defaultAPIURL,
		RequestTimeout: defaultRequestTimeout,
		DebounceWindow: defaultDebounceWindow,
		PageSize:       defaultPageSize,
		StateDir:       mustExpand(defaultStateDir),
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL           string `toml:"api_url"`
		RequestTimeoutMS int    `toml:"request_timeout_ms"`
		DebounceMS       int    `toml:"debounce_ms"`
		PageSize         int    `toml:"page_size"`
		StateDir         string `toml:"state_dir"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if s := strings.TrimSpace(raw.APIURL); s != "" {
		cfg.APIURL = s
	}
	if raw.RequestTimeoutMS > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutMS) * time.Millisecond
	}
	if raw.DebounceMS > 0 {
		cfg.DebounceWindow = time.Duration(raw.DebounceMS) * time.Millisecond
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if s := strings.TrimSpace(raw.StateDir); s != "" {
		cfg.StateDir = mustExpand(s)
	}

	return applyEnv(cfg), nil
}

// SessionDBPath returns the path of the SQLite session store.
func (c Config) SessionDBPath() string {
	return filepath.Join(c.StateDir, "session.db")
}

func applyEnv(cfg Config) Config {
	if s := strings.TrimSpace(os.Getenv("SUIPIC_API_URL")); s != "" {
		cfg.APIURL = s
	}
	return cfg
}

func mustExpand(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
