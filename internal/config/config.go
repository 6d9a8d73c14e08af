// Package config loads and watches the ccdash configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the main configuration.
type Config struct {
	// PipePath is the named pipe the hook producer writes events to.
	PipePath string `toml:"pipe_path"`

	// Model overrides the model id reported by SessionStart events.
	// Usually left empty so the event stream decides.
	Model string `toml:"model"`

	// RefreshMS is the dashboard redraw interval in milliseconds.
	RefreshMS int `toml:"refresh_ms"`

	Log LogConfig `toml:"log"`
	Git GitConfig `toml:"git"`
	MCP MCPConfig `toml:"mcp"`
}

// LogConfig controls the diagnostic log sink.
type LogConfig struct {
	// Path is the log file. The TUI owns the terminal, so diagnostics
	// always go to a file, never stderr.
	Path string `toml:"path"`

	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// GitConfig controls the git status poller.
type GitConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
}

// MCPConfig controls MCP server discovery from the host settings file.
type MCPConfig struct {
	Enabled         bool   `toml:"enabled"`
	SettingsPath    string `toml:"settings_path"`
	IntervalSeconds int    `toml:"interval_seconds"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccdash", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ccdash", "config.toml")
}

// DefaultPipePath returns the default event transport path.
func DefaultPipePath() string {
	return filepath.Join(os.TempDir(), "ccdash-events.pipe")
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		PipePath:  DefaultPipePath(),
		RefreshMS: 250,
		Log: LogConfig{
			Path:  filepath.Join(filepath.Dir(DefaultPath()), "ccdash.log"),
			Level: "info",
		},
		Git: GitConfig{
			Enabled:         true,
			IntervalSeconds: 5,
		},
		MCP: MCPConfig{
			Enabled:         true,
			SettingsPath:    filepath.Join(home, ".claude", "settings.json"),
			IntervalSeconds: 30,
		},
	}
}

// Load loads configuration from path, falling back to DefaultPath when
// empty. A missing file yields the defaults, not an error; a present but
// unparseable file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// applyDefaults fills zero values left by a sparse config file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.PipePath == "" {
		cfg.PipePath = def.PipePath
	}
	if cfg.RefreshMS <= 0 {
		cfg.RefreshMS = def.RefreshMS
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = def.Log.Path
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Git.IntervalSeconds <= 0 {
		cfg.Git.IntervalSeconds = def.Git.IntervalSeconds
	}
	if cfg.MCP.SettingsPath == "" {
		cfg.MCP.SettingsPath = def.MCP.SettingsPath
	}
	if cfg.MCP.IntervalSeconds <= 0 {
		cfg.MCP.IntervalSeconds = def.MCP.IntervalSeconds
	}
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) {
	if pipe := os.Getenv("CCDASH_PIPE"); pipe != "" {
		cfg.PipePath = pipe
	}
	if model := os.Getenv("CCDASH_MODEL"); model != "" {
		cfg.Model = model
	}
	if level := os.Getenv("CCDASH_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

// RefreshInterval returns the dashboard redraw interval.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshMS) * time.Millisecond
}

// GitInterval returns the git polling interval.
func (c *Config) GitInterval() time.Duration {
	return time.Duration(c.Git.IntervalSeconds) * time.Second
}

// MCPInterval returns the MCP polling interval.
func (c *Config) MCPInterval() time.Duration {
	return time.Duration(c.MCP.IntervalSeconds) * time.Second
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}
