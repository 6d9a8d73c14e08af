package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PipePath != DefaultPipePath() {
		t.Errorf("pipe path = %q, want default", cfg.PipePath)
	}
	if cfg.RefreshMS != 250 {
		t.Errorf("refresh = %d, want 250", cfg.RefreshMS)
	}
	if !cfg.Git.Enabled {
		t.Errorf("git polling disabled by default")
	}
}

func TestLoadSparseFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
pipe_path = "/run/custom.pipe"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PipePath != "/run/custom.pipe" {
		t.Errorf("pipe path = %q", cfg.PipePath)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	// Unset fields keep their defaults.
	if cfg.RefreshMS != 250 {
		t.Errorf("refresh = %d, want 250", cfg.RefreshMS)
	}
	if cfg.Git.IntervalSeconds != 5 {
		t.Errorf("git interval = %d, want 5", cfg.Git.IntervalSeconds)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("pipe_path = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load of invalid TOML succeeded")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CCDASH_PIPE", "/run/env.pipe")
	t.Setenv("CCDASH_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PipePath != "/run/env.pipe" {
		t.Errorf("pipe path = %q, want env override", cfg.PipePath)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want env override", cfg.Log.Level)
	}
}

func TestIntervalHelpers(t *testing.T) {
	cfg := Default()
	if got := cfg.RefreshInterval(); got != 250*time.Millisecond {
		t.Errorf("refresh interval = %v", got)
	}
	if got := cfg.GitInterval(); got != 5*time.Second {
		t.Errorf("git interval = %v", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	if got := ExpandPath("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandPath = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath = %q", got)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`refresh_ms = 100`), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	stop, err := Watch(path, nil, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte(`refresh_ms = 750`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.RefreshMS != 750 {
			t.Errorf("reloaded refresh = %d, want 750", cfg.RefreshMS)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}
