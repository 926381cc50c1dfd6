package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EnvSubstitution(t *testing.T) {
	// Setup env var
	os.Setenv("TEST_DB_PATH", "/var/lib/clipwatch/state.db")
	defer os.Unsetenv("TEST_DB_PATH")

	// Create temp config file
	configContent := `
database:
  path: ${TEST_DB_PATH}
`
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write([]byte(configContent)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()

	// Load config
	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "/var/lib/clipwatch/state.db" {
		t.Errorf("Expected path /var/lib/clipwatch/state.db, got %s", cfg.Database.Path)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Monitor.IntervalMinutes != 30 {
		t.Errorf("interval_minutes = %d, want 30", cfg.Monitor.IntervalMinutes)
	}
	if cfg.Monitor.MaxItemsPerCheck != 5 {
		t.Errorf("max_items_per_check = %d, want 5", cfg.Monitor.MaxItemsPerCheck)
	}
	if cfg.Download.Binary != "yt-dlp" {
		t.Errorf("download.binary = %q, want yt-dlp", cfg.Download.Binary)
	}
	if cfg.Notifications.Enabled {
		t.Error("notifications should default to disabled")
	}
}

func TestLoad_PartialFileMergesDefaults(t *testing.T) {
	configContent := `
monitor:
  interval_minutes: 5
  anti_throttle_delays:
    between_items: [1, 2]
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Monitor.IntervalMinutes != 5 {
		t.Errorf("interval_minutes = %d, want 5", cfg.Monitor.IntervalMinutes)
	}
	if got := cfg.Monitor.Delays.BetweenItems; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("between_items = %v, want [1 2]", got)
	}
	// Untouched sections keep their defaults.
	if got := cfg.Monitor.Delays.BetweenSources; len(got) != 2 || got[0] != 10 || got[1] != 30 {
		t.Errorf("between_sources = %v, want [10 30]", got)
	}
	if cfg.Database.Path != "clipwatch.db" {
		t.Errorf("database.path = %q, want clipwatch.db", cfg.Database.Path)
	}
}

func TestLoad_BooleanOverride(t *testing.T) {
	if !Default().Download.GeoBypass {
		t.Fatal("geo_bypass should default to true")
	}

	configContent := `
download:
  geo_bypass: false
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Download.GeoBypass {
		t.Error("explicit geo_bypass: false was overridden by the default")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("monitor: [not: a map"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
