package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file. A missing file is not an
// error: the defaults are used so a fresh install works without any setup.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the built-in configuration. Boolean defaults are set
// here rather than in applyDefaults: Load unmarshals on top of this
// struct, so an explicit `false` in the file still wins.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.Download.GeoBypass = true
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Monitor.IntervalMinutes == 0 {
		cfg.Monitor.IntervalMinutes = 30
	}
	if cfg.Monitor.MaxItemsPerCheck == 0 {
		cfg.Monitor.MaxItemsPerCheck = 5
	}
	if cfg.Monitor.FailureThreshold == 0 {
		cfg.Monitor.FailureThreshold = 1
	}
	if len(cfg.Monitor.Delays.BetweenItems) != 2 {
		cfg.Monitor.Delays.BetweenItems = []int{5, 15}
	}
	if len(cfg.Monitor.Delays.BetweenSources) != 2 {
		cfg.Monitor.Delays.BetweenSources = []int{10, 30}
	}

	if cfg.Download.Binary == "" {
		cfg.Download.Binary = "yt-dlp"
	}
	if cfg.Download.OutputDir == "" {
		cfg.Download.OutputDir = "./downloads"
	}
	if cfg.Download.Quality == "" {
		cfg.Download.Quality = "best"
	}
	if cfg.Download.GeoBypassCountry == "" {
		cfg.Download.GeoBypassCountry = "US"
	}
	if cfg.Download.Timeout == 0 {
		cfg.Download.Timeout = 10 * time.Minute
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "clipwatch.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.LogDir == "" {
		cfg.Logging.LogDir = "logs"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Daemon.PidFile == "" {
		cfg.Daemon.PidFile = "clipwatch.pid"
	}
}
