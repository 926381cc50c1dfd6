package config

import (
	"github.com/vietddude/clipwatch/internal/infra/extractor/ytdlp"
	"github.com/vietddude/clipwatch/internal/infra/storage/sqlite"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Monitor       MonitorConfig       `yaml:"monitor"`
	Download      ytdlp.Config        `yaml:"download"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Database      sqlite.Config       `yaml:"database"`
	Logging       LoggingConfig       `yaml:"logging"`
	Server        ServerConfig        `yaml:"server"`
	Daemon        DaemonConfig        `yaml:"daemon"`
}

// MonitorConfig holds the check-cycle settings.
type MonitorConfig struct {
	IntervalMinutes  int         `yaml:"interval_minutes"`
	MaxItemsPerCheck int         `yaml:"max_items_per_check"`
	FailureThreshold int         `yaml:"failure_threshold"`
	Delays           DelayConfig `yaml:"anti_throttle_delays"`
}

// DelayConfig holds the randomized pause bounds, in seconds, as [min, max]
// pairs.
type DelayConfig struct {
	BetweenItems   []int `yaml:"between_items"`
	BetweenSources []int `yaml:"between_sources"`
}

// NotificationsConfig holds desktop notification settings. Enabled is the
// config-file default; the persisted settings store overrides it at runtime.
type NotificationsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`   // debug, info, warn, error
	Format string `yaml:"format"`  // text, json
	LogDir string `yaml:"log_dir"` // headless mode writes here
}

// ServerConfig holds the optional health/metrics HTTP server settings.
type ServerConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// DaemonConfig holds background-process settings.
type DaemonConfig struct {
	PidFile string `yaml:"pid_file"`
}
