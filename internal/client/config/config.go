package config

import "time"

// Config holds runtime settings for the device agent.
//
// Fields:
//   - ServerBaseURL: base URL of the cloud sync server.
//   - DatabasePath: path to the local SQLite database file.
//   - AnnounceInterval: how often the dashboard bridge broadcasts readiness.
//
// Units: AnnounceInterval is a time.Duration (e.g., 3*time.Second).
type Config struct {
	ServerBaseURL    string
	DatabasePath     string
	AnnounceInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "videonotes.db"
	c.AnnounceInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
