// Package config holds runtime settings for the sync engine and the tuning
// constants the engine treats as configurable rather than hard-coded.
package config

import "time"

// Config holds runtime settings for the sync engine.
//
// Endpoints:
//   - APIEndpointURL: URL of the GraphQL API endpoint.
//   - TokenEndpointURL: URL of the credential-refresh (token exchange) endpoint.
//
// Tuning (all durations):
//   - RecordCacheTTL: freshness window of the record store's internal cache.
//   - SyncCooldown: minimum gap between non-forced sync runs.
//   - InsightFreshnessGrace: how recent a local insight edit must be for
//     pull-sync to leave it untouched.
//   - RefreshCooldown / RefreshMaxAttempts: credential refresh rate limit.
//   - PollInterval / PollMaxDuration: status poller cadence and deadline.
type Config struct {
	APIEndpointURL   string
	TokenEndpointURL string
	DatabasePath     string

	RecordCacheTTL        time.Duration
	SyncCooldown          time.Duration
	InsightFreshnessGrace time.Duration

	RefreshCooldown    time.Duration
	RefreshMaxAttempts int

	PollInterval    time.Duration
	PollMaxDuration time.Duration
}

// LoadDefaults populates c with the engine defaults.
func (c *Config) LoadDefaults() {
	c.APIEndpointURL = "https://api.meditationapp.example/graphql"
	c.TokenEndpointURL = "https://auth.meditationapp.example/oauth2/token"
	c.DatabasePath = "meditation.db"

	c.RecordCacheTTL = 5 * time.Minute
	c.SyncCooldown = 5 * time.Minute
	c.InsightFreshnessGrace = 5 * time.Minute

	c.RefreshCooldown = 60 * time.Second
	c.RefreshMaxAttempts = 3

	c.PollInterval = 5 * time.Second
	c.PollMaxDuration = 5 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
