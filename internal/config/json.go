package config

import (
	"encoding/json"
	"os"

	"github.com/scott12355/MeditationApp-sub000/internal/flagx"
	"github.com/scott12355/MeditationApp-sub000/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be given either as strings like "5m" or as integer nanoseconds; absent
// fields keep their current (default) values.
type JSONConfig struct {
	APIEndpointURL   *string `json:"api_endpoint_url"`
	TokenEndpointURL *string `json:"token_endpoint_url"`
	DatabasePath     *string `json:"database_path"`

	RecordCacheTTL        *timex.Duration `json:"record_cache_ttl"`
	SyncCooldown          *timex.Duration `json:"sync_cooldown"`
	InsightFreshnessGrace *timex.Duration `json:"insight_freshness_grace"`

	RefreshCooldown    *timex.Duration `json:"refresh_cooldown"`
	RefreshMaxAttempts *int            `json:"refresh_max_attempts"`

	PollInterval    *timex.Duration `json:"poll_interval"`
	PollMaxDuration *timex.Duration `json:"poll_max_duration"`
}

// parseJSON overlays cfg with values loaded from the JSON file named by the
// -c/-config flag. No flag, no overlay. Panics on read or unmarshal errors;
// intended usage is defaults -> parseJSON -> parseFlags.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIEndpointURL != nil {
		cfg.APIEndpointURL = *jc.APIEndpointURL
	}
	if jc.TokenEndpointURL != nil {
		cfg.TokenEndpointURL = *jc.TokenEndpointURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.RecordCacheTTL != nil {
		cfg.RecordCacheTTL = jc.RecordCacheTTL.Duration
	}
	if jc.SyncCooldown != nil {
		cfg.SyncCooldown = jc.SyncCooldown.Duration
	}
	if jc.InsightFreshnessGrace != nil {
		cfg.InsightFreshnessGrace = jc.InsightFreshnessGrace.Duration
	}
	if jc.RefreshCooldown != nil {
		cfg.RefreshCooldown = jc.RefreshCooldown.Duration
	}
	if jc.RefreshMaxAttempts != nil {
		cfg.RefreshMaxAttempts = *jc.RefreshMaxAttempts
	}
	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.PollMaxDuration != nil {
		cfg.PollMaxDuration = jc.PollMaxDuration.Duration
	}
}
