package coach

import (
	"os"
	"strconv"
)

// Config holds the coach subsystem settings. The coach is disabled by
// default; the scheduler works fully without it.
type Config struct {
	Enabled   bool
	LogCalls  bool
	Endpoint  string
	Model     string
	TimeoutMs int
}

// DefaultConfig returns a Config with the coach disabled.
func DefaultConfig() Config {
	return Config{
		Enabled:   false,
		LogCalls:  false,
		Endpoint:  "http://localhost:11434",
		Model:     "llama3.2",
		TimeoutMs: 15000,
	}
}

// LoadConfig reads coach configuration from SSC_COACH_* environment
// variables, falling back to defaults for any unset value.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("SSC_COACH_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SSC_COACH_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SSC_COACH_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("SSC_COACH_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SSC_COACH_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	return cfg
}
