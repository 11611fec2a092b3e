// Package config holds the agent configuration.
package config

import (
	"encoding/json"
	"os"

	"github.com/t-hosaka/webpush-agent/pkg/platform"
)

// Config represents the agent configuration.
type Config struct {
	// RegistryURL is the base URL of the backend device registry.
	RegistryURL string `json:"registry_url"`

	// StateDir is the per-profile state directory. Empty means the
	// platform default.
	StateDir string `json:"state_dir,omitempty"`

	// PushServiceURL is the base URL under which delivery endpoints are
	// allocated.
	PushServiceURL string `json:"push_service_url,omitempty"`

	// UserAgent overrides the client identity string sent in registration
	// payloads.
	UserAgent string `json:"user_agent,omitempty"`
}

// LoadConfig loads configuration from a JSON file. Environment variables
// override file values.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	applyEnvOverrides(&config)
	return &config, nil
}

// DefaultConfig returns a default configuration with environment overrides
// applied.
func DefaultConfig() *Config {
	config := &Config{
		RegistryURL: "http://localhost:8080",
		StateDir:    platform.DefaultStateDir(),
	}
	applyEnvOverrides(config)
	return config
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("WEBPUSH_AGENT_REGISTRY_URL"); v != "" {
		config.RegistryURL = v
	}
	if v := os.Getenv("WEBPUSH_AGENT_STATE_DIR"); v != "" {
		config.StateDir = v
	}
	if v := os.Getenv("WEBPUSH_AGENT_PUSH_SERVICE_URL"); v != "" {
		config.PushServiceURL = v
	}
	if v := os.Getenv("WEBPUSH_AGENT_USER_AGENT"); v != "" {
		config.UserAgent = v
	}
}
