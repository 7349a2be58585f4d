// Package config holds server configuration: a YAML file for durable
// settings, overridden by environment variables for deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	LLM    LLMConfig    `yaml:"llm"`
	Stream StreamConfig `yaml:"stream"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LLMConfig configures the generation backend.
type LLMConfig struct {
	Provider        string `yaml:"provider"` // anthropic, gemini
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GeminiModel     string `yaml:"gemini_model"`
	DefaultProfile  string `yaml:"default_profile"` // dashboard, dataviz, form
}

// StreamConfig configures delivery pacing. Durations are strings such as
// "3s" or "50ms".
type StreamConfig struct {
	HeartbeatInterval string `yaml:"heartbeat_interval"`
	LineDelay         string `yaml:"line_delay"`
	GenerationTimeout string `yaml:"generation_timeout"`
}

// Profiles enumerates the supported generation profiles.
var Profiles = []string{"dashboard", "dataviz", "form"}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8123,
			CORSOrigins: []string{
				"http://localhost:5173",
				"http://localhost:5174",
			},
		},
		LLM: LLMConfig{
			Provider:       "anthropic",
			DefaultProfile: "dashboard",
		},
		Stream: StreamConfig{
			HeartbeatInterval: "3s",
			LineDelay:         "50ms",
			GenerationTimeout: "120s",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("A2UI_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitAndTrim(origins)
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.AnthropicAPIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.GeminiAPIKey = key
	}
	if model := os.Getenv("ANTHROPIC_MODEL"); model != "" {
		c.LLM.AnthropicModel = model
	}
	if model := os.Getenv("GOOGLE_MODEL"); model != "" {
		c.LLM.GeminiModel = model
	}
	if d := os.Getenv("A2UI_HEARTBEAT_INTERVAL"); d != "" {
		c.Stream.HeartbeatInterval = d
	}
	if d := os.Getenv("A2UI_LINE_DELAY"); d != "" {
		c.Stream.LineDelay = d
	}
	if d := os.Getenv("A2UI_GENERATION_TIMEOUT"); d != "" {
		c.Stream.GenerationTimeout = d
	}
}

// HeartbeatIntervalDuration parses the configured heartbeat interval.
func (s StreamConfig) HeartbeatIntervalDuration() time.Duration {
	return parseDuration(s.HeartbeatInterval, 3*time.Second)
}

// LineDelayDuration parses the configured inter-line delay.
func (s StreamConfig) LineDelayDuration() time.Duration {
	return parseDuration(s.LineDelay, 50*time.Millisecond)
}

// GenerationTimeoutDuration parses the configured generation timeout.
func (s StreamConfig) GenerationTimeoutDuration() time.Duration {
	return parseDuration(s.GenerationTimeout, 120*time.Second)
}

// ProfileTemplate maps a generation profile to its prompt template name.
// Unknown profiles fall back to the configured default.
func (c *Config) ProfileTemplate(profile string) string {
	if !validProfile(profile) {
		profile = c.LLM.DefaultProfile
		if !validProfile(profile) {
			profile = "dashboard"
		}
	}
	return profile + "_generation"
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func validProfile(profile string) bool {
	for _, p := range Profiles {
		if profile == p {
			return true
		}
	}
	return false
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
