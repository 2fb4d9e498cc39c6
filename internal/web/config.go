package web

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ru-addr/internal/config"
)

// Config represents the web server configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Auth      AuthConfig      `json:"auth"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
	// MaxBodyBytes caps request bodies
	MaxBodyBytes int64 `json:"max_body_bytes"`
}

// RateLimitConfig is a token bucket shared by all clients; zero
// RequestsPerSecond disables limiting
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key"`
}

// LoadConfig loads configuration from a JSON file over the defaults
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return cfg, nil
}

// DefaultConfig returns the configuration from the environment, falling
// back to development defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         config.GetEnvInt("WEB_PORT", 8080),
			Host:         config.GetEnv("WEB_HOST", "0.0.0.0"),
			MaxBodyBytes: int64(config.GetEnvInt("WEB_MAX_BODY_BYTES", 1<<20)),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: config.GetEnvFloat("WEB_RATE_LIMIT", 50),
			Burst:             config.GetEnvInt("WEB_RATE_BURST", 100),
		},
		Auth: AuthConfig{
			Enabled: config.GetEnvBool("WEB_AUTH_ENABLED", false),
			APIKey:  config.GetEnv("WEB_API_KEY", ""),
		},
	}
}
