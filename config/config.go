// Package config reads the settings of the weather server from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nimbus-tools/weather-mcp/weather"
)

const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"

	DefaultAddr = "127.0.0.1:8000"
)

// Config holds the process settings. It is read once at startup.
type Config struct {
	// APIKey is the OpenWeatherMap credential. weather.PlaceholderAPIKey when unset.
	APIKey  string
	BaseURL string

	Transport      string
	Addr           string
	AllowedOrigins []string
	LogLevel       slog.Level
}

// DataSource returns the weather data source described by c.
func (c *Config) DataSource() weather.DataSource {
	return weather.DataSource{APIKey: c.APIKey, BaseURL: c.BaseURL}
}

// Load reads the configuration from the environment. Variables are first loaded from
// envFiles (".env" if none is given); missing files are ignored and variables already
// set in the environment take precedence.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	c := &Config{
		BaseURL:        getEnv("OPENWEATHER_BASE_URL", weather.DefaultBaseURL),
		Transport:      strings.ToLower(getEnv("MCP_TRANSPORT", TransportStdio)),
		Addr:           getEnv("MCP_ADDR", DefaultAddr),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	// An explicitly empty key is kept: only an unset variable falls back to the placeholder.
	if v, ok := os.LookupEnv("OPENWEATHER_API_KEY"); ok {
		c.APIKey = v
	} else {
		c.APIKey = weather.PlaceholderAPIKey
	}

	var errs []error
	if err := c.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if err := c.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports settings that cannot be served.
func (c *Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportStdio, TransportSSE:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q: must be %q or %q", c.Transport, TransportStdio, TransportSSE))
	}
	if c.Transport == TransportSSE && c.Addr == "" {
		errs = append(errs, errors.New("listen address must not be empty"))
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("at least one allowed origin is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
