package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/nimbus-tools/weather-mcp/weather"
)

var envKeys = []string{
	"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "MCP_TRANSPORT", "MCP_ADDR",
	"CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
}

// clearEnv unsets every variable read by the package for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.APIKey != weather.PlaceholderAPIKey {
		t.Errorf("APIKey = %q, want placeholder", c.APIKey)
	}
	if !c.DataSource().Mock() {
		t.Error("default data source should be mock")
	}
	if c.BaseURL != weather.DefaultBaseURL {
		t.Errorf("BaseURL = %q", c.BaseURL)
	}
	if c.Transport != TransportStdio {
		t.Errorf("Transport = %q", c.Transport)
	}
	if c.Addr != DefaultAddr {
		t.Errorf("Addr = %q", c.Addr)
	}
	if !slices.Equal(c.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v", c.AllowedOrigins)
	}
	if c.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", c.LogLevel)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("OPENWEATHER_BASE_URL", "http://127.0.0.1:9999/weather")
	t.Setenv("MCP_TRANSPORT", "SSE")
	t.Setenv("MCP_ADDR", ":8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.DataSource().Mock() {
		t.Error("data source with a real key should be live")
	}
	if got := c.DataSource().BaseURL; got != "http://127.0.0.1:9999/weather" {
		t.Errorf("BaseURL = %q", got)
	}
	if c.Transport != TransportSSE || c.Addr != ":8080" {
		t.Errorf("Transport, Addr = %q, %q", c.Transport, c.Addr)
	}
	if want := []string{"http://a.example", "http://b.example"}; !slices.Equal(c.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", c.AllowedOrigins, want)
	}
	if c.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", c.LogLevel)
	}
}

func TestFromEnv_EmptyKeyIsLive(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.APIKey != "" || c.DataSource().Mock() {
		t.Errorf("empty key should select live mode, got APIKey=%q mock=%v", c.APIKey, c.DataSource().Mock())
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown transport": {"MCP_TRANSPORT": "websocket"},
		"unknown log level": {"LOG_LEVEL": "chatty"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "test.env")
	content := "OPENWEATHER_API_KEY=from-file\nMCP_ADDR=127.0.0.1:9000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.APIKey != "from-file" || c.Addr != "127.0.0.1:9000" {
		t.Errorf("APIKey, Addr = %q, %q", c.APIKey, c.Addr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.APIKey != weather.PlaceholderAPIKey {
		t.Errorf("APIKey = %q", c.APIKey)
	}
}
