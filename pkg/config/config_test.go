package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
)

var envKeys = []string{
	"POZNOTE_API_URL", "POZNOTE_USERNAME", "POZNOTE_PASSWORD", "POZNOTE_DEFAULT_WORKSPACE",
	"POZNOTE_USER_ID", "POZNOTE_TIMEOUT", "POZNOTE_DEBUG", "POZNOTE_LOG_FILE", "POZNOTE_LOG_LEVEL",
	"MCP_TRANSPORT", "MCP_HOST", "MCP_PORT", "MCP_AUTH_TOKEN", "MCP_AUTH_TOKEN_HASH",
}

// clearEnv blanks every variable Load reads so the host environment does not
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "poznote-mcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, poznote.DefaultBaseURL, cfg.Poznote.BaseURL)
	assert.Equal(t, "Poznote", cfg.Poznote.DefaultWorkspace)
	assert.Equal(t, "1", cfg.Poznote.DefaultUserID)
	assert.Equal(t, 30*time.Second, cfg.Poznote.Timeout)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, "127.0.0.1:8045", cfg.Addr())
	assert.Equal(t, "INFO", cfg.EffectiveLogLevel())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("POZNOTE_API_URL", "https://notes.example.com/api/v1")
	t.Setenv("POZNOTE_USERNAME", "admin")
	t.Setenv("POZNOTE_PASSWORD", "secret")
	t.Setenv("POZNOTE_DEFAULT_WORKSPACE", "Work")
	t.Setenv("POZNOTE_USER_ID", "3")
	t.Setenv("POZNOTE_TIMEOUT", "12")
	t.Setenv("MCP_TRANSPORT", "Streamable-HTTP")
	t.Setenv("MCP_HOST", "0.0.0.0")
	t.Setenv("MCP_PORT", "9000")
	t.Setenv("MCP_AUTH_TOKEN", "tok")
	t.Setenv("POZNOTE_DEBUG", "1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, poznote.Config{
		BaseURL:          "https://notes.example.com/api/v1",
		Username:         "admin",
		Password:         "secret",
		DefaultWorkspace: "Work",
		DefaultUserID:    "3",
		Timeout:          12 * time.Second,
	}, cfg.Poznote)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, "tok", cfg.AuthToken)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "DEBUG", cfg.EffectiveLogLevel())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
poznote:
  api_url: http://poznote.lan/api/v1
  username: file-user
  password: file-pass
  timeout: 1m
server:
  transport: sse
  port: 9100
  auth_token_hash: "$2a$10$abcdefghijklmnopqrstuu"
log:
  level: warn
  file: /tmp/poznote-mcp.log
`)
	t.Setenv("POZNOTE_USERNAME", "env-user")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://poznote.lan/api/v1", cfg.Poznote.BaseURL)
	assert.Equal(t, "env-user", cfg.Poznote.Username, "environment overrides the file")
	assert.Equal(t, "file-pass", cfg.Poznote.Password)
	assert.Equal(t, time.Minute, cfg.Poznote.Timeout)
	assert.Equal(t, TransportSSE, cfg.Transport)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuu", cfg.AuthTokenHash)
	assert.Equal(t, "warn", cfg.EffectiveLogLevel())
	assert.Equal(t, "/tmp/poznote-mcp.log", cfg.LogFile)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{"bad port", map[string]string{"MCP_PORT": "http"}, ""},
		{"bad timeout", map[string]string{"POZNOTE_TIMEOUT": "soon"}, ""},
		{"bad debug", map[string]string{"POZNOTE_DEBUG": "maybe"}, ""},
		{"bad yaml", nil, "poznote: [unclosed"},
		{"bad file timeout", nil, "poznote:\n  timeout: -5s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"stdio ignores port", func(c *Config) { c.Port = 0 }, ""},
		{"unknown transport", func(c *Config) { c.Transport = "websocket" }, `unsupported transport "websocket"`},
		{"http bad port", func(c *Config) { c.Transport = TransportHTTP; c.Port = 70000 }, "invalid port 70000"},
		{"sse empty host", func(c *Config) { c.Transport = TransportSSE; c.Host = " " }, "host must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30", 30 * time.Second, false},
		{"2.5", 2500 * time.Millisecond, false},
		{"45s", 45 * time.Second, false},
		{"1m", time.Minute, false},
		{"0", 0, true},
		{"later", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeout(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
