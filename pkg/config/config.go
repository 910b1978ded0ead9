// Package config assembles the process configuration from a .env file, an
// optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"

	DefaultHost = "127.0.0.1"
	DefaultPort = 8045
)

// Config is everything the server needs to start.
type Config struct {
	Poznote poznote.Config

	Transport     string
	Host          string
	Port          int
	AuthToken     string
	AuthTokenHash string

	Debug    bool
	LogLevel string
	LogFile  string
}

// Addr is the host:port the HTTP transports listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EffectiveLogLevel is LogLevel, raised to DEBUG when Debug is set.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "DEBUG"
	}
	if c.LogLevel == "" {
		return "INFO"
	}
	return c.LogLevel
}

// Validate checks the settings needed to start serving. Missing backend
// credentials are not an error here; they are reported on each call.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportSSE, TransportHTTP:
	default:
		return fmt.Errorf("unsupported transport %q (use %s, %s or %s)", c.Transport, TransportStdio, TransportSSE, TransportHTTP)
	}

	if c.Transport != TransportStdio {
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("invalid port %d", c.Port)
		}
		if strings.TrimSpace(c.Host) == "" {
			return errors.New("host must not be empty")
		}
	}

	return nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Poznote: poznote.Config{
			BaseURL:          poznote.DefaultBaseURL,
			DefaultWorkspace: poznote.DefaultWorkspace,
			DefaultUserID:    poznote.DefaultUserID,
			Timeout:          poznote.DefaultTimeout,
		},
		Transport: TransportStdio,
		Host:      DefaultHost,
		Port:      DefaultPort,
		LogLevel:  "INFO",
	}
}

type fileConfig struct {
	Poznote struct {
		APIURL           *string `yaml:"api_url"`
		Username         *string `yaml:"username"`
		Password         *string `yaml:"password"`
		DefaultWorkspace *string `yaml:"default_workspace"`
		UserID           *string `yaml:"user_id"`
		Timeout          *string `yaml:"timeout"`
	} `yaml:"poznote"`
	Server struct {
		Transport     *string `yaml:"transport"`
		Host          *string `yaml:"host"`
		Port          *int    `yaml:"port"`
		AuthToken     *string `yaml:"auth_token"`
		AuthTokenHash *string `yaml:"auth_token_hash"`
	} `yaml:"server"`
	Log struct {
		Level *string `yaml:"level"`
		File  *string `yaml:"file"`
		Debug *bool   `yaml:"debug"`
	} `yaml:"log"`
}

// Load builds the configuration. Later sources override earlier ones:
// defaults, the YAML file at path (when path is not empty), then the
// environment. A .env file in the working directory is loaded into the
// environment first without overriding variables that are already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using the environment", "error", err)
	}

	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.Poznote.BaseURL, fc.Poznote.APIURL)
	setString(&c.Poznote.Username, fc.Poznote.Username)
	setString(&c.Poznote.Password, fc.Poznote.Password)
	setString(&c.Poznote.DefaultWorkspace, fc.Poznote.DefaultWorkspace)
	setString(&c.Poznote.DefaultUserID, fc.Poznote.UserID)
	if fc.Poznote.Timeout != nil {
		d, err := ParseTimeout(*fc.Poznote.Timeout)
		if err != nil {
			return fmt.Errorf("config file %s: poznote.timeout: %w", path, err)
		}
		c.Poznote.Timeout = d
	}

	setString(&c.Transport, fc.Server.Transport)
	setString(&c.Host, fc.Server.Host)
	if fc.Server.Port != nil {
		c.Port = *fc.Server.Port
	}
	setString(&c.AuthToken, fc.Server.AuthToken)
	setString(&c.AuthTokenHash, fc.Server.AuthTokenHash)

	setString(&c.LogLevel, fc.Log.Level)
	setString(&c.LogFile, fc.Log.File)
	if fc.Log.Debug != nil {
		c.Debug = *fc.Log.Debug
	}

	c.Transport = NormalizeTransport(c.Transport)
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	env := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	env("POZNOTE_API_URL", &c.Poznote.BaseURL)
	env("POZNOTE_USERNAME", &c.Poznote.Username)
	env("POZNOTE_PASSWORD", &c.Poznote.Password)
	env("POZNOTE_DEFAULT_WORKSPACE", &c.Poznote.DefaultWorkspace)
	env("POZNOTE_USER_ID", &c.Poznote.DefaultUserID)
	env("MCP_HOST", &c.Host)
	env("MCP_AUTH_TOKEN", &c.AuthToken)
	env("MCP_AUTH_TOKEN_HASH", &c.AuthTokenHash)
	env("POZNOTE_LOG_FILE", &c.LogFile)
	env("POZNOTE_LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("MCP_TRANSPORT"); ok && v != "" {
		c.Transport = NormalizeTransport(v)
	}

	if v, ok := lookup("POZNOTE_TIMEOUT"); ok && v != "" {
		d, err := ParseTimeout(v)
		if err != nil {
			return fmt.Errorf("POZNOTE_TIMEOUT: %w", err)
		}
		c.Poznote.Timeout = d
	}

	if v, ok := lookup("MCP_PORT"); ok && v != "" {
		port, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("MCP_PORT must be a number, got %q", v)
		}
		c.Port = port
	}

	if v, ok := lookup("POZNOTE_DEBUG"); ok && v != "" {
		debug, err := cast.ToBoolE(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("POZNOTE_DEBUG must be a boolean, got %q", v)
		}
		c.Debug = debug
	}

	return nil
}

// NormalizeTransport lower-cases a transport name and maps the aliases
// "streamable-http" and "streamable" onto "http".
func NormalizeTransport(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "streamable-http", "streamable", "streamable_http":
		return TransportHTTP
	}
	return name
}

// ParseTimeout accepts a Go duration ("45s", "1m") or a number of seconds
// ("30", "2.5").
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if secs, err := cast.ToFloat64E(s); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", s)
	}

	return d, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
