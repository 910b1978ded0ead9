package poznote

import (
	"strings"
	"time"
)

const (
	DefaultBaseURL   = "http://localhost:8040/api/v1"
	DefaultWorkspace = "Poznote"
	DefaultUserID    = "1"
	DefaultTimeout   = 30 * time.Second
)

// Config is the connection configuration of a Client. It is built once at
// startup and never mutated afterwards; per-call overrides are passed as
// method arguments.
type Config struct {
	BaseURL          string
	Username         string
	Password         string
	DefaultWorkspace string
	DefaultUserID    string
	Timeout          time.Duration
}

// Validate reports the settings required to talk to the backend that are not set.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, "POZNOTE_API_URL")
	}
	if c.Username == "" {
		missing = append(missing, "POZNOTE_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "POZNOTE_PASSWORD")
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}

	return nil
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
