package poznote

import (
	"fmt"
	"strings"
)

// BackendError is returned for any non-2xx reply (other than a tolerated 404),
// for transport failures and timeouts (StatusCode 0), and for malformed bodies.
type BackendError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("poznote %s %s: %v", e.Method, e.Path, e.Err)
	}

	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}

	if e.Err != nil {
		return fmt.Sprintf("poznote %s %s: HTTP %d: %v: %s", e.Method, e.Path, e.StatusCode, e.Err, body)
	}

	return fmt.Sprintf("poznote %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, body)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ConfigurationError lists the settings that must be provided before the
// backend can be reached.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// Remediation returns the error text together with an example configuration
// an operator can copy.
func (e *ConfigurationError) Remediation() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	sb.WriteString("\n\nSet them in the environment (or a .env file) before starting the server, for example:\n\n")
	sb.WriteString("  POZNOTE_API_URL=http://localhost:8040/api/v1\n")
	sb.WriteString("  POZNOTE_USERNAME=admin\n")
	sb.WriteString("  POZNOTE_PASSWORD=changeme\n")
	sb.WriteString("  POZNOTE_DEFAULT_WORKSPACE=Poznote\n")
	return sb.String()
}
