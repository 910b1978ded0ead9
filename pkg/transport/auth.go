package transport

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BearerAuth checks the Authorization header of every request against a
// static token or a bcrypt hash of it.
type BearerAuth struct {
	token []byte
	hash  []byte
}

// NewBearerAuth builds the checker. A hash takes precedence over a plain
// token. With neither, a random token is generated and logged once so the
// operator can hand it to the client.
func NewBearerAuth(token, hash string) (*BearerAuth, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("MCP_AUTH_TOKEN_HASH is not a bcrypt hash: %w", err)
		}
		return &BearerAuth{hash: []byte(hash)}, nil
	}

	if token == "" {
		generated, err := GenerateToken()
		if err != nil {
			return nil, err
		}
		token = generated
		slog.Warn("MCP_AUTH_TOKEN not set, generated a token for this run", "token", token)
	}

	return &BearerAuth{token: []byte(token)}, nil
}

// GenerateToken returns 32 random bytes, hex encoded.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate auth token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Allows reports whether presented is the expected token.
func (a *BearerAuth) Allows(presented string) bool {
	if presented == "" {
		return false
	}

	if a.hash != nil {
		return bcrypt.CompareHashAndPassword(a.hash, []byte(presented)) == nil
	}

	return subtle.ConstantTimeCompare(a.token, []byte(presented)) == 1
}

// Middleware rejects requests without a valid bearer token before they reach
// next, so no session is created for them.
func (a *BearerAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Allows(bearerToken(r)) {
			slog.Warn("rejected unauthenticated request", "path", r.URL.Path, "remote", r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", `Bearer realm="poznote-mcp"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
