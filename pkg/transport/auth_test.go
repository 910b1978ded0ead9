package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBearerAuth_Token(t *testing.T) {
	auth, err := NewBearerAuth("s3cret", "")
	require.NoError(t, err)

	assert.True(t, auth.Allows("s3cret"))
	assert.False(t, auth.Allows("s3cre"))
	assert.False(t, auth.Allows(""))
}

func TestBearerAuth_Hash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	auth, err := NewBearerAuth("ignored", string(hash))
	require.NoError(t, err)

	assert.True(t, auth.Allows("s3cret"))
	assert.False(t, auth.Allows("ignored"))
}

func TestBearerAuth_InvalidHash(t *testing.T) {
	_, err := NewBearerAuth("", "not-a-hash")
	assert.ErrorContains(t, err, "MCP_AUTH_TOKEN_HASH")
}

func TestBearerAuth_GeneratedToken(t *testing.T) {
	auth, err := NewBearerAuth("", "")
	require.NoError(t, err)

	require.Len(t, auth.token, 64)
	assert.True(t, auth.Allows(string(auth.token)))

	other, err := NewBearerAuth("", "")
	require.NoError(t, err)
	assert.NotEqual(t, auth.token, other.token)
}

func TestBearerAuth_Middleware(t *testing.T) {
	auth, err := NewBearerAuth("s3cret", "")
	require.NoError(t, err)

	reached := 0
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached++
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"valid", "Bearer s3cret", http.StatusNoContent},
		{"lower case scheme", "bearer s3cret", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sse", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}

	assert.Equal(t, 2, reached)
}
