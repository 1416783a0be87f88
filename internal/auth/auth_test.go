package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, h.Matches(hash, "secret1"))
	assert.False(t, h.Matches(hash, "secret2"))
	assert.False(t, h.Matches("not-a-hash", "secret1"))

	assert.Equal(t, DefaultCost, NewHasher(99).cost)
}

func TestTokenRoundTrip(t *testing.T) {
	ti := NewTokenIssuer("0123456789abcdef", time.Hour)
	token, err := ti.Issue(42)
	require.NoError(t, err)

	id, err := ti.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokenRejections(t *testing.T) {
	ti := NewTokenIssuer("0123456789abcdef", time.Hour)
	token, err := ti.Issue(7)
	require.NoError(t, err)

	other := NewTokenIssuer("fedcba9876543210", time.Hour)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("0123456789abcdef", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ti.Parse("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = ti.Parse("garbage.token.value")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	ti := NewTokenIssuer("0123456789abcdef", time.Hour)
	token, err := ti.Issue(9)
	require.NoError(t, err)

	var seen int64
	h := Middleware(ti)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "Please log in."},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, "Please log in."},
		{"invalid", "Bearer nope", http.StatusForbidden, "Invalid or expired token"},
		{"valid", "Bearer " + token, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.True(t, strings.Contains(rec.Body.String(), tt.body))
		})
	}
	assert.Equal(t, int64(9), seen)
}
