package http

import (
	"net/http"
	"strings"

	"github.com/sindhu2707/expense-tracker/internal/auth"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// currentUser returns the authenticated user id. Handlers behind the auth
// middleware always have one; the 401 covers routing mistakes.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		ErrorResponse(http.StatusUnauthorized, auth.ErrMissingToken.Error()).Write(w)
		return 0, false
	}
	return userID, true
}
