package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/services"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		Body(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header not set")
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"id":7}` {
		t.Errorf("Body = %q", got)
	}
}

func TestJSONResponseBuilder_Message(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Message("Expense deleted", "id", 3, "dangling").Write(w)

	body := w.Body.String()
	for _, part := range []string{`"message":"Expense deleted"`, `"id":3`} {
		if !strings.Contains(body, part) {
			t.Errorf("body %s missing %s", body, part)
		}
	}
	if strings.Contains(body, "dangling") {
		t.Errorf("odd trailing key written: %s", body)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		status  int
		body    string
	}{
		{"bad request", BadRequestError("nope"), http.StatusBadRequest, `{"error":"nope"}`},
		{"not found", NotFoundError("Goal not found"), http.StatusNotFound, `{"error":"Goal not found"}`},
		{"internal", InternalServerError(), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.status {
				t.Errorf("Status = %d, want %d", w.Code, tt.status)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.body {
				t.Errorf("Body = %s, want %s", got, tt.body)
			}
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", fmt.Errorf("wrapped: %w", core.ErrInvalidCategory), http.StatusBadRequest, "wrapped: invalid category"},
		{"credentials", services.ErrInvalidCredentials, http.StatusBadRequest, "Invalid email or password"},
		{"conflict", storage.ErrConflict, http.StatusBadRequest, "An account with this email already exists"},
		{"not found", fmt.Errorf("get: %w", storage.ErrNotFound), http.StatusNotFound, "Expense not found"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			writeServiceError(w, r, tt.err, "test", "Expense not found")
			if w.Code != tt.status {
				t.Errorf("Status = %d, want %d", w.Code, tt.status)
			}
			want := fmt.Sprintf(`{"error":%q}`, tt.msg)
			if got := strings.TrimSpace(w.Body.String()); got != want {
				t.Errorf("Body = %s, want %s", got, want)
			}
		})
	}
}
