// Package http provides the REST API server and its handlers.
//
// This file implements the builder used for every JSON response. Error
// bodies always have the shape {"error": "<message>"}.

package http

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/services"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

// Messages shared by several handlers.
const (
	msgDuplicateEmail = "An account with this email already exists"
	msgInvalidBody    = "Invalid request body"
	msgInternal       = "Internal server error"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a builder with a 200 status and no body.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {"message": msg} body plus any extra fields.
func (b *JSONResponseBuilder) Message(msg string, extra ...any) *JSONResponseBuilder {
	body := map[string]any{"message": msg}
	for i := 0; i+1 < len(extra); i += 2 {
		if key, ok := extra[i].(string); ok {
			body[key] = extra[i+1]
		}
	}
	b.body = body
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	payload := []byte("null")
	if b.body != nil {
		encoded, err := json.Marshal(b.body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"` + msgInternal + `"}`))
			return
		}
		payload = encoded
	}
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
}

// ErrorResponse creates a {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(map[string]string{"error": message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, msgInternal)
}

// writeServiceError maps a service error to its status code. notFound is the
// message used for storage.ErrNotFound. Unexpected errors are logged and
// never leak to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, op, notFound string) {
	switch {
	case core.IsValidation(err):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrIncorrectPassword),
		errors.Is(err, services.ErrNoSelection):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, storage.ErrConflict):
		BadRequestError(msgDuplicateEmail).Write(w)
	case errors.Is(err, storage.ErrNotFound):
		NotFoundError(notFound).Write(w)
	default:
		logger := log.FromContext(r.Context())
		log.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, op, nil)
		InternalServerError().Write(w)
	}
}
