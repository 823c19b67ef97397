package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sitevitals/sitevitals/pkg/server/jobs"
	"github.com/sitevitals/sitevitals/pkg/storage"
)

// Note on API Error DTOs
//
// The JSON error payloads produced here (error, code, message) are part of
// the public API contract. Changes must be additive-only: add optional
// fields, never remove or rename existing ones. Breaking changes go under
// a new API version.

// ErrorResponse represents a standard JSON error response.
// Used consistently across all API endpoints for error responses.
//
// Example:
//
//	{
//	  "error": "Not Found",
//	  "code": "RESOURCE_NOT_FOUND",
//	  "message": "scan \"a1b2\" not found"
//	}
type ErrorResponse struct {
	Error   string `json:"error"`             // Short error type (e.g., "Not Found")
	Code    string `json:"code,omitempty"`    // Machine-readable error code (e.g., "RESOURCE_NOT_FOUND")
	Message string `json:"message,omitempty"` // Detailed error message (optional)
}

// WriteError writes a standard JSON error response to the client.
// It automatically determines the HTTP status code based on error type:
//   - storage.NotFoundError → 404 Not Found
//   - storage.InvalidInputError → 400 Bad Request
//   - jobs.ErrQueueFull / jobs.ErrStopped → 503 Service Unavailable
//   - all other errors → 500 Internal Server Error
//
// It also logs the error with structured logging for observability.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var statusCode int
	var errorType string
	var errorCode string

	var notFoundErr *storage.NotFoundError
	var invalidInputErr *storage.InvalidInputError
	switch {
	case errors.As(err, &notFoundErr):
		statusCode = http.StatusNotFound
		errorType = "Not Found"
		errorCode = "RESOURCE_NOT_FOUND"
	case errors.As(err, &invalidInputErr):
		statusCode = http.StatusBadRequest
		errorType = "Bad Request"
		errorCode = "INVALID_INPUT"
	case errors.Is(err, jobs.ErrQueueFull), errors.Is(err, jobs.ErrStopped):
		statusCode = http.StatusServiceUnavailable
		errorType = "Service Unavailable"
		errorCode = "QUEUE_UNAVAILABLE"
	default:
		statusCode = http.StatusInternalServerError
		errorType = "Internal Server Error"
		errorCode = "INTERNAL_ERROR"
	}

	logEvent := log.Error().
		Str("component", "api").
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", statusCode).
		Str("error_code", errorCode).
		Err(err)

	switch {
	case statusCode == http.StatusNotFound:
		logEvent.Msg("Resource not found")
	case statusCode >= 500:
		logEvent.Msg("Server error")
	default:
		logEvent.Msg("Client error")
	}

	writeErrorResponse(w, statusCode, ErrorResponse{
		Error:   errorType,
		Code:    errorCode,
		Message: err.Error(),
	})
}

// WriteJSONError writes a custom JSON error response with a specific
// status code. Use this when you need fine-grained control over the error
// response.
//
// Example:
//
//	WriteJSONError(w, http.StatusBadRequest, "Bad Request", "INVALID_TARGET", "url must be absolute")
func WriteJSONError(w http.ResponseWriter, statusCode int, errorType, errorCode, message string) {
	writeErrorResponse(w, statusCode, ErrorResponse{
		Error:   errorType,
		Code:    errorCode,
		Message: message,
	})
}

// WriteJSON writes a JSON response to the client.
// Use this for successful API responses.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().
			Str("component", "api").
			Err(err).
			Msg("Failed to encode JSON response")
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().
			Str("component", "api").
			Err(err).
			Msg("Failed to encode error response")
	}
}
