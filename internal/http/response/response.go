// Package response provides standardized HTTP response formatting and error handling utilities.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	domainerrors "github.com/tagrs/movietagger/internal/errors"
)

// EnvelopeVersion is written as "v" in every JSON envelope.
const EnvelopeVersion = 1

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	writeEnvelope(w, status, Envelope{
		V:       EnvelopeVersion,
		Success: status < 400,
		Data:    data,
	}, logger)
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Error writes a JSON error response with the given status code.
func Error(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	writeEnvelope(w, status, Envelope{
		V:     EnvelopeVersion,
		Error: message,
	}, logger)
}

// DomainError writes a JSON error response carrying the error's code and details.
func DomainError(w http.ResponseWriter, err *domainerrors.Error, logger *slog.Logger) {
	writeEnvelope(w, err.HTTPStatus(), Envelope{
		V:       EnvelopeVersion,
		Error:   err.Message,
		Code:    string(err.Code),
		Details: err.Details,
	}, logger)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	DomainError(w, domainerrors.Unauthorized(message), logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	DomainError(w, domainerrors.RateLimited(message), logger)
}

func writeEnvelope(w http.ResponseWriter, status int, envelope Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = fmt.Fprintln(w, message)
}

// HandleError writes a plain text response for err. Domain errors are
// mapped to their HTTP status with a short prefix naming the failure;
// anything else becomes a 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		if logger != nil {
			logger.Error("Unhandled error", "error", err)
		}
		Text(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("Request failed", "code", domainErr.Code, "error", err)
	}

	Text(w, status, TextMessage(domainErr))
}

// TextMessage renders a domain error the way HTML routes show it.
func TextMessage(err *domainerrors.Error) string {
	switch err.Code {
	case domainerrors.CodeNotFound:
		return "Not found"
	case domainerrors.CodeInvalidInput, domainerrors.CodeValidation:
		return "Invalid input: " + err.Message
	case domainerrors.CodeIO:
		return "IO error: " + err.Error()
	case domainerrors.CodeUpstream:
		return "Jellyfin error: " + err.Error()
	case domainerrors.CodeUnauthorized, domainerrors.CodeRateLimited:
		return err.Message
	default:
		return "Internal server error"
	}
}
