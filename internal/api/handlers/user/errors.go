package user

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Inkwell/internal/core/docstore"
	"Inkwell/internal/core/users"
)

// writeJSON marshals v before writing headers to catch encoding errors early
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal response", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "InternalServerError", "Failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, writeErr := w.Write(responseBytes); writeErr != nil {
		slog.Warn("failed to write response", slog.String("error", writeErr.Error()))
	}
}

// writeJSONError writes a JSON error response
// Marshals JSON before writing headers to catch encoding errors
func writeJSONError(w http.ResponseWriter, statusCode int, errorType, message string) {
	responseBytes, err := json.Marshal(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
	if err != nil {
		// Fallback to plain text if JSON encoding fails (should never happen with simple strings)
		slog.Error("failed to marshal error response", slog.String("error", err.Error()))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(message))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, writeErr := w.Write(responseBytes); writeErr != nil {
		slog.Warn("failed to write error response", slog.String("error", writeErr.Error()))
	}
}

// handleServiceError maps account service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case users.IsValidationError(err):
		writeJSONError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	case errors.Is(err, users.ErrEmailTaken):
		writeJSONError(w, http.StatusConflict, "EmailTaken", "Email already registered")

	case errors.Is(err, users.ErrInvalidCredentials):
		writeJSONError(w, http.StatusUnauthorized, "InvalidCredentials", "Invalid email or password")

	case users.IsAuthError(err):
		writeJSONError(w, http.StatusUnauthorized, "AuthenticationRequired", "Invalid or expired session")

	case errors.Is(err, users.ErrUserNotFound):
		writeJSONError(w, http.StatusNotFound, "AccountNotFound", "Account not found")

	case errors.Is(err, context.DeadlineExceeded):
		slog.Error("account request timed out", slog.String("op", op), slog.String("error", err.Error()))
		writeJSONError(w, http.StatusGatewayTimeout, "Timeout", "Request timed out")

	case docstore.IsTransport(err):
		slog.Error("account store unavailable", slog.String("op", op), slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadGateway, "StoreUnavailable", "The account store is unavailable")

	default:
		// Internal server error - don't leak details
		slog.Error("account request failed", slog.String("op", op), slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
