package comments

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Inkwell/internal/core/comments"
	"Inkwell/internal/core/docstore"
)

// ErrNotCommenter is returned when a caller edits a comment written by someone else
var ErrNotCommenter = errors.New("only the commenter can modify this comment")

// errorResponse represents a standardized JSON error response
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes a JSON error response with the given status code
func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorResponse{
		Error:   errorType,
		Message: message,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// handleServiceError maps service-layer errors to HTTP responses
// This follows the error handling pattern from the post handlers
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, comments.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "PostNotFound", "Post not found")

	case errors.Is(err, comments.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, "CommentNotFound", "Comment not found")

	case comments.IsValidationError(err):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	case errors.Is(err, ErrNotCommenter):
		writeError(w, http.StatusForbidden, "NotAuthorized", "Only the commenter can modify this comment")

	case docstore.IsTransport(err), errors.Is(err, docstore.ErrConflict):
		log.Printf("Store failure in comments handler: %v", err)
		writeError(w, http.StatusBadGateway, "StoreUnavailable",
			"The post store is unavailable. Please try again later.")

	default:
		// Don't leak internal error details to clients
		log.Printf("Unexpected error in comments handler: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}
