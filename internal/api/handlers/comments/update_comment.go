package comments

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Inkwell/internal/api/middleware"
	"Inkwell/internal/core/comments"
)

// UpdateCommentHandler handles comment edits
type UpdateCommentHandler struct {
	service comments.Service
}

// NewUpdateCommentHandler creates a new handler for updating comments
func NewUpdateCommentHandler(service comments.Service) *UpdateCommentHandler {
	return &UpdateCommentHandler{
		service: service,
	}
}

// HandleUpdate handles PATCH /api/posts/{id}/comments/{commentId}
//
// Request body: { "text": "..." }
// Response: 204 No Content
func (h *UpdateCommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCommentBodyBytes)

	var input CommentTextInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	postID, commentID := chi.URLParam(r, "id"), chi.URLParam(r, "commentId")
	if err := authorizeCommenter(r, h.service, postID, commentID); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.UpdateComment(r.Context(), postID, commentID, input.Text); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizeCommenter checks that the signed-in user wrote the comment.
// Display names are not unique, so ownership is decided by user ID.
func authorizeCommenter(r *http.Request, service comments.Service, postID, commentID string) error {
	user := middleware.GetUser(r)
	if user == nil {
		return ErrNotCommenter
	}
	comment, err := service.GetComment(r.Context(), postID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID == "" || comment.UserID != user.ID {
		return ErrNotCommenter
	}
	return nil
}
