package comments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Inkwell/internal/core/comments"
)

// DeleteCommentHandler handles comment removal
type DeleteCommentHandler struct {
	service comments.Service
}

// NewDeleteCommentHandler creates a new handler for deleting comments
func NewDeleteCommentHandler(service comments.Service) *DeleteCommentHandler {
	return &DeleteCommentHandler{
		service: service,
	}
}

// HandleDelete handles DELETE /api/posts/{id}/comments/{commentId}
func (h *DeleteCommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	postID, commentID := chi.URLParam(r, "id"), chi.URLParam(r, "commentId")
	if err := authorizeCommenter(r, h.service, postID, commentID); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.DeleteComment(r.Context(), postID, commentID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
