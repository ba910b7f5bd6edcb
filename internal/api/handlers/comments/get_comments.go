// Package comments provides HTTP handlers for the comments embedded in a post.
package comments

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Inkwell/internal/core/comments"
)

// GetCommentsHandler handles comment retrieval for posts
type GetCommentsHandler struct {
	service comments.Service
}

// GetCommentsResponse lists a post's comments, oldest first
type GetCommentsResponse struct {
	Comments []comments.Comment `json:"comments"`
}

// NewGetCommentsHandler creates a new handler for fetching comments
func NewGetCommentsHandler(service comments.Service) *GetCommentsHandler {
	return &GetCommentsHandler{
		service: service,
	}
}

// HandleGetComments handles GET /api/posts/{id}/comments
func (h *GetCommentsHandler) HandleGetComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if list == nil {
		list = []comments.Comment{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(GetCommentsResponse{Comments: list}); err != nil {
		log.Printf("Failed to encode comments response: %v", err)
	}
}
