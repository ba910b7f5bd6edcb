package post

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Inkwell/internal/api/middleware"
	"Inkwell/internal/core/posts"
)

// UpdateHandler handles partial post updates
type UpdateHandler struct {
	service posts.Service
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(service posts.Service) *UpdateHandler {
	return &UpdateHandler{
		service: service,
	}
}

// HandleUpdate handles PATCH /api/posts/{id}
//
// Request body: any subset of {title, content, image, authorName, authorImage}
// Response: the updated post
func (h *UpdateHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPostBodyBytes)

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := authorize(r.Context(), h.service, id, middleware.GetUserID(r)); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.UpdatePostFields(r.Context(), id, fields); err != nil {
		handleServiceError(w, err)
		return
	}

	post, found, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "PostNotFound", "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// authorize returns nil when userID wrote post id
func authorize(ctx context.Context, service posts.Service, id, userID string) error {
	post, found, err := service.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return posts.NewNotFoundError("post", id)
	}
	if userID == "" || post.AuthorID != userID {
		return posts.ErrNotAuthor
	}
	return nil
}
