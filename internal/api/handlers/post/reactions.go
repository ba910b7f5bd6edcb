package post

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Inkwell/internal/core/posts"
)

// ReactionHandler handles like and dislike counter changes
type ReactionHandler struct {
	service posts.Service
}

// NewReactionHandler creates a new reaction handler
func NewReactionHandler(service posts.Service) *ReactionHandler {
	return &ReactionHandler{
		service: service,
	}
}

// ReactionResponse reports the counters after the change
type ReactionResponse struct {
	ID       string `json:"id"`
	Likes    int64  `json:"likes"`
	Dislikes int64  `json:"dislikes"`
}

// HandleLike handles POST /api/posts/{id}/like
func (h *ReactionHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.service.LikePost)
}

// HandleUnlike handles POST /api/posts/{id}/unlike
func (h *ReactionHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.service.UnlikePost)
}

// HandleDislike handles POST /api/posts/{id}/dislike
func (h *ReactionHandler) HandleDislike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.service.DislikePost)
}

// HandleUndislike handles POST /api/posts/{id}/undislike
func (h *ReactionHandler) HandleUndislike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.service.UndislikePost)
}

func (h *ReactionHandler) react(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) error) {
	id := chi.URLParam(r, "id")

	if err := apply(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	post, found, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !found {
		// deleted between the increment and the read
		writeError(w, http.StatusNotFound, "PostNotFound", "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, ReactionResponse{ID: id, Likes: post.Likes, Dislikes: post.Dislikes})
}
