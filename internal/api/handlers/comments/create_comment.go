package comments

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Inkwell/internal/api/middleware"
	"Inkwell/internal/core/comments"
)

// maxCommentBodyBytes is plenty for MaxTextLength plus JSON overhead
const maxCommentBodyBytes = 100 * 1024

// CreateCommentHandler handles comment creation
type CreateCommentHandler struct {
	service comments.Service
}

// NewCreateCommentHandler creates a new handler for creating comments
func NewCreateCommentHandler(service comments.Service) *CreateCommentHandler {
	return &CreateCommentHandler{
		service: service,
	}
}

// CommentTextInput is the request body for creating or editing a comment
type CommentTextInput struct {
	Text string `json:"text"`
}

// CreateCommentOutput carries the new comment ID
type CreateCommentOutput struct {
	ID string `json:"id"`
}

// HandleCreate handles POST /api/posts/{id}/comments
//
// Request body: { "text": "..." }
// Response: { "id": "..." }
func (h *CreateCommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCommentBodyBytes)

	var input CommentTextInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	id, err := h.service.AddComment(r.Context(), chi.URLParam(r, "id"), comments.NewComment{
		Text:      input.Text,
		UserID:    user.ID,
		UserName:  user.Name,
		UserImage: user.ImageURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(CreateCommentOutput{ID: id}); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
