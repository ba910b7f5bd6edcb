package post

import (
	"encoding/json"
	"errors"
	"net/http"

	"Inkwell/internal/api/middleware"
	"Inkwell/internal/core/posts"
)

// maxPostBodyBytes leaves room for MaxContentLength plus JSON overhead
const maxPostBodyBytes = 1 * 1024 * 1024

// CreateHandler handles post creation requests
type CreateHandler struct {
	service posts.Service
}

// NewCreateHandler creates a new create handler
func NewCreateHandler(service posts.Service) *CreateHandler {
	return &CreateHandler{
		service: service,
	}
}

// CreatePostRequest is the request body for POST /api/posts
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Image    string `json:"image"`
	AuthorID string `json:"authorId,omitempty"`
}

// CreatePostResponse carries the new post ID
type CreatePostResponse struct {
	ID string `json:"id"`
}

// HandleCreate handles POST /api/posts
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPostBodyBytes)

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge",
				"Request body too large (max 1MB)")
			return
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	// The author is always the signed-in user
	if req.AuthorID != "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest",
			"authorId must not be provided - derived from authenticated user")
		return
	}

	id, err := h.service.CreatePost(r.Context(), posts.CreatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		Image:       req.Image,
		AuthorID:    user.ID,
		AuthorName:  user.Name,
		AuthorImage: user.ImageURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/posts/"+id)
	writeJSON(w, http.StatusCreated, CreatePostResponse{ID: id})
}
