package post

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Inkwell/internal/core/posts"
)

// GetHandler serves post reads
type GetHandler struct {
	service posts.Service
}

// NewGetHandler creates a new read handler
func NewGetHandler(service posts.Service) *GetHandler {
	return &GetHandler{
		service: service,
	}
}

// ListPostsResponse is the body of GET /api/posts and GET /api/posts/search
type ListPostsResponse struct {
	Cursor *string       `json:"cursor,omitempty"`
	Posts  []*posts.Post `json:"posts"`
}

// HandleGet handles GET /api/posts/{id}
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

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

// HandleList handles GET /api/posts.
// Without limit or cursor it returns every post; otherwise one page.
func (h *GetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limitParam, cursor := query.Get("limit"), query.Get("cursor")

	if limitParam == "" && cursor == "" {
		list, err := h.service.ListPosts(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ListPostsResponse{Posts: list})
		return
	}

	limit := 0
	if limitParam != "" {
		n, err := strconv.Atoi(limitParam)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "limit must be a positive integer")
			return
		}
		limit = n
	}

	page, err := h.service.ListPostsPage(r.Context(), limit, cursor)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListPostsResponse{Posts: page.Posts, Cursor: page.Cursor})
}

// HandleSearch handles GET /api/posts/search?q=term
func (h *GetHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.SearchPostsByTitle(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListPostsResponse{Posts: list})
}
