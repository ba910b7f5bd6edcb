package pricing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Inkwell/internal/core/pricing"
)

func newRouter() http.Handler {
	h := NewPlansHandler(pricing.NewCatalog(pricing.DefaultPlans(), nil))
	r := chi.NewRouter()
	r.Get("/api/plans", h.HandleList)
	r.Get("/api/plans/{id}", h.HandleSelect)
	return r
}

func TestHandleList(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plans", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body ListPlansResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, pricing.DefaultPlans(), body.Plans)
}

func TestHandleSelect(t *testing.T) {
	tests := []struct {
		path       string
		wantStatus int
		wantName   string
	}{
		{"/api/plans/2", http.StatusOK, "Writer"},
		{"/api/plans/99", http.StatusNotFound, ""},
		{"/api/plans/abc", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantName != "" {
				var plan pricing.Plan
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
				assert.Equal(t, tt.wantName, plan.Name)
			}
		})
	}
}
