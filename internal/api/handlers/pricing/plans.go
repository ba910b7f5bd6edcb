// Package pricing provides HTTP handlers for the plan catalog.
package pricing

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Inkwell/internal/api/handlers"
	"Inkwell/internal/core/pricing"
)

// PlanCatalog is the read side of pricing.Catalog
type PlanCatalog interface {
	Plans() []pricing.Plan
	Select(id int) (pricing.Plan, error)
}

// PlansHandler serves the pricing page data
type PlansHandler struct {
	catalog PlanCatalog
}

// NewPlansHandler creates a new plans handler
func NewPlansHandler(catalog PlanCatalog) *PlansHandler {
	return &PlansHandler{catalog: catalog}
}

// ListPlansResponse is the body of GET /api/plans
type ListPlansResponse struct {
	Plans []pricing.Plan `json:"plans"`
}

// HandleList handles GET /api/plans
func (h *PlansHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, ListPlansResponse{Plans: h.catalog.Plans()})
}

// HandleSelect handles GET /api/plans/{id}
func (h *PlansHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "plan id must be an integer")
		return
	}

	plan, err := h.catalog.Select(id)
	if errors.Is(err, pricing.ErrPlanNotFound) {
		handlers.WriteError(w, http.StatusNotFound, "PlanNotFound", "Plan not found")
		return
	}
	if err != nil {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, plan)
}
