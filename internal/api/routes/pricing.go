package routes

import (
	"github.com/go-chi/chi/v5"

	"Inkwell/internal/api/handlers/pricing"
)

// RegisterPricingRoutes registers the public plan catalog endpoints
func RegisterPricingRoutes(r chi.Router, catalog pricing.PlanCatalog) {
	h := pricing.NewPlansHandler(catalog)

	r.Get("/api/plans", h.HandleList)
	r.Get("/api/plans/{id}", h.HandleSelect)
}
