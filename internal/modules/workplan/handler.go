package workplan

import (
	"net/http"

	"github.com/busesamerica/buses-america-inventory/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes work plan HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/inventory/{id}/work-plan", h.create)
	r.Get("/inventory/{id}/work-plans", h.list)
	r.Get("/work-plans/{id}", h.get)
	r.Patch("/work-plans/{id}/complete", h.complete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	unitID, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req CreatePlanRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	plan, err := h.service.CreatePlan(r.Context(), unitID, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, plan)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	unitID, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	plans, err := h.service.ListPlans(r.Context(), unitID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, plans)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	plan, err := h.service.GetPlan(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, plan)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req CompleteRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	plan, err := h.service.CompletePlan(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, plan)
}
