package warranty

import (
	"net/http"

	"github.com/busesamerica/buses-america-inventory/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes warranty claim HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/inventory/{id}/warranty-claim", h.file)
	r.Get("/inventory/{id}/warranty-claims", h.list)
	r.Get("/warranty-claims/{id}", h.get)
	r.Patch("/warranty-claims/{id}/status", h.advance)
}

func (h *Handler) file(w http.ResponseWriter, r *http.Request) {
	unitID, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req FileClaimRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	claim, err := h.service.FileClaim(r.Context(), unitID, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, claim)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	unitID, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	claims, err := h.service.ListClaims(r.Context(), unitID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, claims)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	claim, err := h.service.GetClaim(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, claim)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req AdvanceRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	claim, err := h.service.AdvanceClaim(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, claim)
}
