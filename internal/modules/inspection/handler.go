package inspection

import (
	"net/http"

	"github.com/busesamerica/buses-america-inventory/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes pre-purchase inspection HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/inspections/pre-purchase", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list) // ?decision=&recommendation=&limit=
		r.Get("/{id}", h.get)
		r.Patch("/{id}/decision", h.decide)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Inspection
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	created, err := h.service.CreateInspection(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, created)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, err := httpx.QueryInt(r, "limit")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	f := Filter{
		Decision:       Decision(r.URL.Query().Get("decision")),
		Recommendation: Recommendation(r.URL.Query().Get("recommendation")),
	}
	if limit != nil {
		f.Limit = *limit
	}
	items, err := h.service.ListInspections(r.Context(), f)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	item, err := h.service.GetInspection(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, item)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req DecisionRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	item, err := h.service.RecordDecision(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, item)
}
