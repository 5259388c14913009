package supplier

import (
	"net/http"
	"strings"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/suppliers", h.createSupplier)
	router.Get("/suppliers", h.listSuppliers)
	router.Get("/suppliers/{id}", h.getSupplier)
	router.Patch("/suppliers/{id}/active", h.setActive)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	supplier, err := h.service.CreateSupplier(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, supplier)
}

// listSuppliers defaults to active suppliers; is_active=all lists every supplier.
func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	active := true
	filter := &active
	if strings.EqualFold(r.URL.Query().Get("is_active"), "all") {
		filter = nil
	} else {
		parsed, err := httpx.QueryBool(r, "is_active")
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		if parsed != nil {
			filter = parsed
		}
	}

	suppliers, err := h.service.ListSuppliers(r.Context(), filter)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, suppliers)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	supplier, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, supplier)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if body.IsActive == nil {
		httpx.Error(w, r, apperr.InvalidFields(map[string]string{"is_active": "required"}))
		return
	}

	supplier, err := h.service.SetSupplierActive(r.Context(), id, *body.IsActive)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, supplier)
}
