package report

import (
	"fmt"
	"net/http"

	"github.com/busesamerica/buses-america-inventory/internal/platform/httpx"
	"github.com/busesamerica/buses-america-inventory/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes report HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/dashboard", h.dashboard)
	r.Get("/reports/{kind}", h.units) // ?format=xlsx
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, d)
}

func (h *Handler) units(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	units, err := h.service.Units(r.Context(), kind)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if r.URL.Query().Get("format") != "xlsx" {
		httpx.OK(w, units)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, kind))
	if err := writeXLSX(w, kinds[kind].title, units); err != nil {
		logger.LogError(httpx.Log(r.Context()), "report", "units", "write xlsx", kind, err)
	}
}
