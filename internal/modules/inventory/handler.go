package inventory

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes inventory unit HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	// Flat patterns so work plans, claims and photos can share the /inventory/{id} prefix.
	r.Post("/inventory", h.create)
	r.Get("/inventory", h.list) // ?status=&current_location=&is_sold=&make=&year=&supplier_id=&limit=&offset=
	r.Get("/inventory/{id}", h.get)
	r.Patch("/inventory/{id}", h.update)
	r.Delete("/inventory/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	unit, err := h.service.CreateUnit(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	writeUnit(w, unit)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	units, err := h.service.ListUnits(r.Context(), f)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, units)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	unit, err := h.service.GetUnit(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	writeUnit(w, unit)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	version, err := ifMatch(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.Error(w, r, apperr.Validation("invalid request body: %v", err))
		return
	}
	unit, err := h.service.UpdateUnit(r.Context(), id, patch, version)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	writeUnit(w, unit)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.DeleteUnit(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, map[string]string{"message": "unit deleted", "id": id.String()})
}

// ── helpers ──

func writeUnit(w http.ResponseWriter, u *Unit) {
	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(u.Version)))
	httpx.OK(w, u)
}

// ifMatch reads the optional If-Match header as a unit version.
func ifMatch(r *http.Request) (*int, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return nil, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validation("If-Match must carry a unit version")
	}
	return &v, nil
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{
		Status:          Status(q.Get("status")),
		CurrentLocation: Location(q.Get("current_location")),
		Make:            q.Get("make"),
	}
	var err error
	if f.IsSold, err = httpx.QueryBool(r, "is_sold"); err != nil {
		return f, err
	}
	if f.Year, err = httpx.QueryInt(r, "year"); err != nil {
		return f, err
	}
	if f.SupplierID, err = httpx.QueryUUID(r, "supplier_id"); err != nil {
		return f, err
	}
	limit, err := httpx.QueryInt(r, "limit")
	if err != nil {
		return f, err
	}
	if limit != nil {
		f.Limit = *limit
	}
	offset, err := httpx.QueryInt(r, "offset")
	if err != nil {
		return f, err
	}
	if offset != nil {
		f.Offset = *offset
	}
	return f, nil
}
