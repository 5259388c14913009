package exchange

import (
	"net/http"

	"github.com/busesamerica/buses-america-inventory/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes exchange rate HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/exchange-rates", func(r chi.Router) {
		r.Get("/current", h.current)
		r.Get("/", h.history)
		r.Post("/", h.record)
	})
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	pair, err := ParsePair(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	rate, err := h.service.CurrentRate(r.Context(), pair)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, rate)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req RecordRateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	rate, err := h.service.RecordRate(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, rate)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	pair, err := ParsePair(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	limit, err := httpx.QueryInt(r, "limit")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	rates, err := h.service.History(r.Context(), pair, n)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, rates)
}
