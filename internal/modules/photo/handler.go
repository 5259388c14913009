package photo

import (
	"io"
	"net/http"
	"strconv"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes photo HTTP endpoints.
type Handler struct {
	service  Service
	maxBytes int64
}

func NewHandler(service Service, maxBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxBytes}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/inventory/{id}/photos", h.upload) // multipart: file, photo_type, is_primary, caption, display_order
	r.Get("/inventory/{id}/photos", h.list)
	r.Get("/photos/{id}/content", h.content) // ?thumbnail=true
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	unitID, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	// Room for the form fields around the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		httpx.Error(w, r, apperr.Validation("invalid multipart upload: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Error(w, r, apperr.InvalidFields(map[string]string{"file": "required"}))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		httpx.Error(w, r, apperr.Validation("read upload: %v", err))
		return
	}

	req := UploadRequest{
		FileName:  header.Filename,
		Data:      data,
		PhotoType: r.FormValue("photo_type"),
		Caption:   r.FormValue("caption"),
	}
	fields := map[string]string{}
	if v := r.FormValue("is_primary"); v != "" {
		if req.IsPrimary, err = strconv.ParseBool(v); err != nil {
			fields["is_primary"] = "boolean"
		}
	}
	if v := r.FormValue("display_order"); v != "" {
		if req.DisplayOrder, err = strconv.Atoi(v); err != nil {
			fields["display_order"] = "number"
		}
	}
	if len(fields) > 0 {
		httpx.Error(w, r, apperr.InvalidFields(fields))
		return
	}

	p, err := h.service.UploadPhoto(r.Context(), unitID, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	unitID, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	photos, err := h.service.ListPhotos(r.Context(), unitID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, photos)
}

func (h *Handler) content(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	thumb, err := httpx.QueryBool(r, "thumbnail")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	rc, p, err := h.service.OpenPhoto(r.Context(), id, thumb != nil && *thumb)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	defer rc.Close()

	contentType := p.MimeType
	if thumb != nil && *thumb {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		httpx.Log(r.Context()).WithError(err).WithField("photo_id", id).Warn("photo: stream interrupted")
	}
}
