// Package httpx holds the JSON response, request decoding and middleware
// helpers shared by every module handler.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/go-chi/chi/v5/middleware"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Respond writes body as JSON with the given status.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes body with status 200.
func OK(w http.ResponseWriter, body interface{}) {
	Respond(w, http.StatusOK, body)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a structured JSON error. Storage and unclassified errors
// are logged and answered with an opaque message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	resp := errorResponse{
		Error:     err.Error(),
		Code:      kind.String(),
		RequestID: middleware.GetReqID(r.Context()),
	}
	if e, ok := asAppErr(err); ok {
		resp.Error = e.Message
		resp.Fields = e.Fields
	}
	if status >= http.StatusInternalServerError {
		Log(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("request failed")
		resp.Error = "internal server error"
		resp.Fields = nil
	}
	Respond(w, status, resp)
}

// WriteError writes a plain coded error without an underlying error value.
func WriteError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	Respond(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
