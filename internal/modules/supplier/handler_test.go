package supplier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(repo *fakeRepo) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(NewService(repo, "US")).RegisterRoutes(r)
	return r
}

func TestListSuppliersDefaultsToActive(t *testing.T) {
	repo := newFakeRepo()
	router := newTestRouter(repo)

	for _, body := range []string{`{"company_name":"Active Co"}`, `{"company_name":"Dormant Co"}`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/suppliers", strings.NewReader(body)))
		if rec.Code != http.StatusOK {
			t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
		}
	}
	for _, s := range repo.suppliers {
		if s.CompanyName == "Dormant Co" {
			s.IsActive = false
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"?is_active=false", 1},
		{"?is_active=all", 2},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/suppliers"+tt.query, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tt.query, rec.Code)
		}
		var got []Supplier
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.want {
			t.Errorf("%q: got %d suppliers, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestCreateSupplierValidation(t *testing.T) {
	router := newTestRouter(newFakeRepo())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/suppliers", strings.NewReader(`{"email":"not-an-email"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "VALIDATION_ERROR" || body.Fields["company_name"] != "required" || body.Fields["email"] != "email" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestGetSupplierNotFound(t *testing.T) {
	router := newTestRouter(newFakeRepo())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/suppliers/6f1c3d2e-8a4b-4c5d-9e6f-7a8b9c0d1e2f", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
