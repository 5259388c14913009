package supplier

import (
	"context"
	"sort"
	"testing"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/google/uuid"
)

type fakeRepo struct {
	suppliers map[uuid.UUID]*Supplier
}

func newFakeRepo() *fakeRepo { return &fakeRepo{suppliers: map[uuid.UUID]*Supplier{}} }

func (f *fakeRepo) CreateSupplier(_ context.Context, s *Supplier) error {
	cp := *s
	f.suppliers[s.ID] = &cp
	return nil
}

func (f *fakeRepo) GetSupplier(_ context.Context, id uuid.UUID) (*Supplier, error) {
	s, ok := f.suppliers[id]
	if !ok {
		return nil, apperr.NotFound("supplier not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) ListSuppliers(_ context.Context, active *bool) ([]*Supplier, error) {
	out := []*Supplier{}
	for _, s := range f.suppliers {
		if active == nil || s.IsActive == *active {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyName < out[j].CompanyName })
	return out, nil
}

func (f *fakeRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s, ok := f.suppliers[id]
	if !ok {
		return apperr.NotFound("supplier not found")
	}
	s.IsActive = active
	return nil
}

func TestCreateSupplierRequiresName(t *testing.T) {
	svc := NewService(newFakeRepo(), "US")
	_, err := svc.CreateSupplier(context.Background(), CreateRequest{CompanyName: "   "})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSupplierNormalizesPhone(t *testing.T) {
	svc := NewService(newFakeRepo(), "US")
	s, err := svc.CreateSupplier(context.Background(), CreateRequest{
		CompanyName:  "Midwest Bus Auction",
		Phone:        "(650) 253-0000",
		SupplierType: TypeAuction,
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Phone != "+16502530000" {
		t.Errorf("phone = %q", s.Phone)
	}
	if s.Country != "USA" || !s.IsActive {
		t.Errorf("defaults not applied: %+v", s)
	}
}

func TestCreateSupplierRejectsBadPhone(t *testing.T) {
	svc := NewService(newFakeRepo(), "US")
	_, err := svc.CreateSupplier(context.Background(), CreateRequest{CompanyName: "X", Phone: "12345"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListAndDeactivate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, "US")
	ctx := context.Background()

	a, _ := svc.CreateSupplier(ctx, CreateRequest{CompanyName: "Bravo Fleet"})
	_, _ = svc.CreateSupplier(ctx, CreateRequest{CompanyName: "Alpha Buses"})

	if _, err := svc.SetSupplierActive(ctx, a.ID, false); err != nil {
		t.Fatal(err)
	}

	active := true
	list, _ := svc.ListSuppliers(ctx, &active)
	if len(list) != 1 || list[0].CompanyName != "Alpha Buses" {
		t.Fatalf("active list = %+v", list)
	}
	all, _ := svc.ListSuppliers(ctx, nil)
	if len(all) != 2 {
		t.Fatalf("all list length = %d", len(all))
	}

	if _, err := svc.SetSupplierActive(ctx, uuid.New(), true); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegionFor(t *testing.T) {
	tests := map[string]string{
		"USA":     "US",
		"Mexico":  "MX",
		"México":  "MX",
		"mx":      "MX",
		"Germany": "US",
	}
	for country, want := range tests {
		if got := regionFor(country, "US"); got != want {
			t.Errorf("regionFor(%q) = %q, want %q", country, got, want)
		}
	}
}
