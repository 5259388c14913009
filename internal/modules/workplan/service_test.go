package workplan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/modules/inventory"
	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeRepo struct{ plans map[uuid.UUID]*Plan }

func (f *fakeRepo) Create(_ context.Context, p *Plan) error {
	p.CreatedAt = time.Now()
	cp := *p
	f.plans[p.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, apperr.NotFound("work plan not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) ListByUnit(_ context.Context, unitID uuid.UUID) ([]*Plan, error) {
	out := []*Plan{}
	for _, p := range f.plans {
		if p.InventoryID == unitID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) Complete(_ context.Context, id uuid.UUID, req CompleteRequest, on types.Date) (*Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, apperr.NotFound("work plan not found")
	}
	if p.Completed {
		return nil, apperr.Conflict("work plan %s is already completed", id)
	}
	p.ActualCost, p.ActualDays, p.ExecutionNotes = req.ActualCost, req.ActualDays, req.ExecutionNotes
	p.Completed, p.CompletionDate = true, on
	cp := *p
	return &cp, nil
}

type legCost struct {
	unit     uuid.UUID
	leg      inventory.Leg
	amount   decimal.Decimal
	currency money.Currency
}

type fakeUnits struct {
	known   map[uuid.UUID]bool
	applied []legCost
	failure error
}

func (f *fakeUnits) GetUnit(_ context.Context, id uuid.UUID) (*inventory.Unit, error) {
	if !f.known[id] {
		return nil, apperr.NotFound("unit not found")
	}
	return &inventory.Unit{ID: id}, nil
}

func (f *fakeUnits) ApplyLegCost(_ context.Context, id uuid.UUID, leg inventory.Leg, amount decimal.Decimal, currency money.Currency) (*inventory.Unit, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	f.applied = append(f.applied, legCost{id, leg, amount, currency})
	return &inventory.Unit{ID: id}, nil
}

func newTestService(t *testing.T) (*service, *fakeUnits, *test.Hook, uuid.UUID) {
	t.Helper()
	unitID := uuid.New()
	units := &fakeUnits{known: map[uuid.UUID]bool{unitID: true}}
	log, hook := test.NewNullLogger()
	return &service{
		repo:  &fakeRepo{plans: map[uuid.UUID]*Plan{}},
		units: units,
		log:   log,
		now:   func() time.Time { return time.Date(2024, time.August, 2, 9, 0, 0, 0, time.UTC) },
	}, units, hook, unitID
}

func TestCreatePlan(t *testing.T) {
	svc, _, _, unitID := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreatePlan(ctx, unitID, CreatePlanRequest{PlanType: PlanDelivery, OriginLocation: " Laredo ", CostCurrency: "mxn"})
	if err != nil {
		t.Fatal(err)
	}
	if p.CostCurrency != money.MXN || p.OriginLocation != "Laredo" || p.Completed {
		t.Fatalf("plan = %+v", p)
	}

	if _, err := svc.CreatePlan(ctx, unitID, CreatePlanRequest{PlanType: "Storage"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("bad type: %v", err)
	}
	if _, err := svc.CreatePlan(ctx, uuid.New(), CreatePlanRequest{PlanType: PlanAcquisition}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing unit: %v", err)
	}
}

func TestCompletePlanTwiceConflicts(t *testing.T) {
	svc, units, _, unitID := newTestService(t)
	ctx := context.Background()
	p, _ := svc.CreatePlan(ctx, unitID, CreatePlanRequest{PlanType: PlanAcquisition})

	cost := money.Null(decimal.NewFromInt(950))
	done, err := svc.CompletePlan(ctx, p.ID, CompleteRequest{ActualCost: cost, ExecutionNotes: "arrived"})
	if err != nil {
		t.Fatal(err)
	}
	if !done.Completed || done.CompletionDate != types.NewDate(2024, time.August, 2) {
		t.Fatalf("completed=%v on %s", done.Completed, done.CompletionDate)
	}
	if len(units.applied) != 1 || units.applied[0].leg != inventory.LegAcquisition || !units.applied[0].amount.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("applied = %+v", units.applied)
	}

	if _, err := svc.CompletePlan(ctx, p.ID, CompleteRequest{ActualCost: money.Null(decimal.NewFromInt(1))}); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second completion: %v", err)
	}
	if len(units.applied) != 1 {
		t.Fatal("cost applied twice")
	}
	got, _ := svc.GetPlan(ctx, p.ID)
	if !got.ActualCost.Decimal.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("actuals overwritten: %v", got.ActualCost)
	}
}

func TestCompletePlanLogsCostFeedFailure(t *testing.T) {
	svc, units, hook, unitID := newTestService(t)
	ctx := context.Background()
	p, _ := svc.CreatePlan(ctx, unitID, CreatePlanRequest{PlanType: PlanDelivery, CostCurrency: "MXN"})
	units.failure = errors.New("unit deleted")

	done, err := svc.CompletePlan(ctx, p.ID, CompleteRequest{ActualCost: money.Null(decimal.NewFromInt(12000))})
	if err != nil || !done.Completed {
		t.Fatalf("completion should stand: %v", err)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel || entry.Data["funcName"] != "CompletePlan" {
		t.Fatalf("log entry = %+v", entry)
	}
	data, _ := entry.Data["data"].(map[string]string)
	if data["amount"] != "12000" || data["currency"] != "MXN" || data["leg"] != "Delivery" || data["plan_id"] != p.ID.String() {
		t.Fatalf("log data = %+v", entry.Data["data"])
	}
}

func TestPlansOutliveDeletedUnit(t *testing.T) {
	svc, units, _, unitID := newTestService(t)
	ctx := context.Background()
	p, err := svc.CreatePlan(ctx, unitID, CreatePlanRequest{PlanType: PlanAcquisition})
	if err != nil {
		t.Fatal(err)
	}
	delete(units.known, unitID)

	got, err := svc.GetPlan(ctx, p.ID)
	if err != nil || got.InventoryID != unitID {
		t.Fatalf("get after delete: %+v %v", got, err)
	}
	plans, err := svc.ListPlans(ctx, unitID)
	if err != nil || len(plans) != 1 {
		t.Fatalf("list after delete: %d %v", len(plans), err)
	}

	router := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/work-plans/"+p.ID.String(), nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), p.ID.String()) {
		t.Fatalf("GET plan = %d: %s", rec.Code, rec.Body)
	}
}

func TestCompletePlanValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	days := -1
	if _, err := svc.CompletePlan(context.Background(), uuid.New(), CompleteRequest{ActualDays: &days}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("negative days: %v", err)
	}
	if _, err := svc.CompletePlan(context.Background(), uuid.New(), CompleteRequest{}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing plan: %v", err)
	}
}

func TestWorkPlanRoutes(t *testing.T) {
	svc, _, _, unitID := newTestService(t)
	router := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/inventory/"+unitID.String()+"/work-plan",
		strings.NewReader(`{"plan_type":"Acquisition","origin_location":"Houston","destination_location":"Laredo","estimated_days":2}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body)
	}
	var id string
	for pid := range svc.repo.(*fakeRepo).plans {
		id = pid.String()
	}

	for i, want := range []int{http.StatusOK, http.StatusBadRequest} {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/work-plans/"+id+"/complete",
			strings.NewReader(`{"actual_cost":700,"actual_days":3}`)))
		if rec.Code != want {
			t.Fatalf("completion %d = %d: %s", i+1, rec.Code, rec.Body)
		}
	}
	if !strings.Contains(rec.Body.String(), `"CONFLICT"`) {
		t.Fatalf("body = %s", rec.Body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inventory/"+unitID.String()+"/work-plans", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"completed":true`) {
		t.Fatalf("list = %d: %s", rec.Code, rec.Body)
	}
}
