package inspection

import (
	"context"
	"testing"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
)

type fakeRepo struct {
	items map[uuid.UUID]*Inspection
	order []uuid.UUID
}

func newFakeRepo() *fakeRepo { return &fakeRepo{items: map[uuid.UUID]*Inspection{}} }

func (f *fakeRepo) Create(_ context.Context, i *Inspection) error {
	cp := *i
	f.items[i.ID] = &cp
	f.order = append(f.order, i.ID)
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*Inspection, error) {
	i, ok := f.items[id]
	if !ok {
		return nil, apperr.NotFound("inspection not found")
	}
	cp := *i
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, flt Filter) ([]*Inspection, error) {
	out := []*Inspection{}
	for _, id := range f.order {
		i := f.items[id]
		if flt.Decision != "" && i.Decision != flt.Decision {
			continue
		}
		if flt.Recommendation != "" && i.Recommendation != flt.Recommendation {
			continue
		}
		cp := *i
		out = append(out, &cp)
		if len(out) == flt.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) SetDecision(_ context.Context, id uuid.UUID, d Decision, notes string, on types.Date) error {
	i, ok := f.items[id]
	if !ok {
		return apperr.NotFound("inspection not found")
	}
	i.Decision, i.DecisionNotes, i.DecisionDate = d, notes, on
	return nil
}

var today = time.Date(2024, 7, 10, 15, 0, 0, 0, time.UTC)

func newTestService() (*service, *fakeRepo) {
	repo := newFakeRepo()
	return &service{repo: repo, now: func() time.Time { return today }}, repo
}

func TestCreateInspectionRequiresIdentity(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateInspection(context.Background(), Inspection{})
	var e *apperr.Error
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	e = err.(*apperr.Error)
	if e.Fields["vin"] == "" || e.Fields["inspection_date"] == "" {
		t.Fatalf("fields = %v", e.Fields)
	}
}

func TestCreateInspectionIsPermissive(t *testing.T) {
	svc, _ := newTestService()
	starts := false
	in, err := svc.CreateInspection(context.Background(), Inspection{
		VIN:            " 1bauggba12f123456 ",
		InspectionDate: types.NewDate(2024, time.July, 1),
		EngineStarts:   &starts,
		Recommendation: RecommendConditional,
		Decision:       DecisionApproved,
	})
	if err != nil {
		t.Fatal(err)
	}
	if in.VIN != "1BAUGGBA12F123456" {
		t.Errorf("vin = %q", in.VIN)
	}
	if in.Decision != "" {
		t.Error("decision must not be settable at creation")
	}
}

func TestCreateInspectionRejectsUnknownRecommendation(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateInspection(context.Background(), Inspection{
		VIN:            "V1",
		InspectionDate: types.NewDate(2024, time.July, 1),
		Recommendation: "Buy it",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordDecisionOverwrites(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	in, _ := svc.CreateInspection(ctx, Inspection{
		VIN:            "V1",
		InspectionDate: types.NewDate(2024, time.July, 1),
		Recommendation: RecommendApprove,
	})

	got, err := svc.RecordDecision(ctx, in.ID, DecisionRequest{Decision: DecisionRejected, Notes: "frame rust"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Decision != DecisionRejected || got.DecisionDate != types.NewDate(2024, time.July, 10) {
		t.Fatalf("got %s on %s", got.Decision, got.DecisionDate)
	}
	if got.Recommendation != RecommendApprove {
		t.Fatal("recommendation must be independent of decision")
	}

	got, err = svc.RecordDecision(ctx, in.ID, DecisionRequest{Decision: DecisionApproved})
	if err != nil || got.Decision != DecisionApproved {
		t.Fatalf("re-decision: %v %v", got, err)
	}
}

func TestRecordDecisionErrors(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.RecordDecision(ctx, uuid.New(), DecisionRequest{Decision: DecisionApproved}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing inspection: %v", err)
	}
	if _, err := svc.RecordDecision(ctx, uuid.New(), DecisionRequest{Decision: "Maybe"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("bad decision: %v", err)
	}
}

func TestListInspectionsFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for _, rec := range []Recommendation{RecommendApprove, RecommendReject, RecommendApprove} {
		if _, err := svc.CreateInspection(ctx, Inspection{VIN: "V", InspectionDate: types.NewDate(2024, 1, 1), Recommendation: rec}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := svc.ListInspections(ctx, Filter{Recommendation: RecommendApprove})
	if err != nil || len(got) != 2 {
		t.Fatalf("got %d, %v", len(got), err)
	}
	if _, err := svc.ListInspections(ctx, Filter{Decision: "Pending"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unknown decision filter: %v", err)
	}
}

func TestCheckLinkable(t *testing.T) {
	id := uuid.New()
	linked := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	tests := []struct {
		name          string
		exists        bool
		decision      Decision
		linked        uuid.NullUUID
		allowRejected bool
		want          apperr.Kind
		ok            bool
	}{
		{name: "missing", exists: false, want: apperr.KindValidation},
		{name: "already linked", exists: true, linked: linked, want: apperr.KindConflict},
		{name: "rejected", exists: true, decision: DecisionRejected, want: apperr.KindValidation},
		{name: "rejected allowed", exists: true, decision: DecisionRejected, allowRejected: true, ok: true},
		{name: "undecided", exists: true, ok: true},
		{name: "approved", exists: true, decision: DecisionApproved, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLinkable(id, tt.exists, tt.decision, tt.linked, tt.allowRejected)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !apperr.Is(err, tt.want) {
				t.Fatalf("got %v, want kind %v", err, tt.want)
			}
		})
	}
}
