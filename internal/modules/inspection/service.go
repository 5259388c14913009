package inspection

import (
	"context"
	"strings"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
)

// Service defines pre-purchase inspection business logic.
type Service interface {
	CreateInspection(ctx context.Context, in Inspection) (*Inspection, error)
	GetInspection(ctx context.Context, id uuid.UUID) (*Inspection, error)
	ListInspections(ctx context.Context, f Filter) ([]*Inspection, error)
	RecordDecision(ctx context.Context, id uuid.UUID, req DecisionRequest) (*Inspection, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service { return &service{repo: repo, now: time.Now} }

// CreateInspection stores the assessment as given. Decision and back-link
// fields are owned by later operations and ignored here.
func (s *service) CreateInspection(ctx context.Context, in Inspection) (*Inspection, error) {
	fields := map[string]string{}
	in.VIN = strings.ToUpper(strings.TrimSpace(in.VIN))
	if in.VIN == "" {
		fields["vin"] = "required"
	}
	if in.InspectionDate.IsZero() {
		fields["inspection_date"] = "required"
	}
	if in.Recommendation != "" && !in.Recommendation.Valid() {
		fields["recommendation"] = "oneof=Approve for Purchase|Conditional|Reject"
	}
	if in.BrakePadsPercentage != nil && (*in.BrakePadsPercentage < 0 || *in.BrakePadsPercentage > 100) {
		fields["brake_pads_percentage"] = "range=0-100"
	}
	if !money.NonNegative(in.EstimatedRepairCostUSD) {
		fields["estimated_repair_cost_usd"] = "gte=0"
	}
	if !money.NonNegative(in.MaxPurchasePriceRecommendation) {
		fields["max_purchase_price_recommendation"] = "gte=0"
	}
	if len(fields) > 0 {
		return nil, apperr.InvalidFields(fields)
	}

	in.ID = uuid.New()
	in.Decision = ""
	in.DecisionDate = types.Date{}
	in.DecisionNotes = ""
	in.InventoryID = uuid.NullUUID{}

	if err := s.repo.Create(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *service) GetInspection(ctx context.Context, id uuid.UUID) (*Inspection, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) ListInspections(ctx context.Context, f Filter) ([]*Inspection, error) {
	if f.Decision != "" && !f.Decision.Valid() {
		return nil, apperr.Validation("unknown decision %q", f.Decision)
	}
	if f.Recommendation != "" && !f.Recommendation.Valid() {
		return nil, apperr.Validation("unknown recommendation %q", f.Recommendation)
	}
	switch {
	case f.Limit < 0:
		return nil, apperr.Validation("limit must not be negative")
	case f.Limit == 0:
		f.Limit = defaultListLimit
	case f.Limit > maxListLimit:
		f.Limit = maxListLimit
	}
	return s.repo.List(ctx, f)
}

// RecordDecision sets or overwrites the reviewer decision, stamped with today's date.
func (s *service) RecordDecision(ctx context.Context, id uuid.UUID, req DecisionRequest) (*Inspection, error) {
	if !req.Decision.Valid() {
		return nil, apperr.InvalidFields(map[string]string{"decision": "oneof=Approved|Rejected"})
	}
	if err := s.repo.SetDecision(ctx, id, req.Decision, req.Notes, types.DateOf(s.now())); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// CheckLinkable decides whether an inspection may be linked to a new unit.
// A missing inspection is a validation error on the unit being created.
func CheckLinkable(id uuid.UUID, exists bool, decision Decision, linked uuid.NullUUID, allowRejected bool) error {
	switch {
	case !exists:
		return apperr.InvalidFields(map[string]string{"pre_inspection_id": "inspection " + id.String() + " does not exist"})
	case linked.Valid:
		return apperr.Conflict("inspection %s is already linked to unit %s", id, linked.UUID)
	case decision == DecisionRejected && !allowRejected:
		return apperr.InvalidFields(map[string]string{"pre_inspection_id": "inspection " + id.String() + " was rejected"})
	}
	return nil
}
