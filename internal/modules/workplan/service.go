package workplan

import (
	"context"
	"strings"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/modules/inventory"
	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/logger"
	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Service defines work plan business logic.
type Service interface {
	CreatePlan(ctx context.Context, unitID uuid.UUID, req CreatePlanRequest) (*Plan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error)
	ListPlans(ctx context.Context, unitID uuid.UUID) ([]*Plan, error)
	CompletePlan(ctx context.Context, id uuid.UUID, req CompleteRequest) (*Plan, error)
}

// Units is the slice of the inventory service work plans depend on.
type Units interface {
	GetUnit(ctx context.Context, id uuid.UUID) (*inventory.Unit, error)
	ApplyLegCost(ctx context.Context, id uuid.UUID, leg inventory.Leg, amount decimal.Decimal, currency money.Currency) (*inventory.Unit, error)
}

type service struct {
	repo  Repository
	units Units
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(repo Repository, units Units, log logrus.FieldLogger) Service {
	return &service{repo: repo, units: units, log: log, now: time.Now}
}

func (s *service) CreatePlan(ctx context.Context, unitID uuid.UUID, req CreatePlanRequest) (*Plan, error) {
	if !req.PlanType.Valid() {
		return nil, apperr.InvalidFields(map[string]string{"plan_type": "oneof=Acquisition|Delivery"})
	}
	currency, ok := money.ParseCurrency(req.CostCurrency, money.USD)
	if !ok {
		return nil, apperr.InvalidFields(map[string]string{"cost_currency": "oneof=USD|MXN"})
	}
	if _, err := s.units.GetUnit(ctx, unitID); err != nil {
		return nil, err
	}

	p := &Plan{
		ID:                  uuid.New(),
		InventoryID:         unitID,
		PlanType:            req.PlanType,
		OriginLocation:      strings.TrimSpace(req.OriginLocation),
		DestinationLocation: strings.TrimSpace(req.DestinationLocation),
		EstimatedDistanceKM: req.EstimatedDistanceKM,
		EstimatedDays:       req.EstimatedDays,
		EstimatedCost:       req.EstimatedCost,
		CostCurrency:        currency,
		PlanNotes:           req.PlanNotes,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListPlans(ctx context.Context, unitID uuid.UUID) ([]*Plan, error) {
	return s.repo.ListByUnit(ctx, unitID)
}

// CompletePlan records the actuals once. The actual cost is then fed to the
// unit's transport cost; a failure there is logged and does not undo the
// completion.
func (s *service) CompletePlan(ctx context.Context, id uuid.UUID, req CompleteRequest) (*Plan, error) {
	if !money.NonNegative(req.ActualCost) {
		return nil, apperr.InvalidFields(map[string]string{"actual_cost": "gte=0"})
	}
	if req.ActualDays != nil && *req.ActualDays < 0 {
		return nil, apperr.InvalidFields(map[string]string{"actual_days": "gte=0"})
	}

	p, err := s.repo.Complete(ctx, id, req, types.DateOf(s.now()))
	if err != nil {
		return nil, err
	}

	if p.ActualCost.Valid {
		leg := inventory.LegAcquisition
		if p.PlanType == PlanDelivery {
			leg = inventory.LegDelivery
		}
		if _, err := s.units.ApplyLegCost(ctx, p.InventoryID, leg, p.ActualCost.Decimal, p.CostCurrency); err != nil {
			logger.LogError(s.log, "workplan", "CompletePlan", "apply leg cost to unit",
				map[string]string{
					"plan_id":      p.ID.String(),
					"inventory_id": p.InventoryID.String(),
					"leg":          string(leg),
					"amount":       p.ActualCost.Decimal.String(),
					"currency":     string(p.CostCurrency),
				}, err)
		}
	}
	return p, nil
}
