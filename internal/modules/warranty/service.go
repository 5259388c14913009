package warranty

import (
	"context"
	"strings"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/modules/inventory"
	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
)

// Service defines warranty claim business logic.
type Service interface {
	FileClaim(ctx context.Context, unitID uuid.UUID, req FileClaimRequest) (*Claim, error)
	GetClaim(ctx context.Context, id uuid.UUID) (*Claim, error)
	ListClaims(ctx context.Context, unitID uuid.UUID) ([]*Claim, error)
	AdvanceClaim(ctx context.Context, id uuid.UUID, req AdvanceRequest) (*Claim, error)
}

// Units looks up the unit a claim is filed against.
type Units interface {
	GetUnit(ctx context.Context, id uuid.UUID) (*inventory.Unit, error)
}

type service struct {
	repo  Repository
	units Units
	now   func() time.Time
}

func NewService(repo Repository, units Units) Service {
	return &service{repo: repo, units: units, now: time.Now}
}

func (s *service) FileClaim(ctx context.Context, unitID uuid.UUID, req FileClaimRequest) (*Claim, error) {
	if !req.ClaimType.Valid() {
		return nil, apperr.InvalidFields(map[string]string{"claim_type": "oneof=Engine|Transmission|Both"})
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, apperr.InvalidFields(map[string]string{"description": "required"})
	}
	unit, err := s.units.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	c := &Claim{
		ID:          uuid.New(),
		InventoryID: unitID,
		ClaimDate:   req.ClaimDate,
		ClaimType:   req.ClaimType,
		Description: strings.TrimSpace(req.Description),
		ClientName:  strings.TrimSpace(req.ClientName),
		Status:      StatusSubmitted,
	}
	if c.ClaimDate.IsZero() {
		c.ClaimDate = types.DateOf(s.now())
	}
	if c.ClientName == "" {
		c.ClientName = unit.ClientName
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListClaims(ctx context.Context, unitID uuid.UUID) ([]*Claim, error) {
	return s.repo.ListByUnit(ctx, unitID)
}

func (s *service) AdvanceClaim(ctx context.Context, id uuid.UUID, req AdvanceRequest) (*Claim, error) {
	if !req.Status.Valid() {
		return nil, apperr.InvalidFields(map[string]string{"status": "oneof=Submitted|In Review|Resolved|Denied"})
	}
	resolution := strings.TrimSpace(req.Resolution)
	if !req.Status.Terminal() && (resolution != "" || req.Cost.Valid) {
		return nil, apperr.Validation("resolution and cost can only be set when the claim is resolved or denied")
	}
	if !money.NonNegative(req.Cost) {
		return nil, apperr.InvalidFields(map[string]string{"cost": "gte=0"})
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := c.Status
	if !CanTransition(from, req.Status) {
		return nil, apperr.Conflict("cannot move claim from %s to %s", from, req.Status)
	}

	c.Status = req.Status
	if req.Status.Terminal() {
		c.Resolution = resolution
		c.Cost = req.Cost
		c.ResolvedDate = types.DateOf(s.now())
	}
	if err := s.repo.UpdateStatus(ctx, c, from); err != nil {
		return nil, err
	}
	return c, nil
}
