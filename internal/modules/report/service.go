package report

import (
	"context"

	"github.com/busesamerica/buses-america-inventory/internal/modules/inventory"
	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
)

// Service defines the reporting operations.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	Units(ctx context.Context, kind Kind) ([]*inventory.Unit, error)
}

// Source yields every non-deleted unit with derived fields filled in.
// inventory.Service satisfies it.
type Source interface {
	AllUnits(ctx context.Context) ([]*inventory.Unit, error)
}

type service struct{ units Source }

func NewService(units Source) Service { return &service{units: units} }

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	units, err := s.units.AllUnits(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(units), nil
}

func (s *service) Units(ctx context.Context, kind Kind) ([]*inventory.Unit, error) {
	if !kind.Valid() {
		return nil, apperr.NotFound("report %q not found", kind)
	}
	units, err := s.units.AllUnits(ctx)
	if err != nil {
		return nil, err
	}
	return project(units, kind), nil
}
