package workplan

import (
	"context"

	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
)

// Repository defines work plan storage.
type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*Plan, error)
	// Complete stores the actuals only if the plan is still open and returns
	// a ConflictError otherwise.
	Complete(ctx context.Context, id uuid.UUID, req CompleteRequest, on types.Date) (*Plan, error)
}
