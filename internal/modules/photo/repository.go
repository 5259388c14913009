package photo

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the data access contract for photo rows.
type Repository interface {
	// Create inserts p. A primary photo demotes the unit's previous primary.
	Create(ctx context.Context, p *Photo) error
	GetByID(ctx context.Context, id uuid.UUID) (*Photo, error)
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*Photo, error)
}
