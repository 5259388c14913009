package warranty

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines warranty claim storage.
type Repository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*Claim, error)
	// UpdateStatus writes the status, resolution, cost and resolved date of c
	// if the stored status is still from.
	UpdateStatus(ctx context.Context, c *Claim, from ClaimStatus) error
}
