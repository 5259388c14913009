package inspection

import (
	"context"

	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
)

// Repository defines pre-purchase inspection storage. The back-link to an
// inventory unit is written by LinkInTx inside the unit creation transaction.
type Repository interface {
	Create(ctx context.Context, i *Inspection) error
	Get(ctx context.Context, id uuid.UUID) (*Inspection, error)
	List(ctx context.Context, f Filter) ([]*Inspection, error)
	SetDecision(ctx context.Context, id uuid.UUID, d Decision, notes string, on types.Date) error
}
