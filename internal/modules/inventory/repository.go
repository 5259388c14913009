package inventory

import (
	"context"

	"github.com/google/uuid"
)

// MutateFunc edits a locked unit in place and returns the columns it changed.
type MutateFunc func(u *Unit) ([]string, error)

// Repository defines inventory unit storage. Soft-deleted rows are invisible
// to every read and update.
type Repository interface {
	// CreateUnit inserts u. When u.PreInspectionID is set the inspection is
	// validated and back-linked in the same transaction.
	CreateUnit(ctx context.Context, u *Unit, allowRejected bool) error
	GetUnit(ctx context.Context, id uuid.UUID) (*Unit, error)
	ListUnits(ctx context.Context, f Filter) ([]*Unit, error)
	// AllUnits returns every non-deleted unit, newest first.
	AllUnits(ctx context.Context) ([]*Unit, error)
	// UpdateUnit locks the row, applies mutate and writes only the changed
	// columns, bumping the version.
	UpdateUnit(ctx context.Context, id uuid.UUID, mutate MutateFunc) (*Unit, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
