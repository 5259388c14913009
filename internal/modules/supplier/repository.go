package supplier

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines supplier data storage.
type Repository interface {
	CreateSupplier(ctx context.Context, s *Supplier) error
	GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error)
	// ListSuppliers filters on is_active when active is non-nil.
	ListSuppliers(ctx context.Context, active *bool) ([]*Supplier, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
