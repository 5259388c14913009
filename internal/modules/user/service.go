package user

import (
	"context"

	"github.com/google/uuid"
)

// Service defines operator account business logic.
type Service interface {
	RegisterUser(ctx context.Context, req RegisterRequest) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}
