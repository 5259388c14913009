package auth

import (
	"context"

	"github.com/google/uuid"
)

// Operator is the authenticated caller of a request.
type Operator struct {
	ID    uuid.UUID
	Email string
}

type ctxKey struct{}

func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, ctxKey{}, op)
}

// OperatorFrom returns the operator attached by Middleware, if any.
func OperatorFrom(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(ctxKey{}).(Operator)
	return op, ok
}
