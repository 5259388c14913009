package exchange

import "context"

// Repository defines exchange rate storage. There is no update or delete.
type Repository interface {
	Insert(ctx context.Context, r *Rate) error
	Current(ctx context.Context, pair Pair) (*Rate, error)
	History(ctx context.Context, pair Pair, limit int) ([]*Rate, error)
}
