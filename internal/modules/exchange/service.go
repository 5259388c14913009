package exchange

import (
	"context"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
)

// Service defines exchange rate business logic.
type Service interface {
	RecordRate(ctx context.Context, req RecordRateRequest) (*Rate, error)
	CurrentRate(ctx context.Context, pair Pair) (*Rate, error)
	History(ctx context.Context, pair Pair, limit int) ([]*Rate, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) RecordRate(ctx context.Context, req RecordRateRequest) (*Rate, error) {
	pair, err := ParsePair(req.FromCurrency, req.ToCurrency)
	if err != nil {
		return nil, err
	}
	if !req.Rate.IsPositive() {
		return nil, apperr.InvalidFields(map[string]string{"rate": "gt"})
	}

	effective := req.EffectiveDate
	if effective.IsZero() {
		effective = types.DateOf(s.now())
	}

	rate := &Rate{
		ID:            uuid.New(),
		FromCurrency:  pair.From,
		ToCurrency:    pair.To,
		Rate:          req.Rate,
		EffectiveDate: effective,
		IsActive:      true,
	}
	if err := s.repo.Insert(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *service) CurrentRate(ctx context.Context, pair Pair) (*Rate, error) {
	rate, err := s.repo.Current(ctx, pair)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("no active %s/%s exchange rate", pair.From, pair.To)
		}
		return nil, err
	}
	return rate, nil
}

func (s *service) History(ctx context.Context, pair Pair, limit int) ([]*Rate, error) {
	switch {
	case limit < 0:
		return nil, apperr.Validation("limit must not be negative")
	case limit == 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	return s.repo.History(ctx, pair, limit)
}

// ParsePair validates a currency pair; blanks default to USD -> MXN.
func ParsePair(from, to string) (Pair, error) {
	f, ok := money.ParseCurrency(from, money.USD)
	if !ok {
		return Pair{}, apperr.Validation("unsupported from_currency %q", from)
	}
	t, ok := money.ParseCurrency(to, money.MXN)
	if !ok {
		return Pair{}, apperr.Validation("unsupported to_currency %q", to)
	}
	if f == t {
		return Pair{}, apperr.Validation("from_currency and to_currency must differ")
	}
	return Pair{From: f, To: t}, nil
}
