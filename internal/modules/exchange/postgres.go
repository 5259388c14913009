package exchange

import (
	"context"
	"database/sql"
	"strings"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const rateColumns = `id,from_currency,to_currency,rate,effective_date,is_active,created_at`

func (r *postgresRepo) Insert(ctx context.Context, rate *Rate) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO exchange_rates (id,from_currency,to_currency,rate,effective_date,is_active)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		rate.ID, string(rate.FromCurrency), string(rate.ToCurrency), rate.Rate, rate.EffectiveDate, rate.IsActive).
		Scan(&rate.CreatedAt)
	return apperr.FromDB(err, "exchange rate")
}

func (r *postgresRepo) Current(ctx context.Context, pair Pair) (*Rate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE from_currency=$1 AND to_currency=$2 AND is_active
		ORDER BY effective_date DESC, created_at DESC
		LIMIT 1`, string(pair.From), string(pair.To))
	rate, err := scanRate(row.Scan)
	if err != nil {
		return nil, apperr.FromDB(err, "exchange rate")
	}
	return rate, nil
}

func (r *postgresRepo) History(ctx context.Context, pair Pair, limit int) ([]*Rate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE from_currency=$1 AND to_currency=$2
		ORDER BY effective_date DESC, created_at DESC
		LIMIT $3`, string(pair.From), string(pair.To), limit)
	if err != nil {
		return nil, apperr.FromDB(err, "exchange rate")
	}
	defer rows.Close()

	rates := []*Rate{}
	for rows.Next() {
		rate, err := scanRate(rows.Scan)
		if err != nil {
			return nil, apperr.FromDB(err, "exchange rate")
		}
		rates = append(rates, rate)
	}
	return rates, apperr.FromDB(rows.Err(), "exchange rate")
}

func scanRate(scan func(...interface{}) error) (*Rate, error) {
	r := &Rate{}
	var from, to string
	if err := scan(&r.ID, &from, &to, &r.Rate, &r.EffectiveDate, &r.IsActive, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.FromCurrency, r.ToCurrency = currency(from), currency(to)
	return r, nil
}

// CHAR(3) columns come back space padded on some drivers.
func currency(s string) money.Currency { return money.Currency(strings.TrimSpace(s)) }
