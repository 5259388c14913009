package warranty

import (
	"context"
	"database/sql"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, c *Claim) error {
	cols := c.columns()
	cols = cols[:len(cols)-2]
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO warranty_claims (`+cols.Names()+`) VALUES (`+cols.Placeholders(1)+`)
		 RETURNING created_at, updated_at`,
		cols.Args()...).Scan(&c.CreatedAt, &c.UpdatedAt)
	return apperr.FromDB(err, "warranty claim")
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c := &Claim{}
	cols := c.columns()
	err := r.db.QueryRowContext(ctx, `SELECT `+cols.Names()+` FROM warranty_claims WHERE id=$1`, id).
		Scan(cols.Ptrs()...)
	if err != nil {
		return nil, apperr.FromDB(err, "warranty claim")
	}
	return c, nil
}

func (r *postgresRepo) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*Claim, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+(&Claim{}).columns().Names()+` FROM warranty_claims
		WHERE inventory_id=$1 ORDER BY claim_date DESC, created_at DESC`, unitID)
	if err != nil {
		return nil, apperr.FromDB(err, "warranty claim")
	}
	defer rows.Close()

	claims := []*Claim{}
	for rows.Next() {
		c := &Claim{}
		if err := rows.Scan(c.columns().Ptrs()...); err != nil {
			return nil, apperr.FromDB(err, "warranty claim")
		}
		claims = append(claims, c)
	}
	return claims, apperr.FromDB(rows.Err(), "warranty claim")
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, c *Claim, from ClaimStatus) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE warranty_claims
		SET status=$1, resolution=$2, cost=$3, resolved_date=$4, updated_at=now()
		WHERE id=$5 AND status=$6
		RETURNING updated_at`,
		string(c.Status), c.Resolution, c.Cost, c.ResolvedDate, c.ID, string(from)).Scan(&c.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperr.Conflict("warranty claim %s changed status concurrently", c.ID)
	}
	return apperr.FromDB(err, "warranty claim")
}
