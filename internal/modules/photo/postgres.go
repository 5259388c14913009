package photo

import (
	"context"
	"database/sql"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Photo) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.FromDB(err, "photo")
	}
	defer tx.Rollback()

	if p.IsPrimary {
		if _, err := tx.ExecContext(ctx,
			`UPDATE inventory_photos SET is_primary=FALSE WHERE inventory_id=$1 AND is_primary`,
			p.InventoryID); err != nil {
			return apperr.FromDB(err, "photo")
		}
	}

	cols := p.columns()
	cols = cols[:len(cols)-1]
	err = tx.QueryRowContext(ctx,
		`INSERT INTO inventory_photos (`+cols.Names()+`) VALUES (`+cols.Placeholders(1)+`) RETURNING uploaded_at`,
		cols.Args()...).Scan(&p.UploadedAt)
	if err != nil {
		return apperr.FromDB(err, "photo")
	}
	return apperr.FromDB(tx.Commit(), "photo")
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Photo, error) {
	p := &Photo{}
	cols := p.columns()
	err := r.db.QueryRowContext(ctx, `SELECT `+cols.Names()+` FROM inventory_photos WHERE id=$1`, id).
		Scan(cols.Ptrs()...)
	if err != nil {
		return nil, apperr.FromDB(err, "photo")
	}
	return p, nil
}

func (r *postgresRepo) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*Photo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+(&Photo{}).columns().Names()+` FROM inventory_photos
		WHERE inventory_id=$1 ORDER BY is_primary DESC, display_order, uploaded_at`, unitID)
	if err != nil {
		return nil, apperr.FromDB(err, "photo")
	}
	defer rows.Close()

	photos := []*Photo{}
	for rows.Next() {
		p := &Photo{}
		if err := rows.Scan(p.columns().Ptrs()...); err != nil {
			return nil, apperr.FromDB(err, "photo")
		}
		photos = append(photos, p)
	}
	return photos, apperr.FromDB(rows.Err(), "photo")
}
