package inspection

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, i *Inspection) error {
	// created_at is assigned by the database.
	cols := i.columns()
	cols = cols[:len(cols)-1]
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO pre_purchase_inspections (`+cols.Names()+`)
		 VALUES (`+cols.Placeholders(1)+`)
		 RETURNING created_at`,
		cols.Args()...).Scan(&i.CreatedAt)
	return apperr.FromDB(err, "inspection")
}

func (r *postgresRepo) Get(ctx context.Context, id uuid.UUID) (*Inspection, error) {
	i := &Inspection{}
	cols := i.columns()
	err := r.db.QueryRowContext(ctx,
		`SELECT `+cols.Names()+` FROM pre_purchase_inspections WHERE id=$1`, id).
		Scan(cols.Ptrs()...)
	if err != nil {
		return nil, apperr.FromDB(err, "inspection")
	}
	return i, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]*Inspection, error) {
	query := `SELECT ` + (&Inspection{}).columns().Names() + ` FROM pre_purchase_inspections WHERE 1=1`
	args := []interface{}{}
	n := 1
	if f.Decision != "" {
		query += fmt.Sprintf(` AND decision=$%d`, n)
		args = append(args, string(f.Decision))
		n++
	}
	if f.Recommendation != "" {
		query += fmt.Sprintf(` AND recommendation=$%d`, n)
		args = append(args, string(f.Recommendation))
		n++
	}
	query += fmt.Sprintf(` ORDER BY inspection_date DESC, created_at DESC LIMIT $%d`, n)
	args = append(args, f.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.FromDB(err, "inspection")
	}
	defer rows.Close()

	out := []*Inspection{}
	for rows.Next() {
		i := &Inspection{}
		if err := rows.Scan(i.columns().Ptrs()...); err != nil {
			return nil, apperr.FromDB(err, "inspection")
		}
		out = append(out, i)
	}
	return out, apperr.FromDB(rows.Err(), "inspection")
}

func (r *postgresRepo) SetDecision(ctx context.Context, id uuid.UUID, d Decision, notes string, on types.Date) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pre_purchase_inspections
		SET decision=$1, decision_notes=$2, decision_date=$3
		WHERE id=$4`, string(d), notes, on, id)
	if err != nil {
		return apperr.FromDB(err, "inspection")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("inspection %s not found", id)
	}
	return nil
}

// LockForLink locks the inspection row and checks it can be linked to a new
// unit. It must run in the same transaction that inserts the unit.
func LockForLink(ctx context.Context, tx *sql.Tx, id uuid.UUID, allowRejected bool) error {
	var (
		decision Decision
		linked   uuid.NullUUID
	)
	err := tx.QueryRowContext(ctx, `
		SELECT decision, inventory_id FROM pre_purchase_inspections
		WHERE id=$1 FOR UPDATE`, id).Scan(&decision, &linked)
	if err == sql.ErrNoRows {
		return CheckLinkable(id, false, decision, linked, allowRejected)
	}
	if err != nil {
		return apperr.FromDB(err, "inspection")
	}
	return CheckLinkable(id, true, decision, linked, allowRejected)
}

// SetBackLink records the unit the inspection produced. The row must already
// be locked by LockForLink.
func SetBackLink(ctx context.Context, tx *sql.Tx, id, unitID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE pre_purchase_inspections SET inventory_id=$1
		WHERE id=$2 AND inventory_id IS NULL`, unitID, id)
	if err != nil {
		return apperr.FromDB(err, "inspection")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Conflict("inspection %s is already linked to a unit", id)
	}
	return nil
}
