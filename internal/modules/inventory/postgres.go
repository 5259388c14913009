package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/busesamerica/buses-america-inventory/internal/modules/inspection"
	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/dbx"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateUnit(ctx context.Context, u *Unit, allowRejected bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.FromDB(err, "unit")
	}
	defer tx.Rollback()

	// The inspection row stays locked until commit so two units cannot claim it.
	if u.PreInspectionID.Valid {
		if err := inspection.LockForLink(ctx, tx, u.PreInspectionID.UUID, allowRejected); err != nil {
			return err
		}
	}

	cols := u.insertColumns()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO inventory_units (`+cols.Names()+`)
		 VALUES (`+cols.Placeholders(1)+`)
		 RETURNING version, created_at, updated_at`,
		cols.Args()...).Scan(&u.Version, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return uniqueViolation(err)
	}

	if u.PreInspectionID.Valid {
		if err := inspection.SetBackLink(ctx, tx, u.PreInspectionID.UUID, u.ID); err != nil {
			return err
		}
	}
	return apperr.FromDB(tx.Commit(), "unit")
}

func (r *postgresRepo) GetUnit(ctx context.Context, id uuid.UUID) (*Unit, error) {
	u := &Unit{}
	cols := u.columns()
	err := r.db.QueryRowContext(ctx,
		`SELECT `+cols.Names()+` FROM inventory_units WHERE id=$1 AND NOT is_deleted`, id).
		Scan(cols.Ptrs()...)
	if err != nil {
		return nil, apperr.FromDB(err, "unit")
	}
	return u, nil
}

func (r *postgresRepo) ListUnits(ctx context.Context, f Filter) ([]*Unit, error) {
	query, args := listQuery(f)
	return r.query(ctx, query, args...)
}

// listQuery renders the filtered page query. Placeholders are numbered in
// the order filters are appended.
func listQuery(f Filter) (string, []interface{}) {
	query := `SELECT ` + (&Unit{}).columns().Names() + ` FROM inventory_units WHERE NOT is_deleted`
	args := []interface{}{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		query += " AND " + fmt.Sprintf(cond, len(args))
	}
	if f.Status != "" {
		add("status=$%d", string(f.Status))
	}
	if f.CurrentLocation != "" {
		add("current_location=$%d", string(f.CurrentLocation))
	}
	if f.IsSold != nil {
		add("is_sold=$%d", *f.IsSold)
	}
	if f.Make != "" {
		add("make ILIKE $%d", "%"+escapeLike(f.Make)+"%")
	}
	if f.Year != nil {
		add("year=$%d", *f.Year)
	}
	if f.SupplierID != nil {
		add("supplier_id=$%d", *f.SupplierID)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)
	return query, args
}

func (r *postgresRepo) AllUnits(ctx context.Context) ([]*Unit, error) {
	return r.query(ctx, `SELECT `+(&Unit{}).columns().Names()+`
		FROM inventory_units WHERE NOT is_deleted ORDER BY created_at DESC`)
}

func (r *postgresRepo) UpdateUnit(ctx context.Context, id uuid.UUID, mutate MutateFunc) (*Unit, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.FromDB(err, "unit")
	}
	defer tx.Rollback()

	u := &Unit{}
	cols := u.columns()
	err = tx.QueryRowContext(ctx,
		`SELECT `+cols.Names()+` FROM inventory_units WHERE id=$1 AND NOT is_deleted FOR UPDATE`, id).
		Scan(cols.Ptrs()...)
	if err != nil {
		return nil, apperr.FromDB(err, "unit")
	}

	changed, err := mutate(u)
	if err != nil {
		return nil, err
	}
	set, err := cols.Pick(changed...)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	if len(set) == 0 {
		return u, nil
	}

	query, args := updateQuery(set, id)
	err = tx.QueryRowContext(ctx, query, args...).Scan(&u.Version, &u.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, "unit")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.FromDB(err, "unit")
	}
	return u, nil
}

// updateQuery writes only the given columns and bumps the version.
func updateQuery(set dbx.Columns, id uuid.UUID) (string, []interface{}) {
	assignments := make([]string, len(set))
	for i, c := range set {
		assignments[i] = fmt.Sprintf("%s=$%d", c.Name, i+1)
	}
	query := `UPDATE inventory_units SET ` + strings.Join(assignments, ",") + `,
		 version=version+1, updated_at=now()
		 WHERE id=$` + fmt.Sprint(len(set)+1) + `
		 RETURNING version, updated_at`
	return query, append(set.Args(), id)
}

func (r *postgresRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inventory_units SET is_deleted=TRUE, version=version+1, updated_at=now()
		WHERE id=$1 AND NOT is_deleted`, id)
	if err != nil {
		return apperr.FromDB(err, "unit")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("unit %s not found", id)
	}
	return nil
}

// ── helpers ──

func (r *postgresRepo) query(ctx context.Context, query string, args ...interface{}) ([]*Unit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.FromDB(err, "unit")
	}
	defer rows.Close()

	out := []*Unit{}
	for rows.Next() {
		u := &Unit{}
		if err := rows.Scan(u.columns().Ptrs()...); err != nil {
			return nil, apperr.FromDB(err, "unit")
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromDB(err, "unit")
	}
	return out, nil
}

// uniqueViolation names the identifier behind a duplicate-key error.
// Deleted rows keep their identifiers, so the check covers them too.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "inventory_units_vin_key":
			return apperr.Conflict("vin already exists")
		case "inventory_units_stock_number_key":
			return apperr.Conflict("stock_number already exists")
		}
	}
	return apperr.FromDB(err, "unit")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
