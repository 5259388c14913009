package supplier

import (
	"context"
	"database/sql"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL supplier repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const supplierColumns = `id, company_name, contact_person, email, phone, address, city, state,
		supplier_type, payment_terms, country, is_active, created_at, updated_at`

func (r *postgresRepository) CreateSupplier(ctx context.Context, s *Supplier) error {
	query := `
		INSERT INTO suppliers (id, company_name, contact_person, email, phone, address, city, state,
			supplier_type, payment_terms, country, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.CompanyName, s.ContactPerson, s.Email, s.Phone, s.Address, s.City, s.State,
		s.SupplierType, s.PaymentTerms, s.Country, s.IsActive,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return apperr.FromDB(err, "supplier")
}

func (r *postgresRepository) GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`
	s, err := scanSupplier(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		return nil, apperr.FromDB(err, "supplier")
	}
	return s, nil
}

func (r *postgresRepository) ListSuppliers(ctx context.Context, active *bool) ([]*Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers`
	args := []interface{}{}
	if active != nil {
		query += ` WHERE is_active = $1`
		args = append(args, *active)
	}
	query += ` ORDER BY company_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.FromDB(err, "supplier")
	}
	defer rows.Close()

	suppliers := []*Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows.Scan)
		if err != nil {
			return nil, apperr.FromDB(err, "supplier")
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, apperr.FromDB(rows.Err(), "supplier")
}

func (r *postgresRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE suppliers SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return apperr.FromDB(err, "supplier")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("supplier %s not found", id)
	}
	return nil
}

func scanSupplier(scan func(...interface{}) error) (*Supplier, error) {
	s := &Supplier{}
	err := scan(
		&s.ID,
		&s.CompanyName,
		&s.ContactPerson,
		&s.Email,
		&s.Phone,
		&s.Address,
		&s.City,
		&s.State,
		&s.SupplierType,
		&s.PaymentTerms,
		&s.Country,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
