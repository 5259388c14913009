package workplan

import (
	"context"
	"database/sql"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
)

const planColumns = `id,inventory_id,plan_type,origin_location,destination_location,
	estimated_distance_km,estimated_days,estimated_cost,cost_currency,plan_notes,
	actual_cost,actual_days,execution_notes,completed,completion_date,created_at`

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Plan) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO work_plans (id,inventory_id,plan_type,origin_location,destination_location,
			estimated_distance_km,estimated_days,estimated_cost,cost_currency,plan_notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		p.ID, p.InventoryID, string(p.PlanType), p.OriginLocation, p.DestinationLocation,
		p.EstimatedDistanceKM, p.EstimatedDays, p.EstimatedCost, string(p.CostCurrency), p.PlanNotes).
		Scan(&p.CreatedAt)
	return apperr.FromDB(err, "work plan")
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	p, err := scan(r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM work_plans WHERE id=$1`, id))
	if err != nil {
		return nil, apperr.FromDB(err, "work plan")
	}
	return p, nil
}

func (r *postgresRepo) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*Plan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+planColumns+` FROM work_plans
		WHERE inventory_id=$1 ORDER BY created_at DESC`, unitID)
	if err != nil {
		return nil, apperr.FromDB(err, "work plan")
	}
	defer rows.Close()

	plans := []*Plan{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, apperr.FromDB(err, "work plan")
		}
		plans = append(plans, p)
	}
	return plans, apperr.FromDB(rows.Err(), "work plan")
}

func (r *postgresRepo) Complete(ctx context.Context, id uuid.UUID, req CompleteRequest, on types.Date) (*Plan, error) {
	p, err := scan(r.db.QueryRowContext(ctx, `
		UPDATE work_plans
		SET actual_cost=$1, actual_days=$2, execution_notes=$3, completed=TRUE, completion_date=$4
		WHERE id=$5 AND NOT completed
		RETURNING `+planColumns,
		req.ActualCost, req.ActualDays, req.ExecutionNotes, on, id))
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return nil, apperr.FromDB(err, "work plan")
	}
	// Nothing updated: either the plan is missing or it was already completed.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, apperr.Conflict("work plan %s is already completed", id)
}

// ── scanner ──

type rowScanner interface{ Scan(dest ...interface{}) error }

func scan(row rowScanner) (*Plan, error) {
	p := &Plan{}
	var distance, estDays, actDays sql.NullInt64
	err := row.Scan(&p.ID, &p.InventoryID, &p.PlanType, &p.OriginLocation, &p.DestinationLocation,
		&distance, &estDays, &p.EstimatedCost, &p.CostCurrency, &p.PlanNotes,
		&p.ActualCost, &actDays, &p.ExecutionNotes, &p.Completed, &p.CompletionDate, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.EstimatedDistanceKM = intPtr(distance)
	p.EstimatedDays = intPtr(estDays)
	p.ActualDays = intPtr(actDays)
	return p, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
