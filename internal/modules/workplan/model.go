package workplan

import (
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanType names the transport leg a plan covers.
type PlanType string

const (
	PlanAcquisition PlanType = "Acquisition"
	PlanDelivery    PlanType = "Delivery"
)

func (t PlanType) Valid() bool { return t == PlanAcquisition || t == PlanDelivery }

// Plan is an estimated transport leg for a unit, later completed with actuals.
type Plan struct {
	ID                  uuid.UUID           `json:"id"`
	InventoryID         uuid.UUID           `json:"inventory_id"`
	PlanType            PlanType            `json:"plan_type"`
	OriginLocation      string              `json:"origin_location"`
	DestinationLocation string              `json:"destination_location"`
	EstimatedDistanceKM *int                `json:"estimated_distance_km"`
	EstimatedDays       *int                `json:"estimated_days"`
	EstimatedCost       decimal.NullDecimal `json:"estimated_cost"`
	CostCurrency        money.Currency      `json:"cost_currency"`
	PlanNotes           string              `json:"plan_notes"`
	ActualCost          decimal.NullDecimal `json:"actual_cost"`
	ActualDays          *int                `json:"actual_days"`
	ExecutionNotes      string              `json:"execution_notes"`
	Completed           bool                `json:"completed"`
	CompletionDate      types.Date          `json:"completion_date"`
	CreatedAt           time.Time           `json:"created_at"`
}

// CreatePlanRequest is the payload for planning a leg.
type CreatePlanRequest struct {
	PlanType            PlanType            `json:"plan_type" validate:"required"`
	OriginLocation      string              `json:"origin_location"`
	DestinationLocation string              `json:"destination_location"`
	EstimatedDistanceKM *int                `json:"estimated_distance_km"`
	EstimatedDays       *int                `json:"estimated_days"`
	EstimatedCost       decimal.NullDecimal `json:"estimated_cost"`
	CostCurrency        string              `json:"cost_currency"`
	PlanNotes           string              `json:"plan_notes"`
}

// CompleteRequest records the actuals of an executed leg.
type CompleteRequest struct {
	ActualCost     decimal.NullDecimal `json:"actual_cost"`
	ActualDays     *int                `json:"actual_days"`
	ExecutionNotes string              `json:"execution_notes"`
}
