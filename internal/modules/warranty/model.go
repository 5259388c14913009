package warranty

import (
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/dbx"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClaimStatus represents the lifecycle state of a warranty claim.
type ClaimStatus string

const (
	StatusSubmitted ClaimStatus = "Submitted"
	StatusInReview  ClaimStatus = "In Review"
	StatusResolved  ClaimStatus = "Resolved"
	StatusDenied    ClaimStatus = "Denied"
)

// validTransitions defines the allowed claim state machine transitions.
var validTransitions = map[ClaimStatus][]ClaimStatus{
	StatusSubmitted: {StatusInReview},
	StatusInReview:  {StatusResolved, StatusDenied},
	StatusResolved:  {},
	StatusDenied:    {},
}

// CanTransition returns true if the transition from current to next is valid.
func CanTransition(current, next ClaimStatus) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

func (s ClaimStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// Terminal reports whether no further transition is possible.
func (s ClaimStatus) Terminal() bool { return s == StatusResolved || s == StatusDenied }

// ClaimType is the covered component.
type ClaimType string

const (
	ClaimEngine       ClaimType = "Engine"
	ClaimTransmission ClaimType = "Transmission"
	ClaimBoth         ClaimType = "Both"
)

func (t ClaimType) Valid() bool {
	return t == ClaimEngine || t == ClaimTransmission || t == ClaimBoth
}

// Claim is a powertrain warranty claim against a delivered unit.
type Claim struct {
	ID           uuid.UUID           `json:"id"`
	InventoryID  uuid.UUID           `json:"inventory_id"`
	ClaimDate    types.Date          `json:"claim_date"`
	ClaimType    ClaimType           `json:"claim_type"`
	Description  string              `json:"description"`
	ClientName   string              `json:"client_name"`
	Status       ClaimStatus         `json:"status"`
	Resolution   string              `json:"resolution"`
	Cost         decimal.NullDecimal `json:"cost"`
	ResolvedDate types.Date          `json:"resolved_date"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (c *Claim) columns() dbx.Columns {
	return dbx.Columns{
		{Name: "id", Ptr: &c.ID},
		{Name: "inventory_id", Ptr: &c.InventoryID},
		{Name: "claim_date", Ptr: &c.ClaimDate},
		{Name: "claim_type", Ptr: &c.ClaimType},
		{Name: "description", Ptr: &c.Description},
		{Name: "client_name", Ptr: &c.ClientName},
		{Name: "status", Ptr: &c.Status},
		{Name: "resolution", Ptr: &c.Resolution},
		{Name: "cost", Ptr: &c.Cost},
		{Name: "resolved_date", Ptr: &c.ResolvedDate},
		{Name: "created_at", Ptr: &c.CreatedAt},
		{Name: "updated_at", Ptr: &c.UpdatedAt},
	}
}

// FileClaimRequest is the payload for filing a claim.
type FileClaimRequest struct {
	ClaimDate   types.Date `json:"claim_date"`
	ClaimType   ClaimType  `json:"claim_type" validate:"required"`
	Description string     `json:"description" validate:"required"`
	ClientName  string     `json:"client_name"`
}

// AdvanceRequest moves a claim to its next status. Resolution and cost are
// only accepted together with a terminal status.
type AdvanceRequest struct {
	Status     ClaimStatus         `json:"status" validate:"required"`
	Resolution string              `json:"resolution"`
	Cost       decimal.NullDecimal `json:"cost"`
}
