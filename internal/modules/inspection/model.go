package inspection

import (
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/dbx"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recommendation is the inspector's advice, set when the inspection is created.
type Recommendation string

const (
	RecommendApprove     Recommendation = "Approve for Purchase"
	RecommendConditional Recommendation = "Conditional"
	RecommendReject      Recommendation = "Reject"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendApprove, RecommendConditional, RecommendReject:
		return true
	}
	return false
}

// Decision is the reviewer's purchase decision. It may disagree with the recommendation.
type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

func (d Decision) Valid() bool { return d == DecisionApproved || d == DecisionRejected }

// Inspection is a pre-purchase assessment of a vehicle identified by VIN.
// Condition fields are stored verbatim; only VIN and inspection date are required.
type Inspection struct {
	ID                 uuid.UUID  `json:"id"`
	VIN                string     `json:"vin"`
	StockNumberTemp    string     `json:"stock_number_temp,omitempty"`
	Year               *int       `json:"year"`
	Make               string     `json:"make,omitempty"`
	Model              string     `json:"model,omitempty"`
	Odometer           *int       `json:"odometer"`
	InspectionDate     types.Date `json:"inspection_date"`
	InspectorName      string     `json:"inspector_name,omitempty"`
	InspectionLocation string     `json:"inspection_location,omitempty"`

	EngineCondition        string `json:"engine_condition,omitempty"`
	EngineStarts           *bool  `json:"engine_starts"`
	EngineOilCondition     string `json:"engine_oil_condition,omitempty"`
	EngineCoolantCondition string `json:"engine_coolant_condition,omitempty"`
	EngineLeaks            *bool  `json:"engine_leaks"`
	EngineNoise            *bool  `json:"engine_noise"`
	EngineNotes            string `json:"engine_notes,omitempty"`

	TransmissionCondition      string `json:"transmission_condition,omitempty"`
	TransmissionShiftsProperly *bool  `json:"transmission_shifts_properly"`
	TransmissionFluidCondition string `json:"transmission_fluid_condition,omitempty"`
	TransmissionLeaks          *bool  `json:"transmission_leaks"`
	TransmissionNotes          string `json:"transmission_notes,omitempty"`

	SuspensionCondition       string `json:"suspension_condition,omitempty"`
	SteeringCondition         string `json:"steering_condition,omitempty"`
	ChassisCondition          string `json:"chassis_condition,omitempty"`
	BodyCondition             string `json:"body_condition,omitempty"`
	RustPresent               *bool  `json:"rust_present"`
	RustSeverity              string `json:"rust_severity,omitempty"`
	BrakeCondition            string `json:"brake_condition,omitempty"`
	BrakePadsPercentage       *int   `json:"brake_pads_percentage"`
	ElectricalSystemCondition string `json:"electrical_system_condition,omitempty"`
	InteriorCondition         string `json:"interior_condition,omitempty"`
	SeatsCondition            string `json:"seats_condition,omitempty"`

	RoadTestPerformed              *bool               `json:"road_test_performed"`
	RoadTestNotes                  string              `json:"road_test_notes,omitempty"`
	OverallRating                  string              `json:"overall_rating,omitempty"`
	Recommendation                 Recommendation      `json:"recommendation,omitempty"`
	EstimatedRepairCostUSD         decimal.NullDecimal `json:"estimated_repair_cost_usd"`
	MaxPurchasePriceRecommendation decimal.NullDecimal `json:"max_purchase_price_recommendation"`

	Decision      Decision   `json:"decision,omitempty"`
	DecisionDate  types.Date `json:"decision_date"`
	DecisionNotes string     `json:"decision_notes,omitempty"`

	InventoryID uuid.NullUUID `json:"inventory_id"`
	CreatedAt   time.Time     `json:"created_at"`
}

// columns lists every stored column in table order. The same table drives
// INSERT and SELECT so the two never drift apart.
func (i *Inspection) columns() dbx.Columns {
	return dbx.Columns{
		{Name: "id", Ptr: &i.ID},
		{Name: "vin", Ptr: &i.VIN},
		{Name: "stock_number_temp", Ptr: &i.StockNumberTemp},
		{Name: "year", Ptr: &i.Year},
		{Name: "make", Ptr: &i.Make},
		{Name: "model", Ptr: &i.Model},
		{Name: "odometer", Ptr: &i.Odometer},
		{Name: "inspection_date", Ptr: &i.InspectionDate},
		{Name: "inspector_name", Ptr: &i.InspectorName},
		{Name: "inspection_location", Ptr: &i.InspectionLocation},
		{Name: "engine_condition", Ptr: &i.EngineCondition},
		{Name: "engine_starts", Ptr: &i.EngineStarts},
		{Name: "engine_oil_condition", Ptr: &i.EngineOilCondition},
		{Name: "engine_coolant_condition", Ptr: &i.EngineCoolantCondition},
		{Name: "engine_leaks", Ptr: &i.EngineLeaks},
		{Name: "engine_noise", Ptr: &i.EngineNoise},
		{Name: "engine_notes", Ptr: &i.EngineNotes},
		{Name: "transmission_condition", Ptr: &i.TransmissionCondition},
		{Name: "transmission_shifts_properly", Ptr: &i.TransmissionShiftsProperly},
		{Name: "transmission_fluid_condition", Ptr: &i.TransmissionFluidCondition},
		{Name: "transmission_leaks", Ptr: &i.TransmissionLeaks},
		{Name: "transmission_notes", Ptr: &i.TransmissionNotes},
		{Name: "suspension_condition", Ptr: &i.SuspensionCondition},
		{Name: "steering_condition", Ptr: &i.SteeringCondition},
		{Name: "chassis_condition", Ptr: &i.ChassisCondition},
		{Name: "body_condition", Ptr: &i.BodyCondition},
		{Name: "rust_present", Ptr: &i.RustPresent},
		{Name: "rust_severity", Ptr: &i.RustSeverity},
		{Name: "brake_condition", Ptr: &i.BrakeCondition},
		{Name: "brake_pads_percentage", Ptr: &i.BrakePadsPercentage},
		{Name: "electrical_system_condition", Ptr: &i.ElectricalSystemCondition},
		{Name: "interior_condition", Ptr: &i.InteriorCondition},
		{Name: "seats_condition", Ptr: &i.SeatsCondition},
		{Name: "road_test_performed", Ptr: &i.RoadTestPerformed},
		{Name: "road_test_notes", Ptr: &i.RoadTestNotes},
		{Name: "overall_rating", Ptr: &i.OverallRating},
		{Name: "recommendation", Ptr: &i.Recommendation},
		{Name: "estimated_repair_cost_usd", Ptr: &i.EstimatedRepairCostUSD},
		{Name: "max_purchase_price_recommendation", Ptr: &i.MaxPurchasePriceRecommendation},
		{Name: "decision", Ptr: &i.Decision},
		{Name: "decision_date", Ptr: &i.DecisionDate},
		{Name: "decision_notes", Ptr: &i.DecisionNotes},
		{Name: "inventory_id", Ptr: &i.InventoryID},
		{Name: "created_at", Ptr: &i.CreatedAt},
	}
}

// Filter narrows ListInspections. Empty fields are ignored.
type Filter struct {
	Decision       Decision
	Recommendation Recommendation
	Limit          int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// DecisionRequest is the payload for recording a reviewer decision.
type DecisionRequest struct {
	Decision Decision `json:"decision" validate:"required"`
	Notes    string   `json:"notes"`
}
