package inventory

import (
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/dbx"
	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Status is the physical/process stage of a unit. Transitions are asserted by
// the caller; the model keeps derived fields consistent with whatever is set.
type Status string

const (
	StatusInTransit          Status = "Purchased - In Transit to Stock"
	StatusInStockUS          Status = "In Stock (US)"
	StatusImportProcessing   Status = "Import/Customs Processing"
	StatusInStockMexico      Status = "In Stock (Mexico)"
	StatusMaintenance        Status = "In Preventive Maintenance"
	StatusSoldPendingDeliver Status = "Sold - Pending Delivery"
	StatusDelivered          Status = "Delivered"
)

var statuses = []Status{
	StatusInTransit, StatusInStockUS, StatusImportProcessing, StatusInStockMexico,
	StatusMaintenance, StatusSoldPendingDeliver, StatusDelivered,
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

// RequiresSale reports whether the status only makes sense for a sold unit.
func (s Status) RequiresSale() bool {
	return s == StatusSoldPendingDeliver || s == StatusDelivered
}

// Location is the coarse whereabouts of a unit.
type Location string

const (
	LocationInTransit   Location = "In Transit"
	LocationUSStock     Location = "US Stock"
	LocationInCustoms   Location = "In Customs"
	LocationMexicoStock Location = "Mexico Stock"
	LocationClient      Location = "Client"
)

func (l Location) Valid() bool {
	switch l {
	case LocationInTransit, LocationUSStock, LocationInCustoms, LocationMexicoStock, LocationClient:
		return true
	}
	return false
}

type WarrantyStatus string

const (
	WarrantyNone    WarrantyStatus = ""
	WarrantyActive  WarrantyStatus = "Active"
	WarrantyExpired WarrantyStatus = "Expired"
)

// Unit is one physical vehicle. JSON names match column names so partial
// updates can be addressed by either.
type Unit struct {
	ID                 uuid.UUID      `json:"id"`
	StockNumber        string         `json:"stock_number"`
	VIN                string         `json:"vin"`
	Year               int            `json:"year"`
	Make               string         `json:"make"`
	Model              string         `json:"model"`
	BodyStyle          string         `json:"body_style"`
	BusType            string         `json:"bus_type"`
	PassengerCapacity  *int           `json:"passenger_capacity"`
	WheelchairCapacity *int           `json:"wheelchair_capacity"`
	EngineMake         string         `json:"engine_make"`
	EngineModel        string         `json:"engine_model"`
	EngineType         string         `json:"engine_type"`
	Transmission       string         `json:"transmission"`
	FuelType           string         `json:"fuel_type"`
	Odometer           *int           `json:"odometer"`
	Condition          string         `json:"condition"`
	ExteriorColor      string         `json:"exterior_color"`
	InteriorColor      string         `json:"interior_color"`
	TitleStatus        string         `json:"title_status"`
	Features           pq.StringArray `json:"features"`

	SupplierID            uuid.NullUUID   `json:"supplier_id"`
	PurchaseDate          types.Date      `json:"purchase_date"`
	PurchasePriceUSD      decimal.Decimal `json:"purchase_price_usd"`
	PurchaseLocation      string          `json:"purchase_location"`
	PurchaseInvoiceNumber string          `json:"purchase_invoice_number"`
	PreInspectionID       uuid.NullUUID   `json:"pre_inspection_id"`

	TransportToStockCostUSD      decimal.Decimal `json:"transport_to_stock_cost_usd"`
	InitialReconditioningCostUSD decimal.Decimal `json:"initial_reconditioning_cost_usd"`
	OtherAcquisitionCostsUSD     decimal.Decimal `json:"other_acquisition_costs_usd"`
	CostInUSStockUSD             decimal.Decimal `json:"cost_in_us_stock_usd"`

	AskingPrice     decimal.NullDecimal `json:"asking_price"`
	AskingCurrency  money.Currency      `json:"asking_currency"`
	MinimumPrice    decimal.NullDecimal `json:"minimum_price"`
	MinimumCurrency money.Currency      `json:"minimum_currency"`

	Status              Status   `json:"status"`
	CurrentLocation     Location `json:"current_location"`
	USStockLocation     string   `json:"us_stock_location"`
	MexicoStockLocation string   `json:"mexico_stock_location"`

	IsSold           bool                `json:"is_sold"`
	SaleDate         types.Date          `json:"sale_date"`
	ClientName       string              `json:"client_name"`
	ClientCompany    string              `json:"client_company"`
	ClientLocation   string              `json:"client_location"`
	ClientContact    string              `json:"client_contact"`
	ClientEmail      string              `json:"client_email"`
	ClientPhone      string              `json:"client_phone"`
	SalePrice        decimal.NullDecimal `json:"sale_price"`
	SaleCurrency     money.Currency      `json:"sale_currency"`
	DepositAmount    decimal.NullDecimal `json:"deposit_amount"`
	DepositCurrency  money.Currency      `json:"deposit_currency"`
	DepositDate      types.Date          `json:"deposit_date"`
	PaymentStatus    string              `json:"payment_status"`
	FinalPaymentDate types.Date          `json:"final_payment_date"`

	BorderCrossing          string              `json:"border_crossing"`
	CustomsBroker           string              `json:"customs_broker"`
	ImportStartedDate       types.Date          `json:"import_started_date"`
	ImportCompletedDate     types.Date          `json:"import_completed_date"`
	ImportCostMXN           decimal.NullDecimal `json:"import_cost_mxn"`
	CustomsCostMXN          decimal.NullDecimal `json:"customs_cost_mxn"`
	RegulatoryCostMXN       decimal.NullDecimal `json:"regulatory_cost_mxn"`
	ImportDocumentsComplete bool                `json:"import_documents_complete"`

	PreventiveMaintenanceCost     decimal.NullDecimal `json:"preventive_maintenance_cost"`
	PreventiveMaintenanceCurrency money.Currency      `json:"preventive_maintenance_currency"`
	PreventiveMaintenanceDate     types.Date          `json:"preventive_maintenance_date"`

	DeliveryDate             types.Date          `json:"delivery_date"`
	DeliveryMethod           string              `json:"delivery_method"`
	TransportToClientCostMXN decimal.NullDecimal `json:"transport_to_client_cost_mxn"`

	ExchangeRateUsed decimal.NullDecimal `json:"exchange_rate_used"`

	WarrantyStatus  WarrantyStatus `json:"warranty_status"`
	WarrantyEndDate types.Date     `json:"warranty_end_date"`

	Description   string `json:"description"`
	InternalNotes string `json:"internal_notes"`

	CreatedBy string    `json:"created_by"`
	Version   int       `json:"version"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Read-time values, never stored.
	DaysInInventory *int                `json:"days_in_inventory"`
	DaysInWarranty  *int                `json:"days_in_warranty"`
	SalePriceUSD    decimal.NullDecimal `json:"sale_price_usd"`
	TotalCostUSD    decimal.NullDecimal `json:"total_cost_usd"`
}

// columns is the single source of truth for the inventory_units column list.
// Order matters: the trailing meta columns are assigned by the database on insert.
func (u *Unit) columns() dbx.Columns {
	return dbx.Columns{
		{Name: "id", Ptr: &u.ID},
		{Name: "stock_number", Ptr: &u.StockNumber},
		{Name: "vin", Ptr: &u.VIN},
		{Name: "year", Ptr: &u.Year},
		{Name: "make", Ptr: &u.Make},
		{Name: "model", Ptr: &u.Model},
		{Name: "body_style", Ptr: &u.BodyStyle},
		{Name: "bus_type", Ptr: &u.BusType},
		{Name: "passenger_capacity", Ptr: &u.PassengerCapacity},
		{Name: "wheelchair_capacity", Ptr: &u.WheelchairCapacity},
		{Name: "engine_make", Ptr: &u.EngineMake},
		{Name: "engine_model", Ptr: &u.EngineModel},
		{Name: "engine_type", Ptr: &u.EngineType},
		{Name: "transmission", Ptr: &u.Transmission},
		{Name: "fuel_type", Ptr: &u.FuelType},
		{Name: "odometer", Ptr: &u.Odometer},
		{Name: "condition", Ptr: &u.Condition},
		{Name: "exterior_color", Ptr: &u.ExteriorColor},
		{Name: "interior_color", Ptr: &u.InteriorColor},
		{Name: "title_status", Ptr: &u.TitleStatus},
		{Name: "features", Ptr: &u.Features},
		{Name: "supplier_id", Ptr: &u.SupplierID},
		{Name: "purchase_date", Ptr: &u.PurchaseDate},
		{Name: "purchase_price_usd", Ptr: &u.PurchasePriceUSD},
		{Name: "purchase_location", Ptr: &u.PurchaseLocation},
		{Name: "purchase_invoice_number", Ptr: &u.PurchaseInvoiceNumber},
		{Name: "pre_inspection_id", Ptr: &u.PreInspectionID},
		{Name: "transport_to_stock_cost_usd", Ptr: &u.TransportToStockCostUSD},
		{Name: "initial_reconditioning_cost_usd", Ptr: &u.InitialReconditioningCostUSD},
		{Name: "other_acquisition_costs_usd", Ptr: &u.OtherAcquisitionCostsUSD},
		{Name: "cost_in_us_stock_usd", Ptr: &u.CostInUSStockUSD},
		{Name: "asking_price", Ptr: &u.AskingPrice},
		{Name: "asking_currency", Ptr: &u.AskingCurrency},
		{Name: "minimum_price", Ptr: &u.MinimumPrice},
		{Name: "minimum_currency", Ptr: &u.MinimumCurrency},
		{Name: "status", Ptr: &u.Status},
		{Name: "current_location", Ptr: &u.CurrentLocation},
		{Name: "us_stock_location", Ptr: &u.USStockLocation},
		{Name: "mexico_stock_location", Ptr: &u.MexicoStockLocation},
		{Name: "is_sold", Ptr: &u.IsSold},
		{Name: "sale_date", Ptr: &u.SaleDate},
		{Name: "client_name", Ptr: &u.ClientName},
		{Name: "client_company", Ptr: &u.ClientCompany},
		{Name: "client_location", Ptr: &u.ClientLocation},
		{Name: "client_contact", Ptr: &u.ClientContact},
		{Name: "client_email", Ptr: &u.ClientEmail},
		{Name: "client_phone", Ptr: &u.ClientPhone},
		{Name: "sale_price", Ptr: &u.SalePrice},
		{Name: "sale_currency", Ptr: &u.SaleCurrency},
		{Name: "deposit_amount", Ptr: &u.DepositAmount},
		{Name: "deposit_currency", Ptr: &u.DepositCurrency},
		{Name: "deposit_date", Ptr: &u.DepositDate},
		{Name: "payment_status", Ptr: &u.PaymentStatus},
		{Name: "final_payment_date", Ptr: &u.FinalPaymentDate},
		{Name: "border_crossing", Ptr: &u.BorderCrossing},
		{Name: "customs_broker", Ptr: &u.CustomsBroker},
		{Name: "import_started_date", Ptr: &u.ImportStartedDate},
		{Name: "import_completed_date", Ptr: &u.ImportCompletedDate},
		{Name: "import_cost_mxn", Ptr: &u.ImportCostMXN},
		{Name: "customs_cost_mxn", Ptr: &u.CustomsCostMXN},
		{Name: "regulatory_cost_mxn", Ptr: &u.RegulatoryCostMXN},
		{Name: "import_documents_complete", Ptr: &u.ImportDocumentsComplete},
		{Name: "preventive_maintenance_cost", Ptr: &u.PreventiveMaintenanceCost},
		{Name: "preventive_maintenance_currency", Ptr: &u.PreventiveMaintenanceCurrency},
		{Name: "preventive_maintenance_date", Ptr: &u.PreventiveMaintenanceDate},
		{Name: "delivery_date", Ptr: &u.DeliveryDate},
		{Name: "delivery_method", Ptr: &u.DeliveryMethod},
		{Name: "transport_to_client_cost_mxn", Ptr: &u.TransportToClientCostMXN},
		{Name: "exchange_rate_used", Ptr: &u.ExchangeRateUsed},
		{Name: "warranty_status", Ptr: &u.WarrantyStatus},
		{Name: "warranty_end_date", Ptr: &u.WarrantyEndDate},
		{Name: "description", Ptr: &u.Description},
		{Name: "internal_notes", Ptr: &u.InternalNotes},
		{Name: "created_by", Ptr: &u.CreatedBy},
		{Name: "version", Ptr: &u.Version},
		{Name: "is_deleted", Ptr: &u.IsDeleted},
		{Name: "created_at", Ptr: &u.CreatedAt},
		{Name: "updated_at", Ptr: &u.UpdatedAt},
	}
}

// insertColumns excludes the columns the database fills on insert.
func (u *Unit) insertColumns() dbx.Columns {
	cols := u.columns()
	return cols[:len(cols)-4]
}

// Filter narrows ListUnits. Nil or empty fields do not constrain.
type Filter struct {
	Status          Status
	CurrentLocation Location
	IsSold          *bool
	Make            string
	Year            *int
	SupplierID      *uuid.UUID
	Limit           int
	Offset          int
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// CreateRequest is the payload for registering an acquired unit.
type CreateRequest struct {
	StockNumber        string   `json:"stock_number" validate:"required,max=50"`
	VIN                string   `json:"vin" validate:"required,max=17"`
	Year               int      `json:"year" validate:"required,gte=1950,lte=2100"`
	Make               string   `json:"make" validate:"required"`
	Model              string   `json:"model" validate:"required"`
	BodyStyle          string   `json:"body_style"`
	BusType            string   `json:"bus_type"`
	PassengerCapacity  *int     `json:"passenger_capacity" validate:"omitempty,gte=0"`
	WheelchairCapacity *int     `json:"wheelchair_capacity" validate:"omitempty,gte=0"`
	EngineMake         string   `json:"engine_make"`
	EngineModel        string   `json:"engine_model"`
	EngineType         string   `json:"engine_type"`
	Transmission       string   `json:"transmission"`
	FuelType           string   `json:"fuel_type"`
	Odometer           *int     `json:"odometer" validate:"omitempty,gte=0"`
	Condition          string   `json:"condition"`
	ExteriorColor      string   `json:"exterior_color"`
	InteriorColor      string   `json:"interior_color"`
	TitleStatus        string   `json:"title_status"`
	Features           []string `json:"features"`

	SupplierID            uuid.NullUUID       `json:"supplier_id"`
	PurchaseDate          types.Date          `json:"purchase_date"`
	PurchasePriceUSD      decimal.NullDecimal `json:"purchase_price_usd"`
	PurchaseLocation      string              `json:"purchase_location"`
	PurchaseInvoiceNumber string              `json:"purchase_invoice_number"`
	PreInspectionID       uuid.NullUUID       `json:"pre_inspection_id"`

	TransportToStockCostUSD      decimal.NullDecimal `json:"transport_to_stock_cost_usd"`
	InitialReconditioningCostUSD decimal.NullDecimal `json:"initial_reconditioning_cost_usd"`
	OtherAcquisitionCostsUSD     decimal.NullDecimal `json:"other_acquisition_costs_usd"`

	AskingPrice     decimal.NullDecimal `json:"asking_price"`
	AskingCurrency  string              `json:"asking_currency"`
	MinimumPrice    decimal.NullDecimal `json:"minimum_price"`
	MinimumCurrency string              `json:"minimum_currency"`

	Status          Status   `json:"status"`
	CurrentLocation Location `json:"current_location"`
	USStockLocation string   `json:"us_stock_location"`

	Description   string `json:"description"`
	InternalNotes string `json:"internal_notes"`
}
