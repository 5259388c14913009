package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/modules/auth"
	"github.com/busesamerica/buses-america-inventory/internal/modules/exchange"
	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Service defines the unit lifecycle operations.
type Service interface {
	CreateUnit(ctx context.Context, req CreateRequest) (*Unit, error)
	GetUnit(ctx context.Context, id uuid.UUID) (*Unit, error)
	ListUnits(ctx context.Context, f Filter) ([]*Unit, error)
	AllUnits(ctx context.Context) ([]*Unit, error)
	// UpdateUnit merges a sparse patch. A non-nil expectedVersion must match
	// the stored version.
	UpdateUnit(ctx context.Context, id uuid.UUID, patch Patch, expectedVersion *int) (*Unit, error)
	DeleteUnit(ctx context.Context, id uuid.UUID) error
	// ApplyLegCost adds the actual cost of a completed transport leg.
	ApplyLegCost(ctx context.Context, id uuid.UUID, leg Leg, amount decimal.Decimal, currency money.Currency) (*Unit, error)
}

// RateSource supplies the current exchange rate. exchange.Service satisfies it.
type RateSource interface {
	CurrentRate(ctx context.Context, pair exchange.Pair) (*exchange.Rate, error)
}

// Leg identifies which transport cost a work plan feeds.
type Leg string

const (
	LegAcquisition Leg = "Acquisition"
	LegDelivery    Leg = "Delivery"
)

// Options carries the configurable lifecycle rules.
type Options struct {
	WarrantyTermDays            int
	AllowRejectedInspectionLink bool
}

type service struct {
	repo  Repository
	rates RateSource
	opts  Options
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(repo Repository, rates RateSource, opts Options, log logrus.FieldLogger) Service {
	if opts.WarrantyTermDays <= 0 {
		opts.WarrantyTermDays = 90
	}
	return &service{repo: repo, rates: rates, opts: opts, log: log, now: time.Now}
}

func (s *service) today() types.Date { return types.DateOf(s.now()) }

func (s *service) CreateUnit(ctx context.Context, req CreateRequest) (*Unit, error) {
	u, err := s.newUnit(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateUnit(ctx, u, s.opts.AllowRejectedInspectionLink); err != nil {
		return nil, err
	}
	u.derive(s.today())
	return u, nil
}

// newUnit validates a creation request and builds the row to insert.
func (s *service) newUnit(ctx context.Context, req CreateRequest) (*Unit, error) {
	fields := map[string]string{}

	u := &Unit{
		ID:                    uuid.New(),
		StockNumber:           strings.TrimSpace(req.StockNumber),
		VIN:                   strings.ToUpper(strings.TrimSpace(req.VIN)),
		Year:                  req.Year,
		Make:                  strings.TrimSpace(req.Make),
		Model:                 strings.TrimSpace(req.Model),
		BodyStyle:             req.BodyStyle,
		BusType:               req.BusType,
		PassengerCapacity:     req.PassengerCapacity,
		WheelchairCapacity:    req.WheelchairCapacity,
		EngineMake:            req.EngineMake,
		EngineModel:           req.EngineModel,
		EngineType:            req.EngineType,
		Transmission:          req.Transmission,
		FuelType:              req.FuelType,
		Odometer:              req.Odometer,
		Condition:             req.Condition,
		ExteriorColor:         req.ExteriorColor,
		InteriorColor:         req.InteriorColor,
		TitleStatus:           req.TitleStatus,
		Features:              append([]string{}, req.Features...),
		SupplierID:            req.SupplierID,
		PurchaseDate:          req.PurchaseDate,
		PurchaseLocation:      req.PurchaseLocation,
		PurchaseInvoiceNumber: req.PurchaseInvoiceNumber,
		PreInspectionID:       req.PreInspectionID,
		AskingPrice:           req.AskingPrice,
		MinimumPrice:          req.MinimumPrice,
		Status:                req.Status,
		CurrentLocation:       req.CurrentLocation,
		USStockLocation:       strings.TrimSpace(req.USStockLocation),
		SaleCurrency:          money.USD,
		DepositCurrency:       money.USD,
		Description:           req.Description,
		InternalNotes:         req.InternalNotes,
		CreatedBy:             "system",
	}
	u.PreventiveMaintenanceCurrency = money.USD
	if op, ok := auth.OperatorFrom(ctx); ok && op.Email != "" {
		u.CreatedBy = op.Email
	}

	if !req.PurchasePriceUSD.Valid {
		fields["purchase_price_usd"] = "required"
	}
	costs := map[string]decimal.NullDecimal{
		"purchase_price_usd":              req.PurchasePriceUSD,
		"transport_to_stock_cost_usd":     req.TransportToStockCostUSD,
		"initial_reconditioning_cost_usd": req.InitialReconditioningCostUSD,
		"other_acquisition_costs_usd":     req.OtherAcquisitionCostsUSD,
		"asking_price":                    req.AskingPrice,
		"minimum_price":                   req.MinimumPrice,
	}
	for name, amount := range costs {
		if !money.NonNegative(amount) {
			fields[name] = "gte=0"
		}
	}
	u.PurchasePriceUSD = req.PurchasePriceUSD.Decimal
	u.TransportToStockCostUSD = req.TransportToStockCostUSD.Decimal
	u.InitialReconditioningCostUSD = req.InitialReconditioningCostUSD.Decimal
	u.OtherAcquisitionCostsUSD = req.OtherAcquisitionCostsUSD.Decimal
	u.recomputeCost()

	var ok bool
	if u.AskingCurrency, ok = money.ParseCurrency(req.AskingCurrency, money.USD); !ok {
		fields["asking_currency"] = "oneof=USD|MXN"
	}
	if u.MinimumCurrency, ok = money.ParseCurrency(req.MinimumCurrency, money.USD); !ok {
		fields["minimum_currency"] = "oneof=USD|MXN"
	}

	if u.Status == "" {
		u.Status = StatusInTransit
	}
	if !u.Status.Valid() {
		fields["status"] = "unknown status"
	} else if u.Status.RequiresSale() {
		fields["status"] = fmt.Sprintf("status %q requires a sold unit", u.Status)
	}
	if u.CurrentLocation == "" {
		u.CurrentLocation = LocationInTransit
	}
	if !u.CurrentLocation.Valid() {
		fields["current_location"] = "unknown location"
	}
	if u.USStockLocation != "" && u.CurrentLocation != LocationUSStock {
		fields["us_stock_location"] = fmt.Sprintf("only allowed while current_location is %q", LocationUSStock)
	}
	if u.PurchaseDate.IsZero() {
		u.PurchaseDate = s.today()
	}

	if len(fields) > 0 {
		return nil, apperr.InvalidFields(fields)
	}
	return u, nil
}

func (s *service) GetUnit(ctx context.Context, id uuid.UUID) (*Unit, error) {
	u, err := s.repo.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	u.derive(s.today())
	return u, nil
}

func (s *service) ListUnits(ctx context.Context, f Filter) ([]*Unit, error) {
	switch {
	case f.Limit < 0 || f.Offset < 0:
		return nil, apperr.Validation("limit and offset must not be negative")
	case f.Limit == 0:
		f.Limit = defaultListLimit
	case f.Limit > maxListLimit:
		f.Limit = maxListLimit
	}
	f.Make = strings.TrimSpace(f.Make)

	units, err := s.repo.ListUnits(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.deriveAll(units), nil
}

func (s *service) AllUnits(ctx context.Context) ([]*Unit, error) {
	units, err := s.repo.AllUnits(ctx)
	if err != nil {
		return nil, err
	}
	return s.deriveAll(units), nil
}

func (s *service) UpdateUnit(ctx context.Context, id uuid.UUID, patch Patch, expectedVersion *int) (*Unit, error) {
	if len(patch) == 0 {
		return nil, apperr.Validation("no fields to update")
	}
	env := patchEnv{Today: s.today(), WarrantyTerm: s.opts.WarrantyTermDays, Rate: s.currentRate(ctx)}

	u, err := s.repo.UpdateUnit(ctx, id, func(u *Unit) ([]string, error) {
		if expectedVersion != nil && *expectedVersion != u.Version {
			return nil, apperr.Conflict("unit %s was modified (version %d, expected %d)", id, u.Version, *expectedVersion)
		}
		return applyPatch(u, patch, env)
	})
	if err != nil {
		return nil, err
	}
	u.derive(env.Today)
	return u, nil
}

func (s *service) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

// ApplyLegCost adds a transport leg cost to the field it feeds, in that
// field's currency, converting at the unit's captured rate or the current one.
func (s *service) ApplyLegCost(ctx context.Context, id uuid.UUID, leg Leg, amount decimal.Decimal, currency money.Currency) (*Unit, error) {
	if amount.IsNegative() {
		return nil, apperr.InvalidFields(map[string]string{"actual_cost": "gte=0"})
	}
	if !currency.Valid() {
		return nil, apperr.InvalidFields(map[string]string{"cost_currency": "oneof=USD|MXN"})
	}
	current := s.currentRate(ctx)

	u, err := s.repo.UpdateUnit(ctx, id, func(u *Unit) ([]string, error) {
		rate := u.ExchangeRateUsed
		if !rate.Valid {
			rate = current
		}
		if currency == money.MXN && !rate.Valid {
			return nil, apperr.Validation("no USD/MXN exchange rate available to convert %s MXN", amount)
		}

		var patch Patch
		switch leg {
		case LegAcquisition:
			usd, _ := money.ToUSD(amount, currency, rate)
			patch = Patch{"transport_to_stock_cost_usd": rawDecimal(u.TransportToStockCostUSD.Add(usd))}
		case LegDelivery:
			mxn := amount
			if currency == money.USD {
				if !rate.Valid {
					return nil, apperr.Validation("no USD/MXN exchange rate available to convert %s USD", amount)
				}
				mxn = amount.Mul(rate.Decimal).Round(2)
			}
			patch = Patch{"transport_to_client_cost_mxn": rawDecimal(money.Sum(u.TransportToClientCostMXN).Add(mxn))}
		default:
			return nil, apperr.Validation("unknown plan type %q", leg)
		}
		return applyPatch(u, patch, patchEnv{Today: s.today(), WarrantyTerm: s.opts.WarrantyTermDays, Rate: rate})
	})
	if err != nil {
		return nil, err
	}
	u.derive(s.today())
	return u, nil
}

// ── helpers ──

func (s *service) deriveAll(units []*Unit) []*Unit {
	today := s.today()
	for _, u := range units {
		u.derive(today)
	}
	return units
}

// currentRate looks up the USD->MXN rate once per update. A missing rate is
// not an error; MXN amounts are then stored without a captured rate.
func (s *service) currentRate(ctx context.Context) decimal.NullDecimal {
	if s.rates == nil {
		return decimal.NullDecimal{}
	}
	rate, err := s.rates.CurrentRate(ctx, exchange.USDMXN)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			s.log.WithError(err).Warn("inventory: current exchange rate lookup failed")
		}
		return decimal.NullDecimal{}
	}
	return money.Null(rate.Rate)
}

func rawDecimal(d decimal.Decimal) []byte {
	return []byte(`"` + d.String() + `"`)
}
