package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Patch is a sparse set of field assignments keyed by JSON field name.
type Patch map[string]json.RawMessage

// patchable is the allow-list for partial updates. Identity, descriptors and
// every derived or system-managed column are absent on purpose.
var patchable = map[string]bool{
	"purchase_price_usd":              true,
	"transport_to_stock_cost_usd":     true,
	"initial_reconditioning_cost_usd": true,
	"other_acquisition_costs_usd":     true,
	"purchase_location":               true,
	"purchase_invoice_number":         true,
	"odometer":                        true,
	"features":                        true,

	"asking_price":     true,
	"asking_currency":  true,
	"minimum_price":    true,
	"minimum_currency": true,

	"status":                true,
	"current_location":      true,
	"us_stock_location":     true,
	"mexico_stock_location": true,

	"is_sold":            true,
	"sale_date":          true,
	"client_name":        true,
	"client_company":     true,
	"client_location":    true,
	"client_contact":     true,
	"client_email":       true,
	"client_phone":       true,
	"sale_price":         true,
	"sale_currency":      true,
	"deposit_amount":     true,
	"deposit_currency":   true,
	"deposit_date":       true,
	"payment_status":     true,
	"final_payment_date": true,

	"border_crossing":           true,
	"customs_broker":            true,
	"import_started_date":       true,
	"import_completed_date":     true,
	"import_cost_mxn":           true,
	"customs_cost_mxn":          true,
	"regulatory_cost_mxn":       true,
	"import_documents_complete": true,

	"preventive_maintenance_cost":     true,
	"preventive_maintenance_currency": true,
	"preventive_maintenance_date":     true,

	"delivery_date":                true,
	"delivery_method":              true,
	"transport_to_client_cost_mxn": true,

	"exchange_rate_used": true,

	"description":    true,
	"internal_notes": true,
}

var acquisitionCostFields = []string{
	"purchase_price_usd",
	"transport_to_stock_cost_usd",
	"initial_reconditioning_cost_usd",
	"other_acquisition_costs_usd",
}

var currencyFields = []string{
	"asking_currency", "minimum_currency", "sale_currency", "deposit_currency", "preventive_maintenance_currency",
}

// patchEnv carries the inputs a patch needs besides the unit itself.
type patchEnv struct {
	Today        types.Date
	WarrantyTerm int
	// Rate is the current USD->MXN rate, captured on first MXN write.
	Rate decimal.NullDecimal
}

// applyPatch merges p into u and enforces the update side-effect rules. It
// returns the columns that changed. On error u is left untouched.
func applyPatch(u *Unit, p Patch, env patchEnv) ([]string, error) {
	if len(p) == 0 {
		return nil, apperr.Validation("no fields to update")
	}

	next := *u
	next.Features = append([]string(nil), u.Features...)
	cols := next.columns()
	fields := map[string]string{}
	touched := map[string]bool{}

	for name, raw := range p {
		if !patchable[name] {
			if _, known := cols.Find(name); known || derivedFields[name] {
				fields[name] = "not updatable"
			} else {
				fields[name] = "unknown field"
			}
			continue
		}
		ptr, _ := cols.Find(name)
		if err := decodeInto(ptr, raw); err != nil {
			fields[name] = err.Error()
			continue
		}
		touched[name] = true
	}
	if len(fields) > 0 {
		return nil, apperr.InvalidFields(fields)
	}

	if err := enforceRules(&next, touched, env); err != nil {
		return nil, err
	}

	changed := sortedKeys(touched)
	*u = next
	return changed, nil
}

var derivedFields = map[string]bool{
	"days_in_inventory": true,
	"days_in_warranty":  true,
	"sale_price_usd":    true,
	"total_cost_usd":    true,
}

// decodeInto assigns a JSON value to a field pointer. null resets the field
// to its zero value, which the column types store as NULL or empty.
func decodeInto(ptr interface{}, raw json.RawMessage) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		v := reflect.ValueOf(ptr).Elem()
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	if err := json.Unmarshal(raw, ptr); err != nil {
		return fmt.Errorf("invalid value: %s", strings.TrimPrefix(err.Error(), "json: "))
	}
	return nil
}

// enforceRules applies the side effects and invariants of a partial update.
func enforceRules(u *Unit, touched map[string]bool, env patchEnv) error {
	fields := map[string]string{}

	// features is NOT NULL; null clears the list.
	if touched["features"] && u.Features == nil {
		u.Features = pq.StringArray{}
	}

	for _, name := range currencyFields {
		if !touched[name] {
			continue
		}
		ptr := currencyField(u, name)
		c, ok := money.ParseCurrency(string(*ptr), money.USD)
		if !ok {
			fields[name] = "oneof=USD|MXN"
			continue
		}
		*ptr = c
	}

	for name, amount := range u.amounts() {
		if touched[name] && !money.NonNegative(amount) {
			fields[name] = "gte=0"
		}
	}
	if touched["exchange_rate_used"] && u.ExchangeRateUsed.Valid && !u.ExchangeRateUsed.Decimal.IsPositive() {
		fields["exchange_rate_used"] = "gt=0"
	}
	if touched["odometer"] && u.Odometer != nil && *u.Odometer < 0 {
		fields["odometer"] = "gte=0"
	}

	if touched["status"] && !u.Status.Valid() {
		fields["status"] = "unknown status"
	}
	if touched["current_location"] && !u.CurrentLocation.Valid() {
		fields["current_location"] = "unknown location"
	}
	if len(fields) > 0 {
		return apperr.InvalidFields(fields)
	}

	if anyTouched(touched, acquisitionCostFields...) {
		u.recomputeCost()
		touched["cost_in_us_stock_usd"] = true
	}

	if touched["is_sold"] && u.IsSold && u.SaleDate.IsZero() {
		u.SaleDate = env.Today
		touched["sale_date"] = true
	}

	if touched["delivery_date"] {
		if u.DeliveryDate.IsZero() {
			u.WarrantyStatus = WarrantyNone
			u.WarrantyEndDate = types.Date{}
		} else {
			u.WarrantyStatus = WarrantyActive
			u.WarrantyEndDate = u.DeliveryDate.AddDays(env.WarrantyTerm)
		}
		touched["warranty_status"] = true
		touched["warranty_end_date"] = true
	}

	if anyTouched(touched, "current_location", "us_stock_location", "mexico_stock_location") {
		if err := reconcileLocation(u, touched); err != nil {
			return err
		}
	}

	if anyTouched(touched, "status", "is_sold") && u.Status.RequiresSale() && !u.IsSold {
		return apperr.InvalidFields(map[string]string{
			"is_sold": fmt.Sprintf("status %q requires is_sold=true", u.Status),
		})
	}

	if !u.ExchangeRateUsed.Valid && !touched["exchange_rate_used"] && env.Rate.Valid && u.mxnAmountTouched(touched) {
		u.ExchangeRateUsed = env.Rate
		touched["exchange_rate_used"] = true
	}
	return nil
}

// reconcileLocation allows only the fine-grained field matching the stock
// side and clears the other one.
func reconcileLocation(u *Unit, touched map[string]bool) error {
	us, mx := strings.TrimSpace(u.USStockLocation), strings.TrimSpace(u.MexicoStockLocation)
	allowUS := u.CurrentLocation == LocationUSStock
	allowMX := u.CurrentLocation == LocationMexicoStock

	fields := map[string]string{}
	if touched["us_stock_location"] && us != "" && !allowUS {
		fields["us_stock_location"] = fmt.Sprintf("only allowed while current_location is %q", LocationUSStock)
	}
	if touched["mexico_stock_location"] && mx != "" && !allowMX {
		fields["mexico_stock_location"] = fmt.Sprintf("only allowed while current_location is %q", LocationMexicoStock)
	}
	if len(fields) > 0 {
		return apperr.InvalidFields(fields)
	}

	u.USStockLocation, u.MexicoStockLocation = us, mx
	if !allowUS && u.USStockLocation != "" {
		u.USStockLocation = ""
		touched["us_stock_location"] = true
	}
	if !allowMX && u.MexicoStockLocation != "" {
		u.MexicoStockLocation = ""
		touched["mexico_stock_location"] = true
	}
	return nil
}

func (u *Unit) recomputeCost() {
	u.CostInUSStockUSD = u.PurchasePriceUSD.
		Add(u.TransportToStockCostUSD).
		Add(u.InitialReconditioningCostUSD).
		Add(u.OtherAcquisitionCostsUSD)
}

// amounts returns every money field that must never be negative.
func (u *Unit) amounts() map[string]decimal.NullDecimal {
	return map[string]decimal.NullDecimal{
		"purchase_price_usd":              money.Null(u.PurchasePriceUSD),
		"transport_to_stock_cost_usd":     money.Null(u.TransportToStockCostUSD),
		"initial_reconditioning_cost_usd": money.Null(u.InitialReconditioningCostUSD),
		"other_acquisition_costs_usd":     money.Null(u.OtherAcquisitionCostsUSD),
		"asking_price":                    u.AskingPrice,
		"minimum_price":                   u.MinimumPrice,
		"sale_price":                      u.SalePrice,
		"deposit_amount":                  u.DepositAmount,
		"import_cost_mxn":                 u.ImportCostMXN,
		"customs_cost_mxn":                u.CustomsCostMXN,
		"regulatory_cost_mxn":             u.RegulatoryCostMXN,
		"preventive_maintenance_cost":     u.PreventiveMaintenanceCost,
		"transport_to_client_cost_mxn":    u.TransportToClientCostMXN,
	}
}

// mxnAmountTouched reports whether the patch wrote a non-null amount
// denominated in pesos.
func (u *Unit) mxnAmountTouched(touched map[string]bool) bool {
	check := []struct {
		field    string
		amount   decimal.NullDecimal
		currency money.Currency
		ccyField string
	}{
		{"import_cost_mxn", u.ImportCostMXN, money.MXN, ""},
		{"customs_cost_mxn", u.CustomsCostMXN, money.MXN, ""},
		{"regulatory_cost_mxn", u.RegulatoryCostMXN, money.MXN, ""},
		{"transport_to_client_cost_mxn", u.TransportToClientCostMXN, money.MXN, ""},
		{"sale_price", u.SalePrice, u.SaleCurrency, "sale_currency"},
		{"deposit_amount", u.DepositAmount, u.DepositCurrency, "deposit_currency"},
		{"asking_price", u.AskingPrice, u.AskingCurrency, "asking_currency"},
		{"minimum_price", u.MinimumPrice, u.MinimumCurrency, "minimum_currency"},
		{"preventive_maintenance_cost", u.PreventiveMaintenanceCost, u.PreventiveMaintenanceCurrency, "preventive_maintenance_currency"},
	}
	for _, c := range check {
		written := touched[c.field] || (c.ccyField != "" && touched[c.ccyField])
		if written && c.amount.Valid && c.currency == money.MXN {
			return true
		}
	}
	return false
}

func currencyField(u *Unit, name string) *money.Currency {
	switch name {
	case "asking_currency":
		return &u.AskingCurrency
	case "minimum_currency":
		return &u.MinimumCurrency
	case "sale_currency":
		return &u.SaleCurrency
	case "deposit_currency":
		return &u.DepositCurrency
	default:
		return &u.PreventiveMaintenanceCurrency
	}
}

func anyTouched(touched map[string]bool, names ...string) bool {
	for _, n := range names {
		if touched[n] {
			return true
		}
	}
	return false
}

// sortedKeys returns the touched columns in a stable order for a targeted UPDATE.
func sortedKeys(touched map[string]bool) []string {
	out := make([]string, 0, len(touched))
	for name := range touched {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// derive fills the read-time fields from stored inputs. Expired warranties
// are reported lazily without being written back.
func (u *Unit) derive(today types.Date) {
	u.DaysInInventory = nil
	if !u.PurchaseDate.IsZero() {
		end := today
		if u.Status == StatusDelivered {
			switch {
			case !u.DeliveryDate.IsZero():
				end = u.DeliveryDate
			case !u.SaleDate.IsZero():
				end = u.SaleDate
			}
		}
		days := u.PurchaseDate.DaysUntil(end)
		if days < 0 {
			days = 0
		}
		u.DaysInInventory = &days
	}

	u.DaysInWarranty = nil
	if u.WarrantyStatus == WarrantyActive {
		if !u.WarrantyEndDate.IsZero() && today.After(u.WarrantyEndDate) {
			u.WarrantyStatus = WarrantyExpired
		} else if !u.DeliveryDate.IsZero() {
			days := u.DeliveryDate.DaysUntil(today)
			if days < 0 {
				days = 0
			}
			u.DaysInWarranty = &days
		}
	}

	u.SalePriceUSD = decimal.NullDecimal{}
	if u.SalePrice.Valid {
		if usd, ok := money.ToUSD(u.SalePrice.Decimal, u.SaleCurrency, u.ExchangeRateUsed); ok {
			u.SalePriceUSD = money.Null(usd)
		}
	}

	u.TotalCostUSD = u.totalCostUSD()
}

// totalCostUSD is the landed cost: US stock cost plus the peso-denominated
// import, transport and maintenance costs converted at the captured rate.
// It is null when peso costs exist but no rate was captured.
func (u *Unit) totalCostUSD() decimal.NullDecimal {
	total := u.CostInUSStockUSD
	mxn := money.Sum(u.ImportCostMXN, u.CustomsCostMXN, u.RegulatoryCostMXN, u.TransportToClientCostMXN)

	if u.PreventiveMaintenanceCost.Valid {
		if u.PreventiveMaintenanceCurrency == money.MXN {
			mxn = mxn.Add(u.PreventiveMaintenanceCost.Decimal)
		} else {
			total = total.Add(u.PreventiveMaintenanceCost.Decimal)
		}
	}
	if !mxn.IsZero() {
		usd, ok := money.ToUSD(mxn, money.MXN, u.ExchangeRateUsed)
		if !ok {
			return decimal.NullDecimal{}
		}
		total = total.Add(usd)
	}
	return money.Null(total)
}
