package inventory

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/busesamerica/buses-america-inventory/internal/platform/money"
	"github.com/busesamerica/buses-america-inventory/internal/platform/types"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var testToday = types.NewDate(2024, time.July, 10)

func env() patchEnv { return patchEnv{Today: testToday, WarrantyTerm: 90} }

// patchOf builds a patch from alternating field names and raw JSON values.
func patchOf(kv ...string) Patch {
	p := Patch{}
	for i := 0; i+1 < len(kv); i += 2 {
		p[kv[i]] = json.RawMessage(kv[i+1])
	}
	return p
}

func baseUnit() *Unit {
	u := &Unit{
		StockNumber:                  "BA-1001",
		VIN:                          "1BAKGCPA0AF123456",
		PurchaseDate:                 types.NewDate(2024, time.July, 1),
		PurchasePriceUSD:             decimal.NewFromInt(50000),
		TransportToStockCostUSD:      decimal.NewFromInt(800),
		InitialReconditioningCostUSD: decimal.NewFromInt(2000),
		AskingPrice:                  money.Null(decimal.NewFromInt(100)),
		AskingCurrency:               money.USD,
		MinimumCurrency:              money.USD,
		SaleCurrency:                 money.USD,
		DepositCurrency:              money.USD,
		Status:                       StatusInStockUS,
		CurrentLocation:              LocationUSStock,
		USStockLocation:              "Laredo yard B",
	}
	u.PreventiveMaintenanceCurrency = money.USD
	u.recomputeCost()
	return u
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	e, ok := err.(*apperr.Error)
	if !ok || e.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	return e.Fields
}

func TestApplyPatchRejectsEmptyAndUnknown(t *testing.T) {
	u := baseUnit()
	if _, err := applyPatch(u, Patch{}, env()); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("empty patch: %v", err)
	}

	fields := fieldsOf(t, func() error {
		_, err := applyPatch(u, patchOf(
			"colour", `"red"`,
			"vin", `"X"`,
			"cost_in_us_stock_usd", `1`,
			"total_cost_usd", `1`,
		), env())
		return err
	}())
	want := map[string]string{
		"colour":               "unknown field",
		"vin":                  "not updatable",
		"cost_in_us_stock_usd": "not updatable",
		"total_cost_usd":       "not updatable",
	}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("fields = %v", fields)
	}
}

func TestApplyPatchLeavesOtherFieldsAlone(t *testing.T) {
	u := baseUnit()
	touched, err := applyPatch(u, patchOf("status", `"Import/Customs Processing"`), env())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(touched, []string{"status"}) {
		t.Fatalf("touched = %v", touched)
	}
	if !u.AskingPrice.Decimal.Equal(decimal.NewFromInt(100)) || u.Status != StatusImportProcessing {
		t.Fatalf("asking=%s status=%s", u.AskingPrice.Decimal, u.Status)
	}
}

func TestApplyPatchRecomputesCost(t *testing.T) {
	u := baseUnit()
	touched, err := applyPatch(u, patchOf("other_acquisition_costs_usd", `"199.50"`), env())
	if err != nil {
		t.Fatal(err)
	}
	if !u.CostInUSStockUSD.Equal(decimal.RequireFromString("52999.50")) {
		t.Fatalf("cost = %s", u.CostInUSStockUSD)
	}
	if !reflect.DeepEqual(touched, []string{"cost_in_us_stock_usd", "other_acquisition_costs_usd"}) {
		t.Fatalf("touched = %v", touched)
	}

	// null resets a component to zero.
	if _, err := applyPatch(u, patchOf("transport_to_stock_cost_usd", `null`), env()); err != nil {
		t.Fatal(err)
	}
	if !u.CostInUSStockUSD.Equal(decimal.RequireFromString("52199.50")) {
		t.Fatalf("cost after reset = %s", u.CostInUSStockUSD)
	}
}

func TestApplyPatchIsAtomic(t *testing.T) {
	u := baseUnit()
	before := *u
	_, err := applyPatch(u, patchOf(
		"status", `"In Stock (Mexico)"`,
		"sale_price", `-5`,
	), env())
	if fieldsOf(t, err)["sale_price"] != "gte=0" {
		t.Fatalf("err = %v", err)
	}
	if u.Status != before.Status {
		t.Fatal("unit changed despite failed patch")
	}
}

func TestApplyPatchValidatesValues(t *testing.T) {
	tests := []struct {
		name  string
		patch Patch
		field string
	}{
		{"unknown status", patchOf("status", `"Lost"`), "status"},
		{"unknown location", patchOf("current_location", `"Moon"`), "current_location"},
		{"unknown currency", patchOf("sale_currency", `"EUR"`), "sale_currency"},
		{"negative mxn", patchOf("import_cost_mxn", `-1`), "import_cost_mxn"},
		{"negative odometer", patchOf("odometer", `-10`), "odometer"},
		{"zero rate", patchOf("exchange_rate_used", `0`), "exchange_rate_used"},
		{"wrong type", patchOf("is_sold", `"yes"`), "is_sold"},
		{"bad date", patchOf("sale_date", `"10/07/2024"`), "sale_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := applyPatch(baseUnit(), tt.patch, env())
			if _, ok := fieldsOf(t, err)[tt.field]; !ok {
				t.Fatalf("missing %s in %v", tt.field, err)
			}
		})
	}
}

func TestApplyPatchNormalizesCurrency(t *testing.T) {
	u := baseUnit()
	if _, err := applyPatch(u, patchOf("sale_currency", `" mxn"`), env()); err != nil {
		t.Fatal(err)
	}
	if u.SaleCurrency != money.MXN {
		t.Fatalf("currency = %q", u.SaleCurrency)
	}
}

func TestApplyPatchSaleStampsDate(t *testing.T) {
	u := baseUnit()
	if _, err := applyPatch(u, patchOf("asking_price", `90000`), env()); err != nil {
		t.Fatal(err)
	}
	if u.IsSold {
		t.Fatal("price change must not mark the unit sold")
	}

	touched, err := applyPatch(u, patchOf("is_sold", `true`, "client_name", `"Transportes del Norte"`), env())
	if err != nil {
		t.Fatal(err)
	}
	if !u.IsSold || u.SaleDate != testToday {
		t.Fatalf("sold=%v sale_date=%s", u.IsSold, u.SaleDate)
	}
	if !reflect.DeepEqual(touched, []string{"client_name", "is_sold", "sale_date"}) {
		t.Fatalf("touched = %v", touched)
	}

	v := baseUnit()
	if _, err := applyPatch(v, patchOf("is_sold", `true`, "sale_date", `"2024-06-30"`), env()); err != nil {
		t.Fatal(err)
	}
	if v.SaleDate != types.NewDate(2024, time.June, 30) {
		t.Fatalf("explicit sale_date overwritten: %s", v.SaleDate)
	}
}

func TestApplyPatchStatusRequiresSale(t *testing.T) {
	u := baseUnit()
	_, err := applyPatch(u, patchOf("status", `"Delivered"`), env())
	if _, ok := fieldsOf(t, err)["is_sold"]; !ok {
		t.Fatalf("err = %v", err)
	}

	if _, err := applyPatch(u, patchOf("status", `"Sold - Pending Delivery"`, "is_sold", `true`), env()); err != nil {
		t.Fatalf("sold together with status: %v", err)
	}

	// Un-selling a unit awaiting delivery is rejected as well.
	if _, err := applyPatch(u, patchOf("is_sold", `false`), env()); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unsell: %v", err)
	}
}

func TestApplyPatchWarrantyFollowsDelivery(t *testing.T) {
	u := baseUnit()
	if _, err := applyPatch(u, patchOf("delivery_date", `"2024-07-05"`), env()); err != nil {
		t.Fatal(err)
	}
	if u.WarrantyStatus != WarrantyActive || u.WarrantyEndDate != types.NewDate(2024, time.October, 3) {
		t.Fatalf("warranty = %s until %s", u.WarrantyStatus, u.WarrantyEndDate)
	}

	if _, err := applyPatch(u, patchOf("delivery_date", `null`), env()); err != nil {
		t.Fatal(err)
	}
	if u.WarrantyStatus != WarrantyNone || !u.WarrantyEndDate.IsZero() {
		t.Fatalf("warranty not cleared: %s until %s", u.WarrantyStatus, u.WarrantyEndDate)
	}
}

func TestApplyPatchLocationClearing(t *testing.T) {
	u := baseUnit()
	touched, err := applyPatch(u, patchOf(
		"current_location", `"Mexico Stock"`,
		"mexico_stock_location", `"Monterrey lot 3"`,
	), env())
	if err != nil {
		t.Fatal(err)
	}
	if u.USStockLocation != "" || u.MexicoStockLocation != "Monterrey lot 3" {
		t.Fatalf("us=%q mx=%q", u.USStockLocation, u.MexicoStockLocation)
	}
	if !reflect.DeepEqual(touched, []string{"current_location", "mexico_stock_location", "us_stock_location"}) {
		t.Fatalf("touched = %v", touched)
	}

	_, err = applyPatch(u, patchOf("us_stock_location", `"Laredo"`), env())
	if _, ok := fieldsOf(t, err)["us_stock_location"]; !ok {
		t.Fatalf("err = %v", err)
	}

	if _, err := applyPatch(u, patchOf("current_location", `"Client"`), env()); err != nil {
		t.Fatal(err)
	}
	if u.MexicoStockLocation != "" {
		t.Fatal("mexico location kept after leaving stock")
	}
}

func TestApplyPatchCapturesRateOnce(t *testing.T) {
	e := env()
	e.Rate = money.Null(decimal.RequireFromString("18.25"))

	u := baseUnit()
	if _, err := applyPatch(u, patchOf("odometer", `120000`), e); err != nil {
		t.Fatal(err)
	}
	if u.ExchangeRateUsed.Valid {
		t.Fatal("rate captured without an MXN amount")
	}

	touched, err := applyPatch(u, patchOf("customs_cost_mxn", `"15000"`), e)
	if err != nil {
		t.Fatal(err)
	}
	if !u.ExchangeRateUsed.Decimal.Equal(decimal.RequireFromString("18.25")) {
		t.Fatalf("rate = %v", u.ExchangeRateUsed)
	}
	if !reflect.DeepEqual(touched, []string{"customs_cost_mxn", "exchange_rate_used"}) {
		t.Fatalf("touched = %v", touched)
	}

	e.Rate = money.Null(decimal.RequireFromString("19.00"))
	if _, err := applyPatch(u, patchOf("import_cost_mxn", `"4000"`), e); err != nil {
		t.Fatal(err)
	}
	if !u.ExchangeRateUsed.Decimal.Equal(decimal.RequireFromString("18.25")) {
		t.Fatalf("rate re-captured: %v", u.ExchangeRateUsed)
	}

	v := baseUnit()
	if _, err := applyPatch(v, patchOf("sale_price", `"1800000"`, "sale_currency", `"MXN"`), e); err != nil {
		t.Fatal(err)
	}
	if !v.ExchangeRateUsed.Decimal.Equal(decimal.RequireFromString("19")) {
		t.Fatalf("sale in MXN did not capture rate: %v", v.ExchangeRateUsed)
	}
}

func TestDeriveDaysInInventory(t *testing.T) {
	u := baseUnit()
	u.derive(testToday)
	if u.DaysInInventory == nil || *u.DaysInInventory != 9 {
		t.Fatalf("days = %v", u.DaysInInventory)
	}

	u.IsSold = true
	u.Status = StatusDelivered
	u.DeliveryDate = types.NewDate(2024, time.July, 5)
	u.derive(testToday)
	if *u.DaysInInventory != 4 {
		t.Fatalf("delivered days = %d", *u.DaysInInventory)
	}

	u.PurchaseDate = types.Date{}
	u.derive(testToday)
	if u.DaysInInventory != nil {
		t.Fatal("days without purchase date")
	}
}

func TestDeriveWarranty(t *testing.T) {
	active := baseUnit()
	active.DeliveryDate = types.NewDate(2024, time.July, 1)
	active.WarrantyStatus = WarrantyActive
	active.WarrantyEndDate = active.DeliveryDate.AddDays(90)
	active.derive(testToday)
	if active.WarrantyStatus != WarrantyActive || active.DaysInWarranty == nil || *active.DaysInWarranty != 9 {
		t.Fatalf("active: %s %v", active.WarrantyStatus, active.DaysInWarranty)
	}

	expired := baseUnit()
	expired.DeliveryDate = types.NewDate(2024, time.January, 2)
	expired.WarrantyStatus = WarrantyActive
	expired.WarrantyEndDate = expired.DeliveryDate.AddDays(90)
	expired.derive(testToday)
	if expired.WarrantyStatus != WarrantyExpired || expired.DaysInWarranty != nil {
		t.Fatalf("expired: %s %v", expired.WarrantyStatus, expired.DaysInWarranty)
	}

	// The last covered day is still active.
	edge := baseUnit()
	edge.DeliveryDate = testToday.AddDays(-90)
	edge.WarrantyStatus = WarrantyActive
	edge.WarrantyEndDate = testToday
	edge.derive(testToday)
	if edge.WarrantyStatus != WarrantyActive || *edge.DaysInWarranty != 90 {
		t.Fatalf("edge: %s %v", edge.WarrantyStatus, edge.DaysInWarranty)
	}
}

func TestDeriveMoney(t *testing.T) {
	u := baseUnit()
	u.SalePrice = money.Null(decimal.NewFromInt(1800000))
	u.SaleCurrency = money.MXN
	u.ImportCostMXN = money.Null(decimal.NewFromInt(36000))
	u.derive(testToday)
	if u.SalePriceUSD.Valid || u.TotalCostUSD.Valid {
		t.Fatalf("converted without a rate: %v %v", u.SalePriceUSD, u.TotalCostUSD)
	}

	u.ExchangeRateUsed = money.Null(decimal.NewFromInt(18))
	u.PreventiveMaintenanceCost = money.Null(decimal.NewFromInt(500))
	u.derive(testToday)
	if !u.SalePriceUSD.Decimal.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("sale usd = %s", u.SalePriceUSD.Decimal)
	}
	// 52800 + 36000/18 + 500
	if !u.TotalCostUSD.Decimal.Equal(decimal.NewFromInt(55300)) {
		t.Fatalf("total cost = %s", u.TotalCostUSD.Decimal)
	}
}

func TestApplyPatchNullFeaturesClearsList(t *testing.T) {
	u := baseUnit()
	u.Features = pq.StringArray{"A/C", "wheelchair lift"}

	touched, err := applyPatch(u, patchOf("features", `null`), env())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(touched, []string{"features"}) {
		t.Fatalf("touched = %v", touched)
	}
	if u.Features == nil || len(u.Features) != 0 {
		t.Fatalf("features = %#v", u.Features)
	}
	v, err := u.Features.Value()
	if err != nil || v != "{}" {
		t.Fatalf("stored value = %#v, %v", v, err)
	}
}
