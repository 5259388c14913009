// Package report builds read-only projections over the live inventory.
package report

import (
	"sort"

	"github.com/busesamerica/buses-america-inventory/internal/modules/inventory"
	"github.com/shopspring/decimal"
)

// Dashboard is the headline summary of the fleet.
type Dashboard struct {
	TotalUnits          int             `json:"total_units"`
	USInventory         int             `json:"us_inventory"`
	MexicoInventory     int             `json:"mexico_inventory"`
	AvailableForSale    int             `json:"available_for_sale"`
	SoldPendingDelivery int             `json:"sold_pending_delivery"`
	Delivered           int             `json:"delivered"`
	UnderWarranty       int             `json:"under_warranty"`
	USInventoryValue    decimal.Decimal `json:"us_inventory_value"`
	AvgDaysInInventory  decimal.Decimal `json:"avg_days_in_inventory"`
}

// Kind names one of the unit list reports.
type Kind string

const (
	KindUSInventory     Kind = "us-inventory"
	KindMexicoInventory Kind = "mexico-inventory"
	KindSoldPending     Kind = "sold-pending"
	KindWarrantyActive  Kind = "warranty-active"
)

var kinds = map[Kind]struct {
	title string
	keep  func(u *inventory.Unit) bool
}{
	KindUSInventory:     {"US Inventory", func(u *inventory.Unit) bool { return u.CurrentLocation == inventory.LocationUSStock }},
	KindMexicoInventory: {"Mexico Inventory", func(u *inventory.Unit) bool { return u.CurrentLocation == inventory.LocationMexicoStock }},
	KindSoldPending:     {"Sold Pending Delivery", soldPending},
	KindWarrantyActive:  {"Active Warranties", func(u *inventory.Unit) bool { return u.WarrantyStatus == inventory.WarrantyActive }},
}

func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

func soldPending(u *inventory.Unit) bool {
	return u.IsSold && u.Status != inventory.StatusDelivered
}

// summarize expects units with read-time fields already derived.
func summarize(units []*inventory.Unit) *Dashboard {
	d := &Dashboard{USInventoryValue: decimal.Zero, AvgDaysInInventory: decimal.Zero}
	var daysTotal, daysCount int64
	for _, u := range units {
		d.TotalUnits++
		switch u.CurrentLocation {
		case inventory.LocationUSStock:
			d.USInventory++
			d.USInventoryValue = d.USInventoryValue.Add(u.CostInUSStockUSD)
		case inventory.LocationMexicoStock:
			d.MexicoInventory++
		}
		if !u.IsSold {
			d.AvailableForSale++
		}
		if soldPending(u) {
			d.SoldPendingDelivery++
		}
		if u.Status == inventory.StatusDelivered {
			d.Delivered++
		} else if u.DaysInInventory != nil {
			daysTotal += int64(*u.DaysInInventory)
			daysCount++
		}
		if u.WarrantyStatus == inventory.WarrantyActive {
			d.UnderWarranty++
		}
	}
	if daysCount > 0 {
		d.AvgDaysInInventory = decimal.NewFromInt(daysTotal).Div(decimal.NewFromInt(daysCount)).Round(1)
	}
	return d
}

// project keeps the units matching kind. The result is never nil.
func project(units []*inventory.Unit, kind Kind) []*inventory.Unit {
	keep := kinds[kind].keep
	out := make([]*inventory.Unit, 0, len(units))
	for _, u := range units {
		if keep(u) {
			out = append(out, u)
		}
	}
	switch kind {
	case KindWarrantyActive:
		sort.SliceStable(out, func(i, j int) bool { return out[i].WarrantyEndDate.Before(out[j].WarrantyEndDate) })
	case KindSoldPending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].SaleDate.Before(out[j].SaleDate) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return daysOf(out[i]) > daysOf(out[j]) })
	}
	return out
}

func daysOf(u *inventory.Unit) int {
	if u.DaysInInventory == nil {
		return -1
	}
	return *u.DaysInInventory
}
