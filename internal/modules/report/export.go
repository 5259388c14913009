package report

import (
	"io"

	"github.com/busesamerica/buses-america-inventory/internal/modules/inventory"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []interface{}{
	"Stock Number", "VIN", "Year", "Make", "Model", "Status", "Location", "Yard",
	"Days In Inventory", "Cost In US Stock (USD)", "Asking Price", "Asking Currency",
	"Client", "Sale Date", "Warranty End",
}

// writeXLSX renders units as a single-sheet workbook.
func writeXLSX(w io.Writer, sheet string, units []*inventory.Unit) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeaders); err != nil {
		return err
	}
	for i, u := range units {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			u.StockNumber, u.VIN, u.Year, u.Make, u.Model, string(u.Status), string(u.CurrentLocation),
			yard(u), intCell(u.DaysInInventory), u.CostInUSStockUSD.InexactFloat64(), amountCell(u.AskingPrice),
			string(u.AskingCurrency), u.ClientName, u.SaleDate.String(), u.WarrantyEndDate.String(),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func yard(u *inventory.Unit) string {
	if u.USStockLocation != "" {
		return u.USStockLocation
	}
	return u.MexicoStockLocation
}

func intCell(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func amountCell(a decimal.NullDecimal) interface{} {
	if !a.Valid {
		return ""
	}
	return a.Decimal.InexactFloat64()
}
