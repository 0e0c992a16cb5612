// Package export writes ledger contents as spreadsheets for the accountant.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

// Header is the first row of a year sheet.
var Header = []any{"Datum", "Umsatz brutto", "MWST", "Gutscheine", "Status"}

// WriteYear writes one sheet named after year with a row per day, sorted by
// date, and a totals row.
func WriteYear(w io.Writer, year int, days []daybook.DaySummary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprint(year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	sorted := make([]daybook.DaySummary, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
		return err
	}

	gross, vat, gift := decimal.Zero, decimal.Zero, decimal.Zero
	for i, d := range sorted {
		row := []any{
			d.Date,
			d.GrossRevenue.InexactFloat64(),
			d.VAT.InexactFloat64(),
			d.GiftCardRevenue.InexactFloat64(),
			string(d.Status),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
		gross = gross.Add(d.GrossRevenue)
		vat = vat.Add(d.VAT)
		gift = gift.Add(d.GiftCardRevenue)
	}

	totals := []any{"Total", gross.InexactFloat64(), vat.InexactFloat64(), gift.InexactFloat64()}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", len(sorted)+2), &totals); err != nil {
		return err
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("D%d", len(sorted)+2), money); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "E", 16); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
