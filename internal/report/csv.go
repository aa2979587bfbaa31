// Package report renders summaries and record collections for export: CSV for
// spreadsheets, plaintext for sharing, PDF for printed day sheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"mpump/internal/core"
	"mpump/internal/ledger"
)

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(core.Finite(v), 'f', 2, 64)
}

// WriteSalesCSV emits fuel sale records, one row per dispensing transaction.
func WriteSalesCSV(w io.Writer, sales []core.FuelSale) error {
	header := []string{"Date", "Nozzle", "Fuel Type", "Start Reading", "End Reading", "Liters", "Rate", "Amount", "Payment"}
	rows := make([][]string, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, []string{
			string(s.Date), s.Nozzle, s.FuelType,
			num(s.StartReading), num(s.EndReading), num(s.Liters), num(s.Rate), num(s.Amount),
			string(s.Payment),
		})
	}
	return writeAll(w, header, rows)
}

// WriteCreditCSV emits credit sale records.
func WriteCreditCSV(w io.Writer, credits []core.CreditSale) error {
	header := []string{"Date", "Customer", "Vehicle", "Fuel Type", "Liters", "Rate", "Amount", "Due Date", "Status"}
	rows := make([][]string, 0, len(credits))
	for _, c := range credits {
		rows = append(rows, []string{
			string(c.Date), c.CustomerName, c.VehicleNumber, c.FuelType,
			num(c.Liters), num(c.Rate), num(c.Amount),
			string(c.DueDate), string(c.Status),
		})
	}
	return writeAll(w, header, rows)
}

// WriteEntriesCSV emits income and expense entries.
func WriteEntriesCSV(w io.Writer, entries []core.Entry) error {
	header := []string{"Date", "Kind", "Amount", "Description"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{string(e.Date), string(e.Kind), num(e.Amount), e.Description})
	}
	return writeAll(w, header, rows)
}

// WriteRangeSummaryCSV emits the metric/value summary for a date range.
func WriteRangeSummaryCSV(w io.Writer, s ledger.RangeSummary) error {
	header := []string{"Metric", "Value"}
	rows := [][]string{
		{"Period", fmt.Sprintf("%s to %s", s.Start, s.End)},
		{"Total Fuel Sales", num(s.TotalSalesAmount)},
		{"Total Fuel Liters", num(s.TotalSalesLiters)},
		{"Total Credit Sales", num(s.TotalCreditAmount)},
		{"Total Credit Liters", num(s.TotalCreditLiters)},
		{"Other Income", num(s.TotalIncome)},
		{"Total Expenses", num(s.TotalExpenses)},
		{"Net Profit", num(s.NetProfit)},
		{"Total Revenue", num(s.TotalRevenue)},
	}
	return writeAll(w, header, rows)
}
