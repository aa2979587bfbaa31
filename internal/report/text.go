package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"mpump/internal/ledger"
)

// WriteDailyText renders the shareable plaintext day sheet: per-fuel reading
// sales first, then income, expenses, cash in hand, and the credit/profit
// tail.
func WriteDailyText(w io.Writer, s ledger.DailySummary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Daily Report - %s\n", s.Date)
	b.WriteString(strings.Repeat("=", 32) + "\n")

	types := make([]string, 0, len(s.FuelSalesByType))
	for name := range s.FuelSalesByType {
		types = append(types, name)
	}
	sort.Strings(types)

	for _, name := range types {
		t := s.FuelSalesByType[name]
		fmt.Fprintf(&b, "%-12s %10.2f L  %12.2f\n", name, t.Liters, t.Amount)
	}
	if len(types) > 1 {
		fmt.Fprintf(&b, "%-12s %10.2f L  %12.2f\n", "Total", s.TotalLiters, s.FuelCashSales)
	}

	b.WriteString(strings.Repeat("-", 32) + "\n")
	fmt.Fprintf(&b, "%-12s %12.2f\n", "Income", s.OtherIncome)
	fmt.Fprintf(&b, "%-12s %12.2f\n", "Expenses", s.TotalExpenses)
	fmt.Fprintf(&b, "%-12s %12.2f\n", "Credit", s.CreditAmount)
	b.WriteString(strings.Repeat("-", 32) + "\n")
	fmt.Fprintf(&b, "%-12s %12.2f\n", "Cash in Hand", s.AdjustedCashSales)
	fmt.Fprintf(&b, "%-12s %12.2f\n", "Net Profit", s.NetProfit)

	_, err := io.WriteString(w, b.String())
	return err
}
