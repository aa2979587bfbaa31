// Package ledger derives the daily financial picture of the outlet from the
// raw record collections. Everything here is a pure function over in-memory
// slices: no state, no I/O, safe to re-run on every request.
package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"mpump/internal/core"
)

const (
	ModeManual Mode = "manual"
	ModeMeter  Mode = "meter"
)

// Mode selects how a sale's quantity is entered: direct liters or a pair of
// cumulative meter readings.
type Mode string

// FuelTypeTotal accumulates liters and sale amount for one fuel type.
type FuelTypeTotal struct {
	Liters float64 `json:"liters"`
	Amount float64 `json:"amount"`
}

// DailySummary is the aggregate financial position for one operating day.
// AdjustedCashSales is the cash-in-hand metric; NetProfit is the
// revenue-recognition metric. They differ by exactly twice the credit amount,
// since credit sales count as revenue but remove cash.
type DailySummary struct {
	Date              core.Date                `json:"date"`
	FuelSalesByType   map[string]FuelTypeTotal `json:"fuel_sales_by_type"`
	TotalLiters       float64                  `json:"total_liters"`
	FuelCashSales     float64                  `json:"fuel_cash_sales"`
	CreditAmount      float64                  `json:"credit_amount"`
	CreditLiters      float64                  `json:"credit_liters"`
	OtherIncome       float64                  `json:"other_income"`
	TotalExpenses     float64                  `json:"total_expenses"`
	AdjustedCashSales float64                  `json:"adjusted_cash_sales"`
	TotalSales        float64                  `json:"total_sales"`
	TotalIncome       float64                  `json:"total_income"`
	NetProfit         float64                  `json:"net_profit"`
}

// RangeSummary holds date-range totals for exported reports.
type RangeSummary struct {
	Start             core.Date `json:"start"`
	End               core.Date `json:"end"`
	TotalSalesAmount  float64   `json:"total_sales_amount"`
	TotalSalesLiters  float64   `json:"total_sales_liters"`
	TotalCreditAmount float64   `json:"total_credit_amount"`
	TotalCreditLiters float64   `json:"total_credit_liters"`
	TotalIncome       float64   `json:"total_income"`
	TotalExpenses     float64   `json:"total_expenses"`
	NetProfit         float64   `json:"net_profit"`
	TotalRevenue      float64   `json:"total_revenue"`
}

// Summarize filters the four collections to records whose date equals the
// target exactly and folds them into a DailySummary.
//
// FuelCashSales sums every fuel sale amount regardless of payment type; card
// payments are not excluded. Credit-sold fuel must be recorded only as a
// CreditSale, never doubled as a FuelSale, for the reconciliation to hold;
// that discipline belongs to the caller.
func Summarize(date core.Date, sales []core.FuelSale, credits []core.CreditSale, income, expenses []core.Entry) DailySummary {
	s := DailySummary{
		Date:            date,
		FuelSalesByType: make(map[string]FuelTypeTotal),
	}

	for _, sale := range sales {
		if sale.Date != date {
			continue
		}
		liters := core.Finite(sale.Liters)
		amount := core.Finite(sale.Amount)
		t := s.FuelSalesByType[sale.FuelType]
		t.Liters += liters
		t.Amount += amount
		s.FuelSalesByType[sale.FuelType] = t
		s.TotalLiters += liters
		s.FuelCashSales += amount
	}

	for _, credit := range credits {
		if credit.Date != date {
			continue
		}
		s.CreditAmount += core.Finite(credit.Amount)
		s.CreditLiters += core.Finite(credit.Liters)
	}

	for _, e := range income {
		if e.Date != date {
			continue
		}
		s.OtherIncome += core.Finite(e.Amount)
	}

	for _, e := range expenses {
		if e.Date != date {
			continue
		}
		s.TotalExpenses += core.Finite(e.Amount)
	}

	// Cash position: credit sales produce revenue but no cash, so they are
	// subtracted back out. Profit recognizes them as revenue anyway.
	s.AdjustedCashSales = s.FuelCashSales + s.OtherIncome - s.TotalExpenses - s.CreditAmount
	s.TotalSales = s.FuelCashSales + s.CreditAmount
	s.TotalIncome = s.FuelCashSales + s.OtherIncome
	s.NetProfit = s.FuelCashSales + s.CreditAmount + s.OtherIncome - s.TotalExpenses

	return s
}

// SummarizeRange folds all records with start <= date <= end into report
// totals. Dates in YYYY-MM-DD form order lexicographically, so plain string
// comparison is a correct range predicate.
func SummarizeRange(start, end core.Date, sales []core.FuelSale, credits []core.CreditSale, income, expenses []core.Entry) RangeSummary {
	inRange := func(d core.Date) bool {
		return d >= start && d <= end
	}

	s := RangeSummary{Start: start, End: end}

	for _, sale := range sales {
		if !inRange(sale.Date) {
			continue
		}
		s.TotalSalesAmount += core.Finite(sale.Amount)
		s.TotalSalesLiters += core.Finite(sale.Liters)
	}
	for _, credit := range credits {
		if !inRange(credit.Date) {
			continue
		}
		s.TotalCreditAmount += core.Finite(credit.Amount)
		s.TotalCreditLiters += core.Finite(credit.Liters)
	}
	for _, e := range income {
		if inRange(e.Date) {
			s.TotalIncome += core.Finite(e.Amount)
		}
	}
	for _, e := range expenses {
		if inRange(e.Date) {
			s.TotalExpenses += core.Finite(e.Amount)
		}
	}

	s.NetProfit = s.TotalSalesAmount + s.TotalIncome - s.TotalExpenses
	s.TotalRevenue = s.TotalSalesAmount + s.TotalCreditAmount + s.TotalIncome

	return s
}

// DeriveQuantity resolves the liters of a single sale entry. Unlike
// aggregation, entry validation is strict: blank or unparseable input is
// rejected here so it never becomes a record.
func DeriveQuantity(mode Mode, manualLiters, startReading, endReading string) (float64, error) {
	switch mode {
	case ModeManual:
		liters, ok := parseNumber(manualLiters)
		if !ok {
			return 0, fmt.Errorf("manual liters: %w", core.ErrMissingInput)
		}
		return liters, nil

	case ModeMeter:
		start, ok := parseNumber(startReading)
		if !ok {
			return 0, fmt.Errorf("start reading: %w", core.ErrMissingInput)
		}
		end, ok := parseNumber(endReading)
		if !ok {
			return 0, fmt.Errorf("end reading: %w", core.ErrMissingInput)
		}
		if end <= start {
			return 0, core.ErrInvalidReading
		}
		return end - start, nil

	default:
		return 0, fmt.Errorf("quantity mode %q: %w", mode, core.ErrMissingInput)
	}
}

// CarryForwardStartReading seeds a nozzle's next start reading from the
// previous calendar day's highest end reading, so meter continuity holds
// without the operator remembering yesterday's closing value. Returns 0 when
// the nozzle has no record on the previous day.
func CarryForwardStartReading(nozzle string, date core.Date, prior []core.FuelSale) float64 {
	prev := date.Prev()
	var max float64
	for _, sale := range prior {
		if sale.Date != prev || sale.Nozzle != nozzle {
			continue
		}
		if end := core.Finite(sale.EndReading); end > max {
			max = end
		}
	}
	return max
}

// Power and Premium can exist at the same outlet, so a single-letter prefix
// would collide.
var nozzlePrefixes = map[string]string{
	"power":   "PO",
	"premium": "PR",
}

// NozzlePrefix returns the identifier prefix for a fuel type.
func NozzlePrefix(fuelType string) string {
	if p, ok := nozzlePrefixes[strings.ToLower(fuelType)]; ok {
		return p
	}
	for _, r := range fuelType {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// GenerateNozzleIDs derives the stable nozzle identifiers for a fuel type.
// IDs are never stored; they are always recomputed from configuration.
func GenerateNozzleIDs(fuelType string, nozzleCount int) []string {
	prefix := NozzlePrefix(fuelType)
	ids := make([]string, 0, nozzleCount)
	for i := 1; i <= nozzleCount; i++ {
		ids = append(ids, prefix+strconv.Itoa(i))
	}
	return ids
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts "NaN" and "Inf"; a reading that is not a finite
	// number must never become a record.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
