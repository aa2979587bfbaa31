package core

import "time"

// SnapshotVersion tags the backup format so a future restore path can detect
// older files.
const SnapshotVersion = "1.0"

// Snapshot is the full exportable state of the store. The field layout is the
// backup file format: income and expense entries travel as separate lists.
type Snapshot struct {
	SalesData    []FuelSale   `json:"sales_data"`
	CreditData   []CreditSale `json:"credit_data"`
	IncomeData   []Entry      `json:"income_data"`
	ExpenseData  []Entry      `json:"expense_data"`
	FuelSettings FuelConfig   `json:"fuel_settings"`
	ExportDate   time.Time    `json:"export_date"`
	Version      string       `json:"version"`
}

// SplitEntries partitions a combined entry list into income and expense
// slices, preserving order.
func SplitEntries(entries []Entry) (income, expenses []Entry) {
	for _, e := range entries {
		switch e.Kind {
		case KindIncome:
			income = append(income, e)
		case KindExpense:
			expenses = append(expenses, e)
		}
	}
	return income, expenses
}
