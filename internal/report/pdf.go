package report

import (
	"fmt"
	"sort"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"mpump/internal/core"
	"mpump/internal/ledger"
)

func money(v float64) string {
	return fmt.Sprintf("%.2f", core.Finite(v))
}

// DailyPDF renders the printable day sheet: per-fuel sales table, the credit
// and income/expense block, and the cash-in-hand and profit totals.
func DailyPDF(s ledger.DailySummary) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Daily Report", props.Text{
			Style: fontstyle.Bold,
			Size:  16,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, fmt.Sprintf("Date: %s", s.Date), props.Text{Size: 10}),
	)

	m.AddRow(10,
		text.NewCol(6, "Fuel Type", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Liters", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(3, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	types := make([]string, 0, len(s.FuelSalesByType))
	for name := range s.FuelSalesByType {
		types = append(types, name)
	}
	sort.Strings(types)

	for _, name := range types {
		t := s.FuelSalesByType[name]
		m.AddRow(8,
			text.NewCol(6, name, props.Text{Size: 9}),
			text.NewCol(3, money(t.Liters), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(3, money(t.Amount), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(8,
		text.NewCol(6, "Total Fuel Sales", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, money(s.TotalLiters), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(3, money(s.FuelCashSales), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	addMetric := func(label string, value float64, bold bool) {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		m.AddRow(8,
			col.New(4),
			text.NewCol(5, label, props.Text{Style: style, Size: 9}),
			text.NewCol(3, money(value), props.Text{Style: style, Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(4, col.New(12))
	addMetric("Credit Sales", s.CreditAmount, false)
	addMetric("Other Income", s.OtherIncome, false)
	addMetric("Expenses", s.TotalExpenses, false)
	addMetric("Cash in Hand", s.AdjustedCashSales, true)
	addMetric("Net Profit", s.NetProfit, true)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate daily pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// RangePDF renders the report-period totals as a metric table.
func RangePDF(s ledger.RangeSummary) ([]byte, error) {
	cfg := config.NewBuilder().Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Period Report", props.Text{
			Style: fontstyle.Bold,
			Size:  16,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, fmt.Sprintf("Period: %s to %s", s.Start, s.End), props.Text{Size: 10}),
	)

	rows := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Total Fuel Sales", s.TotalSalesAmount, false},
		{"Total Fuel Liters", s.TotalSalesLiters, false},
		{"Total Credit Sales", s.TotalCreditAmount, false},
		{"Total Credit Liters", s.TotalCreditLiters, false},
		{"Other Income", s.TotalIncome, false},
		{"Total Expenses", s.TotalExpenses, false},
		{"Net Profit", s.NetProfit, true},
		{"Total Revenue", s.TotalRevenue, true},
	}
	for _, r := range rows {
		style := fontstyle.Normal
		if r.bold {
			style = fontstyle.Bold
		}
		m.AddRow(8,
			text.NewCol(8, r.label, props.Text{Style: style, Size: 9}),
			text.NewCol(4, money(r.value), props.Text{Style: style, Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate period pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
