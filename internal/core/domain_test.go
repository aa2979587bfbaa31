package core

import (
	"errors"
	"math"
	"testing"
)

func TestDateValidate(t *testing.T) {
	tests := []struct {
		name    string
		date    Date
		wantErr bool
	}{
		{"valid", "2024-03-01", false},
		{"leap day", "2024-02-29", false},
		{"empty", "", true},
		{"wrong format", "01-03-2024", true},
		{"not a date", "yesterday", true},
		{"month out of range", "2024-13-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.date.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
		})
	}
}

func TestDatePrev(t *testing.T) {
	tests := []struct {
		date Date
		want Date
	}{
		{"2024-03-02", "2024-03-01"},
		{"2024-03-01", "2024-02-29"},
		{"2024-01-01", "2023-12-31"},
		{"2023-03-01", "2023-02-28"},
	}

	for _, tt := range tests {
		if got := tt.date.Prev(); got != tt.want {
			t.Errorf("%q.Prev() = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestFinite(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"normal", 42.5, 42.5},
		{"zero", 0, 0},
		{"negative", -3, -3},
		{"nan", math.NaN(), 0},
		{"positive inf", math.Inf(1), 0},
		{"negative inf", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Finite(tt.in); got != tt.want {
				t.Errorf("Finite(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func validSale() FuelSale {
	return FuelSale{
		Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol",
		StartReading: 100, EndReading: 150, Rate: 102.50,
		Liters: 50, Amount: 5125, Payment: PaymentCash,
	}
}

func TestFuelSaleValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*FuelSale)
		wantErr error
	}{
		{"valid", func(s *FuelSale) {}, nil},
		{"card payment", func(s *FuelSale) { s.Payment = PaymentCard }, nil},
		{"bad date", func(s *FuelSale) { s.Date = "notadate" }, ErrInvalidDate},
		{"blank nozzle", func(s *FuelSale) { s.Nozzle = "  " }, ErrEmptyNozzle},
		{"blank fuel type", func(s *FuelSale) { s.FuelType = "" }, ErrEmptyFuelType},
		{"equal readings", func(s *FuelSale) { s.EndReading = s.StartReading }, ErrInvalidReading},
		{"reversed readings", func(s *FuelSale) { s.EndReading = 50 }, ErrInvalidReading},
		{"nan end reading", func(s *FuelSale) { s.EndReading = math.NaN() }, ErrInvalidReading},
		{"nan start reading", func(s *FuelSale) { s.StartReading = math.NaN() }, ErrInvalidReading},
		{"infinite end reading", func(s *FuelSale) { s.EndReading = math.Inf(1) }, ErrInvalidReading},
		{"nan liters", func(s *FuelSale) { s.Liters = math.NaN() }, ErrInvalidAmount},
		{"infinite amount", func(s *FuelSale) { s.Amount = math.Inf(1) }, ErrInvalidAmount},
		{"zero rate", func(s *FuelSale) { s.Rate = 0 }, ErrInvalidRate},
		{"nan rate", func(s *FuelSale) { s.Rate = math.NaN() }, ErrInvalidRate},
		{"bad payment", func(s *FuelSale) { s.Payment = "upi" }, ErrInvalidPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSale()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreditSaleValidate(t *testing.T) {
	valid := CreditSale{
		Date: "2024-03-01", CustomerName: "Sharma Transport",
		Amount: 3590, Status: CreditPending,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}

	tests := []struct {
		name    string
		mutate  func(*CreditSale)
		wantErr error
	}{
		{"blank customer", func(c *CreditSale) { c.CustomerName = " " }, ErrEmptyCustomer},
		{"zero amount", func(c *CreditSale) { c.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(c *CreditSale) { c.Amount = -1 }, ErrInvalidAmount},
		{"nan amount", func(c *CreditSale) { c.Amount = math.NaN() }, ErrInvalidAmount},
		{"bad status", func(c *CreditSale) { c.Status = "overdue" }, ErrInvalidStatus},
		{"bad due date", func(c *CreditSale) { c.DueDate = "soon" }, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntryValidate(t *testing.T) {
	valid := Entry{Date: "2024-03-01", Kind: KindExpense, Amount: 350, Description: "Electricity"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}

	long := valid
	for len(long.Description) <= 200 {
		long.Description += "x"
	}
	if err := long.Validate(); err == nil {
		t.Error("Validate() accepted over-long description")
	}

	badKind := valid
	badKind.Kind = "transfer"
	if err := badKind.Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("Validate() error = %v, want %v", err, ErrInvalidKind)
	}
}

func TestFuelTypeConfigValidate(t *testing.T) {
	if err := (FuelTypeConfig{Price: 102.50, NozzleCount: 3}).Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	if err := (FuelTypeConfig{Price: 0, NozzleCount: 3}).Validate(); !errors.Is(err, ErrInvalidRate) {
		t.Error("Validate() accepted zero price")
	}
	if err := (FuelTypeConfig{Price: 100, NozzleCount: 0}).Validate(); !errors.Is(err, ErrInvalidNozzleCount) {
		t.Error("Validate() accepted zero nozzles")
	}
	if err := (FuelTypeConfig{Price: 100, NozzleCount: 11}).Validate(); !errors.Is(err, ErrInvalidNozzleCount) {
		t.Error("Validate() accepted eleven nozzles")
	}
}

func TestDefaultFuelConfig(t *testing.T) {
	cfg := DefaultFuelConfig()
	want := map[string]FuelTypeConfig{
		"Petrol":  {Price: 102.50, NozzleCount: 3},
		"Diesel":  {Price: 89.75, NozzleCount: 2},
		"CNG":     {Price: 75.20, NozzleCount: 2},
		"Premium": {Price: 108.90, NozzleCount: 1},
	}
	if len(cfg) != len(want) {
		t.Fatalf("got %d fuel types, want %d", len(cfg), len(want))
	}
	for name, ft := range want {
		if cfg[name] != ft {
			t.Errorf("config[%q] = %+v, want %+v", name, cfg[name], ft)
		}
	}
}

func TestSplitEntries(t *testing.T) {
	entries := []Entry{
		{ID: "1", Kind: KindIncome},
		{ID: "2", Kind: KindExpense},
		{ID: "3", Kind: KindIncome},
		{ID: "4", Kind: "bogus"},
	}
	income, expenses := SplitEntries(entries)
	if len(income) != 2 || income[0].ID != "1" || income[1].ID != "3" {
		t.Errorf("income = %+v", income)
	}
	if len(expenses) != 1 || expenses[0].ID != "2" {
		t.Errorf("expenses = %+v", expenses)
	}
}
