package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"mpump/internal/core"
	"mpump/internal/store"
	"mpump/internal/store/memory"
)

type recordedEvent struct {
	collection, op, id, date string
}

type fakePublisher struct {
	events []recordedEvent
	err    error
}

func (p *fakePublisher) PublishDataChanged(_ context.Context, collection, op, id, date string) error {
	p.events = append(p.events, recordedEvent{collection, op, id, date})
	return p.err
}

func TestCreateFuelSaleMeterMode(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewRecordService(memory.New(), pub)

	sale, err := svc.CreateFuelSale(ctx, FuelSaleInput{
		Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol",
		Mode: "meter", StartReading: "100", EndReading: "150", Rate: "102.50",
	})
	if err != nil {
		t.Fatalf("CreateFuelSale() error = %v", err)
	}
	if sale.Liters != 50 {
		t.Errorf("liters = %v, want 50", sale.Liters)
	}
	if sale.Amount != 50*102.50 {
		t.Errorf("amount = %v, want %v", sale.Amount, 50*102.50)
	}
	if sale.Payment != core.PaymentCash {
		t.Errorf("payment defaulted to %q, want cash", sale.Payment)
	}
	if len(pub.events) != 1 || pub.events[0].op != "create" {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestCreateFuelSaleManualMode(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)

	sale, err := svc.CreateFuelSale(context.Background(), FuelSaleInput{
		Date: "2024-03-01", Nozzle: "D1", FuelType: "Diesel",
		Mode: "manual", ManualLiters: "40", Rate: "89.75",
	})
	if err != nil {
		t.Fatalf("CreateFuelSale() error = %v", err)
	}
	if sale.Liters != 40 {
		t.Errorf("liters = %v, want 40", sale.Liters)
	}
	if sale.StartReading != 0 || sale.EndReading != 40 {
		t.Errorf("synthetic readings = %v..%v, want 0..40", sale.StartReading, sale.EndReading)
	}
}

func TestCreateFuelSaleDefaultsRateFromConfig(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)

	sale, err := svc.CreateFuelSale(context.Background(), FuelSaleInput{
		Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol",
		StartReading: "100", EndReading: "150",
	})
	if err != nil {
		t.Fatalf("CreateFuelSale() error = %v", err)
	}
	if sale.Rate != 102.50 {
		t.Errorf("rate = %v, want configured 102.50", sale.Rate)
	}
}

func TestCreateFuelSaleRejectsBadInput(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      FuelSaleInput
		wantErr error
	}{
		{
			"blank readings",
			FuelSaleInput{Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol"},
			core.ErrMissingInput,
		},
		{
			"reversed readings",
			FuelSaleInput{Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol", StartReading: "150", EndReading: "100"},
			core.ErrInvalidReading,
		},
		{
			"unknown fuel type without rate",
			FuelSaleInput{Date: "2024-03-01", Nozzle: "K1", FuelType: "Kerosene", StartReading: "10", EndReading: "20"},
			core.ErrMissingInput,
		},
		{
			"non-numeric rate",
			FuelSaleInput{Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol", StartReading: "10", EndReading: "20", Rate: "abc"},
			core.ErrMissingInput,
		},
		{
			"nan end reading",
			FuelSaleInput{Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol", StartReading: "100", EndReading: "NaN"},
			core.ErrMissingInput,
		},
		{
			"infinite manual liters",
			FuelSaleInput{Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol", Mode: "manual", ManualLiters: "Inf"},
			core.ErrMissingInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateFuelSale(ctx, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateFuelSale() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateFuelSaleNeverStoresNonFinite(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewRecordService(st, nil)

	inputs := []FuelSaleInput{
		{Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol", StartReading: "100", EndReading: "NaN"},
		{Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol", StartReading: "NaN", EndReading: "150"},
		{Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol", StartReading: "100", EndReading: "Inf"},
		{Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol", Mode: "manual", ManualLiters: "NaN"},
	}
	for _, in := range inputs {
		if _, err := svc.CreateFuelSale(ctx, in); err == nil {
			t.Errorf("CreateFuelSale(%+v) accepted a non-finite reading", in)
		}
	}

	sales, err := st.ListFuelSales(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sales) != 0 {
		t.Fatalf("store holds %d records after rejected input, want 0", len(sales))
	}

	// Every stored record must survive JSON encoding.
	saved, err := svc.CreateFuelSale(ctx, FuelSaleInput{
		Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol",
		StartReading: "100", EndReading: "150", Rate: "102.50",
	})
	if err != nil {
		t.Fatalf("CreateFuelSale() error = %v", err)
	}
	if _, err := json.Marshal(saved); err != nil {
		t.Errorf("stored record cannot be JSON-encoded: %v", err)
	}
}

func TestPublishFailureDoesNotFailCreate(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewRecordService(memory.New(), pub)

	if _, err := svc.CreateFuelSale(context.Background(), FuelSaleInput{
		Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol",
		StartReading: "100", EndReading: "150",
	}); err != nil {
		t.Fatalf("CreateFuelSale() error = %v, want nil despite publish failure", err)
	}
}

func TestSettleCreditSale(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService(memory.New(), nil)

	saved, err := svc.CreateCreditSale(ctx, core.CreditSale{
		Date: "2024-03-01", CustomerName: "Sharma Transport", Amount: 3590,
	})
	if err != nil {
		t.Fatalf("CreateCreditSale() error = %v", err)
	}
	if saved.Status != core.CreditPending {
		t.Fatalf("status defaulted to %q, want pending", saved.Status)
	}

	settled, err := svc.SettleCreditSale(ctx, saved.ID)
	if err != nil {
		t.Fatalf("SettleCreditSale() error = %v", err)
	}
	if settled.Status != core.CreditSettled {
		t.Errorf("status = %q, want settled", settled.Status)
	}
	if settled.CustomerName != saved.CustomerName || settled.Amount != saved.Amount {
		t.Errorf("settle mutated other fields: %+v", settled)
	}

	if _, err := svc.SettleCreditSale(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SettleCreditSale(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSummaryCombinesCollections(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService(memory.New(), nil)

	if _, err := svc.CreateFuelSale(ctx, FuelSaleInput{
		Date: "2024-03-01", Nozzle: "P1", FuelType: "Petrol",
		StartReading: "100", EndReading: "150", Rate: "100",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateCreditSale(ctx, core.CreditSale{
		Date: "2024-03-01", CustomerName: "Sharma Transport", Amount: 1000,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateEntry(ctx, core.Entry{Date: "2024-03-01", Kind: core.KindIncome, Amount: 500}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateEntry(ctx, core.Entry{Date: "2024-03-01", Kind: core.KindExpense, Amount: 350}); err != nil {
		t.Fatal(err)
	}

	summary, err := svc.Summary(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.FuelCashSales != 5000 {
		t.Errorf("fuel sales = %v, want 5000", summary.FuelCashSales)
	}
	if summary.AdjustedCashSales != 5000+500-350-1000 {
		t.Errorf("adjusted cash = %v, want %v", summary.AdjustedCashSales, 5000+500-350-1000)
	}
	if summary.NetProfit != 5000+1000+500-350 {
		t.Errorf("net profit = %v, want %v", summary.NetProfit, 5000+1000+500-350)
	}
}

func TestNozzles(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewRecordService(st, nil)

	// Yesterday's closing reading should seed today's start.
	if _, err := st.AddFuelSale(ctx, core.FuelSale{
		Date: "2024-02-29", Nozzle: "P1", FuelType: "Petrol",
		StartReading: 500, EndReading: 620, Rate: 100,
		Liters: 120, Amount: 12000, Payment: core.PaymentCash,
	}); err != nil {
		t.Fatal(err)
	}

	nozzles, err := svc.Nozzles(ctx, "Petrol", "2024-03-01")
	if err != nil {
		t.Fatalf("Nozzles() error = %v", err)
	}
	if len(nozzles) != 3 {
		t.Fatalf("got %d nozzles, want 3", len(nozzles))
	}
	byID := make(map[string]NozzleStatus, len(nozzles))
	for _, n := range nozzles {
		byID[n.ID] = n
		if n.FuelType != "Petrol" {
			t.Errorf("nozzle %s fuel type = %q", n.ID, n.FuelType)
		}
	}
	if byID["P1"].StartReading != 620 {
		t.Errorf("P1 start = %v, want 620", byID["P1"].StartReading)
	}
	if byID["P2"].StartReading != 0 {
		t.Errorf("P2 start = %v, want 0", byID["P2"].StartReading)
	}
}
