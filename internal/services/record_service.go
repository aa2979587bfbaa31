package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"mpump/internal/amqp"
	"mpump/internal/core"
	"mpump/internal/ledger"
	"mpump/internal/store"
)

// ChangePublisher announces store mutations. Nil-able: with no broker
// configured, events are skipped and the service still works.
type ChangePublisher interface {
	PublishDataChanged(ctx context.Context, collection, op, id, date string) error
}

// RecordService is the entry path for all record mutations. It derives sale
// quantities, enforces entry-time validation before anything reaches the
// store, and publishes change events for the backup worker.
type RecordService struct {
	store     store.Store
	publisher ChangePublisher
}

func NewRecordService(st store.Store, publisher ChangePublisher) *RecordService {
	return &RecordService{store: st, publisher: publisher}
}

// FuelSaleInput is raw operator input for one sale. Numeric fields arrive as
// strings so blank and non-numeric values can be rejected explicitly rather
// than silently becoming zero.
type FuelSaleInput struct {
	Date         core.Date        `json:"date"`
	Nozzle       string           `json:"nozzle"`
	FuelType     string           `json:"fuel_type"`
	Mode         ledger.Mode      `json:"mode"`
	ManualLiters string           `json:"manual_liters,omitempty"`
	StartReading string           `json:"start_reading,omitempty"`
	EndReading   string           `json:"end_reading,omitempty"`
	Rate         string           `json:"rate,omitempty"`
	Payment      core.PaymentType `json:"payment,omitempty"`
}

// buildFuelSale turns operator input into a validated record. The rate falls
// back to the configured fuel price when not supplied. Manual-mode sales get
// synthetic readings (0..liters) so meter invariants hold for every record.
func (s *RecordService) buildFuelSale(ctx context.Context, in FuelSaleInput) (core.FuelSale, error) {
	mode := in.Mode
	if mode == "" {
		mode = ledger.ModeMeter
	}

	liters, err := ledger.DeriveQuantity(mode, in.ManualLiters, in.StartReading, in.EndReading)
	if err != nil {
		return core.FuelSale{}, err
	}

	rate, err := s.resolveRate(ctx, in.FuelType, in.Rate)
	if err != nil {
		return core.FuelSale{}, err
	}

	sale := core.FuelSale{
		Date:     in.Date,
		Nozzle:   in.Nozzle,
		FuelType: in.FuelType,
		Rate:     rate,
		Liters:   liters,
		Amount:   liters * rate,
		Payment:  in.Payment,
	}
	if sale.Payment == "" {
		sale.Payment = core.PaymentCash
	}

	switch mode {
	case ledger.ModeMeter:
		sale.StartReading, _ = strconv.ParseFloat(in.StartReading, 64)
		sale.EndReading, _ = strconv.ParseFloat(in.EndReading, 64)
	case ledger.ModeManual:
		sale.StartReading = 0
		sale.EndReading = liters
	}

	if err := sale.Validate(); err != nil {
		return core.FuelSale{}, err
	}
	return sale, nil
}

func (s *RecordService) resolveRate(ctx context.Context, fuelType, rate string) (float64, error) {
	if rate != "" {
		v, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return 0, fmt.Errorf("rate: %w", core.ErrMissingInput)
		}
		return v, nil
	}

	cfg, err := s.store.GetFuelConfig(ctx)
	if err != nil {
		return 0, fmt.Errorf("get fuel config: %w", err)
	}
	ft, ok := cfg[fuelType]
	if !ok {
		return 0, fmt.Errorf("rate for unknown fuel type %q: %w", fuelType, core.ErrMissingInput)
	}
	return ft.Price, nil
}

func (s *RecordService) CreateFuelSale(ctx context.Context, in FuelSaleInput) (core.FuelSale, error) {
	sale, err := s.buildFuelSale(ctx, in)
	if err != nil {
		return core.FuelSale{}, err
	}
	saved, err := s.store.AddFuelSale(ctx, sale)
	if err != nil {
		return core.FuelSale{}, fmt.Errorf("save fuel sale: %w", err)
	}
	s.publish(ctx, amqp.CollectionSales, amqp.OpCreate, saved.ID, string(saved.Date))
	return saved, nil
}

func (s *RecordService) UpdateFuelSale(ctx context.Context, id string, in FuelSaleInput) (core.FuelSale, error) {
	sale, err := s.buildFuelSale(ctx, in)
	if err != nil {
		return core.FuelSale{}, err
	}
	saved, err := s.store.UpdateFuelSale(ctx, id, sale)
	if err != nil {
		return core.FuelSale{}, err
	}
	s.publish(ctx, amqp.CollectionSales, amqp.OpUpdate, id, string(saved.Date))
	return saved, nil
}

func (s *RecordService) DeleteFuelSale(ctx context.Context, id string) error {
	if err := s.store.DeleteFuelSale(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.CollectionSales, amqp.OpDelete, id, "")
	return nil
}

func (s *RecordService) CreateCreditSale(ctx context.Context, c core.CreditSale) (core.CreditSale, error) {
	if c.Status == "" {
		c.Status = core.CreditPending
	}
	saved, err := s.store.AddCreditSale(ctx, c)
	if err != nil {
		return core.CreditSale{}, err
	}
	s.publish(ctx, amqp.CollectionCredits, amqp.OpCreate, saved.ID, string(saved.Date))
	return saved, nil
}

func (s *RecordService) UpdateCreditSale(ctx context.Context, id string, c core.CreditSale) (core.CreditSale, error) {
	saved, err := s.store.UpdateCreditSale(ctx, id, c)
	if err != nil {
		return core.CreditSale{}, err
	}
	s.publish(ctx, amqp.CollectionCredits, amqp.OpUpdate, id, string(saved.Date))
	return saved, nil
}

// SettleCreditSale flips a pending credit sale to settled, leaving every
// other field untouched.
func (s *RecordService) SettleCreditSale(ctx context.Context, id string) (core.CreditSale, error) {
	credits, err := s.store.ListCreditSales(ctx)
	if err != nil {
		return core.CreditSale{}, fmt.Errorf("list credit sales: %w", err)
	}
	for _, c := range credits {
		if c.ID != id {
			continue
		}
		c.Status = core.CreditSettled
		return s.UpdateCreditSale(ctx, id, c)
	}
	return core.CreditSale{}, store.ErrNotFound
}

func (s *RecordService) DeleteCreditSale(ctx context.Context, id string) error {
	if err := s.store.DeleteCreditSale(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.CollectionCredits, amqp.OpDelete, id, "")
	return nil
}

func (s *RecordService) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	saved, err := s.store.AddEntry(ctx, e)
	if err != nil {
		return core.Entry{}, err
	}
	s.publish(ctx, amqp.CollectionEntries, amqp.OpCreate, saved.ID, string(saved.Date))
	return saved, nil
}

func (s *RecordService) UpdateEntry(ctx context.Context, id string, e core.Entry) (core.Entry, error) {
	saved, err := s.store.UpdateEntry(ctx, id, e)
	if err != nil {
		return core.Entry{}, err
	}
	s.publish(ctx, amqp.CollectionEntries, amqp.OpUpdate, id, string(saved.Date))
	return saved, nil
}

func (s *RecordService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.CollectionEntries, amqp.OpDelete, id, "")
	return nil
}

func (s *RecordService) PutFuelType(ctx context.Context, fuelType string, cfg core.FuelTypeConfig) error {
	if err := s.store.PutFuelType(ctx, fuelType, cfg); err != nil {
		return err
	}
	s.publish(ctx, amqp.CollectionFuel, amqp.OpUpdate, fuelType, "")
	return nil
}

func (s *RecordService) DeleteFuelType(ctx context.Context, fuelType string) error {
	if err := s.store.DeleteFuelType(ctx, fuelType); err != nil {
		return err
	}
	s.publish(ctx, amqp.CollectionFuel, amqp.OpDelete, fuelType, "")
	return nil
}

// Summary computes the daily position for one date from fresh collections.
func (s *RecordService) Summary(ctx context.Context, date core.Date) (ledger.DailySummary, error) {
	sales, credits, income, expenses, err := s.collections(ctx)
	if err != nil {
		return ledger.DailySummary{}, err
	}
	return ledger.Summarize(date, sales, credits, income, expenses), nil
}

// RangeSummary computes report totals over an inclusive date range.
func (s *RecordService) RangeSummary(ctx context.Context, start, end core.Date) (ledger.RangeSummary, error) {
	sales, credits, income, expenses, err := s.collections(ctx)
	if err != nil {
		return ledger.RangeSummary{}, err
	}
	return ledger.SummarizeRange(start, end, sales, credits, income, expenses), nil
}

// NozzleStatus pairs a derived nozzle ID with its carry-forward start reading
// for the given day.
type NozzleStatus struct {
	ID           string  `json:"id"`
	FuelType     string  `json:"fuel_type"`
	StartReading float64 `json:"start_reading"`
}

// Nozzles lists the derived nozzles for one fuel type (or all types when
// fuelType is empty), each seeded with yesterday's highest end reading.
func (s *RecordService) Nozzles(ctx context.Context, fuelType string, date core.Date) ([]NozzleStatus, error) {
	cfg, err := s.store.GetFuelConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("get fuel config: %w", err)
	}
	sales, err := s.store.ListFuelSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fuel sales: %w", err)
	}

	var statuses []NozzleStatus
	for name, ft := range cfg {
		if fuelType != "" && name != fuelType {
			continue
		}
		for _, id := range ledger.GenerateNozzleIDs(name, ft.NozzleCount) {
			statuses = append(statuses, NozzleStatus{
				ID:           id,
				FuelType:     name,
				StartReading: ledger.CarryForwardStartReading(id, date, sales),
			})
		}
	}
	return statuses, nil
}

func (s *RecordService) collections(ctx context.Context) ([]core.FuelSale, []core.CreditSale, []core.Entry, []core.Entry, error) {
	sales, err := s.store.ListFuelSales(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("list fuel sales: %w", err)
	}
	credits, err := s.store.ListCreditSales(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("list credit sales: %w", err)
	}
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("list entries: %w", err)
	}
	income, expenses := core.SplitEntries(entries)
	return sales, credits, income, expenses, nil
}

func (s *RecordService) publish(ctx context.Context, collection, op, id, date string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishDataChanged(ctx, collection, op, id, date); err != nil {
		// The record is already saved; a lost event only delays the next backup.
		slog.ErrorContext(ctx, "Failed to publish data-changed event",
			"collection", collection, "op", op, "id", id, "error", err)
	}
}
