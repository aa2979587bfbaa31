// Package memory provides the default in-process backend. It backs tests and
// single-user deployments that do not need SQLite.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mpump/internal/core"
	"mpump/internal/store"
)

type Store struct {
	mu      sync.Mutex
	sales   []core.FuelSale
	credits []core.CreditSale
	entries []core.Entry
	fuel    core.FuelConfig
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{fuel: core.DefaultFuelConfig()}
}

// NewFromSnapshot seeds a store from a backup snapshot.
func NewFromSnapshot(snap core.Snapshot) *Store {
	s := New()
	_ = s.Restore(context.Background(), snap)
	return s
}

func (s *Store) ListFuelSales(_ context.Context) ([]core.FuelSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.FuelSale(nil), s.sales...), nil
}

func (s *Store) AddFuelSale(_ context.Context, sale core.FuelSale) (core.FuelSale, error) {
	if err := sale.Validate(); err != nil {
		return core.FuelSale{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sale.ID = uuid.NewString()
	sale.CreatedAt = time.Now().UTC()
	s.sales = append(s.sales, sale)
	return sale, nil
}

func (s *Store) UpdateFuelSale(_ context.Context, id string, sale core.FuelSale) (core.FuelSale, error) {
	if err := sale.Validate(); err != nil {
		return core.FuelSale{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sales {
		if s.sales[i].ID == id {
			sale.ID = id
			sale.CreatedAt = s.sales[i].CreatedAt
			s.sales[i] = sale
			return sale, nil
		}
	}
	return core.FuelSale{}, store.ErrNotFound
}

func (s *Store) DeleteFuelSale(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sales {
		if s.sales[i].ID == id {
			s.sales = append(s.sales[:i], s.sales[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListCreditSales(_ context.Context) ([]core.CreditSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CreditSale(nil), s.credits...), nil
}

func (s *Store) AddCreditSale(_ context.Context, credit core.CreditSale) (core.CreditSale, error) {
	if err := credit.Validate(); err != nil {
		return core.CreditSale{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	credit.ID = uuid.NewString()
	credit.CreatedAt = time.Now().UTC()
	s.credits = append(s.credits, credit)
	return credit, nil
}

func (s *Store) UpdateCreditSale(_ context.Context, id string, credit core.CreditSale) (core.CreditSale, error) {
	if err := credit.Validate(); err != nil {
		return core.CreditSale{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.credits {
		if s.credits[i].ID == id {
			credit.ID = id
			credit.CreatedAt = s.credits[i].CreatedAt
			s.credits[i] = credit
			return credit, nil
		}
	}
	return core.CreditSale{}, store.ErrNotFound
}

func (s *Store) DeleteCreditSale(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.credits {
		if s.credits[i].ID == id {
			s.credits = append(s.credits[:i], s.credits[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListEntries(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Entry(nil), s.entries...), nil
}

func (s *Store) AddEntry(_ context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *Store) UpdateEntry(_ context.Context, id string, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			e.ID = id
			e.CreatedAt = s.entries[i].CreatedAt
			s.entries[i] = e
			return e, nil
		}
	}
	return core.Entry{}, store.ErrNotFound
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) GetFuelConfig(_ context.Context) (core.FuelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := make(core.FuelConfig, len(s.fuel))
	for k, v := range s.fuel {
		cfg[k] = v
	}
	return cfg, nil
}

func (s *Store) PutFuelType(_ context.Context, fuelType string, cfg core.FuelTypeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fuel[fuelType] = cfg
	return nil
}

func (s *Store) DeleteFuelType(_ context.Context, fuelType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fuel[fuelType]; !ok {
		return store.ErrNotFound
	}
	delete(s.fuel, fuelType)
	return nil
}

func (s *Store) Snapshot(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	income, expenses := core.SplitEntries(s.entries)
	fuel := make(core.FuelConfig, len(s.fuel))
	for k, v := range s.fuel {
		fuel[k] = v
	}

	return core.Snapshot{
		SalesData:    append([]core.FuelSale(nil), s.sales...),
		CreditData:   append([]core.CreditSale(nil), s.credits...),
		IncomeData:   income,
		ExpenseData:  expenses,
		FuelSettings: fuel,
		ExportDate:   time.Now().UTC(),
		Version:      core.SnapshotVersion,
	}, nil
}

func (s *Store) Restore(_ context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sales = append([]core.FuelSale(nil), snap.SalesData...)
	s.credits = append([]core.CreditSale(nil), snap.CreditData...)
	s.entries = nil
	for _, e := range snap.IncomeData {
		e.Kind = core.KindIncome
		s.entries = append(s.entries, e)
	}
	for _, e := range snap.ExpenseData {
		e.Kind = core.KindExpense
		s.entries = append(s.entries, e)
	}
	if len(snap.FuelSettings) > 0 {
		fuel := make(core.FuelConfig, len(snap.FuelSettings))
		for k, v := range snap.FuelSettings {
			fuel[k] = v
		}
		s.fuel = fuel
	}
	return nil
}
