package store

import (
	"context"
	"errors"

	"mpump/internal/core"
)

// ErrNotFound is returned by Update/Delete when no record has the given id.
var ErrNotFound = errors.New("record not found")

// Ports for persistence backends. List methods return the full historical
// collection; callers filter by date. Mutations return the canonical stored
// record.
type (
	SalesStore interface {
		ListFuelSales(ctx context.Context) ([]core.FuelSale, error)
		AddFuelSale(ctx context.Context, s core.FuelSale) (core.FuelSale, error)
		UpdateFuelSale(ctx context.Context, id string, s core.FuelSale) (core.FuelSale, error)
		DeleteFuelSale(ctx context.Context, id string) error
	}

	CreditStore interface {
		ListCreditSales(ctx context.Context) ([]core.CreditSale, error)
		AddCreditSale(ctx context.Context, c core.CreditSale) (core.CreditSale, error)
		UpdateCreditSale(ctx context.Context, id string, c core.CreditSale) (core.CreditSale, error)
		DeleteCreditSale(ctx context.Context, id string) error
	}

	EntryStore interface {
		ListEntries(ctx context.Context) ([]core.Entry, error)
		AddEntry(ctx context.Context, e core.Entry) (core.Entry, error)
		UpdateEntry(ctx context.Context, id string, e core.Entry) (core.Entry, error)
		DeleteEntry(ctx context.Context, id string) error
	}

	// FuelConfigStore reads and writes the fuel type configuration snapshot.
	FuelConfigStore interface {
		GetFuelConfig(ctx context.Context) (core.FuelConfig, error)
		PutFuelType(ctx context.Context, fuelType string, cfg core.FuelTypeConfig) error
		DeleteFuelType(ctx context.Context, fuelType string) error
	}

	// Snapshotter serializes the whole store for backup, and restores it.
	Snapshotter interface {
		Snapshot(ctx context.Context) (core.Snapshot, error)
		Restore(ctx context.Context, snap core.Snapshot) error
	}

	// Store is the full persistence surface a backend must provide.
	Store interface {
		SalesStore
		CreditStore
		EntryStore
		FuelConfigStore
		Snapshotter
	}
)
