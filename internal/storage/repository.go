package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mpump/internal/core"
	"mpump/internal/store"
)

// SQLiteRepository is the durable backend. It implements every store port.
type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListFuelSales(ctx context.Context) ([]core.FuelSale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, nozzle, fuel_type, start_reading, end_reading, rate, liters, amount, payment, created_at
		FROM fuel_sales ORDER BY date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list fuel sales: %w", err)
	}
	defer rows.Close()

	var sales []core.FuelSale
	for rows.Next() {
		var (
			s       core.FuelSale
			created string
		)
		if err := rows.Scan(&s.ID, &s.Date, &s.Nozzle, &s.FuelType, &s.StartReading,
			&s.EndReading, &s.Rate, &s.Liters, &s.Amount, &s.Payment, &created); err != nil {
			return nil, fmt.Errorf("scan fuel sale: %w", err)
		}
		s.CreatedAt = parseTime(created)
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *SQLiteRepository) AddFuelSale(ctx context.Context, s core.FuelSale) (core.FuelSale, error) {
	if err := s.Validate(); err != nil {
		return core.FuelSale{}, err
	}
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fuel_sales (id, date, nozzle, fuel_type, start_reading, end_reading, rate, liters, amount, payment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Date, s.Nozzle, s.FuelType, s.StartReading, s.EndReading, s.Rate, s.Liters, s.Amount, s.Payment, formatTime(s.CreatedAt))
	if err != nil {
		return core.FuelSale{}, fmt.Errorf("insert fuel sale: %w", err)
	}

	slog.InfoContext(ctx, "Fuel sale saved",
		"id", s.ID, "date", s.Date, "nozzle", s.Nozzle, "liters", s.Liters, "amount", s.Amount)
	return s, nil
}

func (r *SQLiteRepository) UpdateFuelSale(ctx context.Context, id string, s core.FuelSale) (core.FuelSale, error) {
	if err := s.Validate(); err != nil {
		return core.FuelSale{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE fuel_sales
		SET date = ?, nozzle = ?, fuel_type = ?, start_reading = ?, end_reading = ?, rate = ?, liters = ?, amount = ?, payment = ?
		WHERE id = ?`,
		s.Date, s.Nozzle, s.FuelType, s.StartReading, s.EndReading, s.Rate, s.Liters, s.Amount, s.Payment, id)
	if err != nil {
		return core.FuelSale{}, fmt.Errorf("update fuel sale: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.FuelSale{}, store.ErrNotFound
	}
	s.ID = id
	return s, nil
}

func (r *SQLiteRepository) DeleteFuelSale(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "fuel_sales", id)
}

func (r *SQLiteRepository) ListCreditSales(ctx context.Context) ([]core.CreditSale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, customer_name, vehicle_number, fuel_type, liters, rate, amount, due_date, status, created_at
		FROM credit_sales ORDER BY date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list credit sales: %w", err)
	}
	defer rows.Close()

	var credits []core.CreditSale
	for rows.Next() {
		var (
			c       core.CreditSale
			created string
		)
		if err := rows.Scan(&c.ID, &c.Date, &c.CustomerName, &c.VehicleNumber, &c.FuelType,
			&c.Liters, &c.Rate, &c.Amount, &c.DueDate, &c.Status, &created); err != nil {
			return nil, fmt.Errorf("scan credit sale: %w", err)
		}
		c.CreatedAt = parseTime(created)
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

func (r *SQLiteRepository) AddCreditSale(ctx context.Context, c core.CreditSale) (core.CreditSale, error) {
	if err := c.Validate(); err != nil {
		return core.CreditSale{}, err
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_sales (id, date, customer_name, vehicle_number, fuel_type, liters, rate, amount, due_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Date, c.CustomerName, c.VehicleNumber, c.FuelType, c.Liters, c.Rate, c.Amount, c.DueDate, c.Status, formatTime(c.CreatedAt))
	if err != nil {
		return core.CreditSale{}, fmt.Errorf("insert credit sale: %w", err)
	}

	slog.InfoContext(ctx, "Credit sale saved",
		"id", c.ID, "date", c.Date, "customer", c.CustomerName, "amount", c.Amount)
	return c, nil
}

func (r *SQLiteRepository) UpdateCreditSale(ctx context.Context, id string, c core.CreditSale) (core.CreditSale, error) {
	if err := c.Validate(); err != nil {
		return core.CreditSale{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE credit_sales
		SET date = ?, customer_name = ?, vehicle_number = ?, fuel_type = ?, liters = ?, rate = ?, amount = ?, due_date = ?, status = ?
		WHERE id = ?`,
		c.Date, c.CustomerName, c.VehicleNumber, c.FuelType, c.Liters, c.Rate, c.Amount, c.DueDate, c.Status, id)
	if err != nil {
		return core.CreditSale{}, fmt.Errorf("update credit sale: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.CreditSale{}, store.ErrNotFound
	}
	c.ID = id
	return c, nil
}

func (r *SQLiteRepository) DeleteCreditSale(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "credit_sales", id)
}

func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, kind, amount, description, created_at
		FROM entries ORDER BY date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		var (
			e       core.Entry
			created string
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.Kind, &e.Amount, &e.Description, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.CreatedAt = parseTime(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) AddEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (id, date, kind, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.Kind, e.Amount, e.Description, formatTime(e.CreatedAt))
	if err != nil {
		return core.Entry{}, fmt.Errorf("insert entry: %w", err)
	}

	slog.InfoContext(ctx, "Cashbook entry saved",
		"id", e.ID, "date", e.Date, "kind", e.Kind, "amount", e.Amount)
	return e, nil
}

func (r *SQLiteRepository) UpdateEntry(ctx context.Context, id string, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET date = ?, kind = ?, amount = ?, description = ? WHERE id = ?`,
		e.Date, e.Kind, e.Amount, e.Description, id)
	if err != nil {
		return core.Entry{}, fmt.Errorf("update entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Entry{}, store.ErrNotFound
	}
	e.ID = id
	return e, nil
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "entries", id)
}

func (r *SQLiteRepository) GetFuelConfig(ctx context.Context) (core.FuelConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT fuel_type, price, nozzle_count FROM fuel_types`)
	if err != nil {
		return nil, fmt.Errorf("get fuel config: %w", err)
	}
	defer rows.Close()

	cfg := make(core.FuelConfig)
	for rows.Next() {
		var (
			name string
			ft   core.FuelTypeConfig
		)
		if err := rows.Scan(&name, &ft.Price, &ft.NozzleCount); err != nil {
			return nil, fmt.Errorf("scan fuel type: %w", err)
		}
		cfg[name] = ft
	}
	return cfg, rows.Err()
}

func (r *SQLiteRepository) PutFuelType(ctx context.Context, fuelType string, cfg core.FuelTypeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fuel_types (fuel_type, price, nozzle_count) VALUES (?, ?, ?)
		ON CONFLICT (fuel_type) DO UPDATE SET price = excluded.price, nozzle_count = excluded.nozzle_count`,
		fuelType, cfg.Price, cfg.NozzleCount)
	if err != nil {
		return fmt.Errorf("put fuel type: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteFuelType(ctx context.Context, fuelType string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fuel_types WHERE fuel_type = ?`, fuelType)
	if err != nil {
		return fmt.Errorf("delete fuel type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.Snapshot, error) {
	sales, err := r.ListFuelSales(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	credits, err := r.ListCreditSales(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	entries, err := r.ListEntries(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	fuel, err := r.GetFuelConfig(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}

	income, expenses := core.SplitEntries(entries)
	return core.Snapshot{
		SalesData:    sales,
		CreditData:   credits,
		IncomeData:   income,
		ExpenseData:  expenses,
		FuelSettings: fuel,
		ExportDate:   time.Now().UTC(),
		Version:      core.SnapshotVersion,
	}, nil
}

// Restore replaces the whole store with the snapshot contents in one
// transaction, so a failed restore leaves the previous data intact.
func (r *SQLiteRepository) Restore(ctx context.Context, snap core.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"fuel_sales", "credit_sales", "entries", "fuel_types"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, s := range snap.SalesData {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fuel_sales (id, date, nozzle, fuel_type, start_reading, end_reading, rate, liters, amount, payment, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Date, s.Nozzle, s.FuelType, s.StartReading, s.EndReading, s.Rate, s.Liters, s.Amount, s.Payment, formatTime(s.CreatedAt)); err != nil {
			return fmt.Errorf("restore fuel sale: %w", err)
		}
	}
	for _, c := range snap.CreditData {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO credit_sales (id, date, customer_name, vehicle_number, fuel_type, liters, rate, amount, due_date, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Date, c.CustomerName, c.VehicleNumber, c.FuelType, c.Liters, c.Rate, c.Amount, c.DueDate, c.Status, formatTime(c.CreatedAt)); err != nil {
			return fmt.Errorf("restore credit sale: %w", err)
		}
	}
	restoreEntries := func(entries []core.Entry, kind core.EntryKind) error {
		for _, e := range entries {
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO entries (id, date, kind, amount, description, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				e.ID, e.Date, kind, e.Amount, e.Description, formatTime(e.CreatedAt)); err != nil {
				return fmt.Errorf("restore entry: %w", err)
			}
		}
		return nil
	}
	if err := restoreEntries(snap.IncomeData, core.KindIncome); err != nil {
		return err
	}
	if err := restoreEntries(snap.ExpenseData, core.KindExpense); err != nil {
		return err
	}
	for name, ft := range snap.FuelSettings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fuel_types (fuel_type, price, nozzle_count) VALUES (?, ?, ?)`,
			name, ft.Price, ft.NozzleCount); err != nil {
			return fmt.Errorf("restore fuel type: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}

	slog.InfoContext(ctx, "Store restored from snapshot",
		"sales", len(snap.SalesData),
		"credits", len(snap.CreditData),
		"income", len(snap.IncomeData),
		"expenses", len(snap.ExpenseData))
	return nil
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime tolerates malformed timestamps in old rows; listing must never
// fail because of one bad value.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
