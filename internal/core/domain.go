package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	PaymentCash PaymentType = "cash"
	PaymentCard PaymentType = "card"

	KindIncome  EntryKind = "income"
	KindExpense EntryKind = "expense"

	CreditPending CreditStatus = "pending"
	CreditSettled CreditStatus = "settled"
)

// DateLayout is the day-granularity key used across all records. Records are
// filtered by exact string equality on this format, never by time-zone aware
// comparison.
const DateLayout = "2006-01-02"

type (
	PaymentType  string
	EntryKind    string
	CreditStatus string

	// Date is a day-granularity YYYY-MM-DD key with no time component.
	Date string

	// FuelSale is a single dispensing transaction recorded against a nozzle.
	// Liters and Amount are derived at entry time and stored denormalized so
	// historical records survive later rate changes.
	FuelSale struct {
		ID           string      `json:"id"`
		Date         Date        `json:"date"`
		Nozzle       string      `json:"nozzle"`
		FuelType     string      `json:"fuel_type"`
		StartReading float64     `json:"start_reading"`
		EndReading   float64     `json:"end_reading"`
		Rate         float64     `json:"rate"`
		Liters       float64     `json:"liters"`
		Amount       float64     `json:"amount"`
		Payment      PaymentType `json:"payment"`
		CreatedAt    time.Time   `json:"created_at"`
	}

	// CreditSale is fuel handed over against a customer's account. Amount may
	// be entered independently of Liters times Rate; FuelType, Liters and Rate
	// are optional detail.
	CreditSale struct {
		ID            string       `json:"id"`
		Date          Date         `json:"date"`
		CustomerName  string       `json:"customer_name"`
		VehicleNumber string       `json:"vehicle_number,omitempty"`
		FuelType      string       `json:"fuel_type,omitempty"`
		Liters        float64      `json:"liters,omitempty"`
		Rate          float64      `json:"rate,omitempty"`
		Amount        float64      `json:"amount"`
		DueDate       Date         `json:"due_date,omitempty"`
		Status        CreditStatus `json:"status"`
		CreatedAt     time.Time    `json:"created_at"`
	}

	// Entry is a miscellaneous income or expense line. There is no category
	// taxonomy beyond the free-text description.
	Entry struct {
		ID          string    `json:"id"`
		Date        Date      `json:"date"`
		Kind        EntryKind `json:"kind"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}

	// FuelTypeConfig holds the per-fuel price and how many nozzles dispense it.
	FuelTypeConfig struct {
		Price       float64 `json:"price"`
		NozzleCount int     `json:"nozzle_count"`
	}

	// FuelConfig is a read-only snapshot of the outlet's fuel configuration,
	// keyed by fuel type name. It is passed explicitly into whatever needs it
	// rather than read from a shared global.
	FuelConfig map[string]FuelTypeConfig
)

var (
	ErrMissingInput       = errors.New("missing required input")
	ErrInvalidReading     = errors.New("end reading must be greater than start reading")
	ErrInvalidDate        = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrInvalidRate        = errors.New("rate must be a positive number")
	ErrEmptyCustomer      = errors.New("customer name cannot be empty")
	ErrEmptyFuelType      = errors.New("fuel type cannot be empty")
	ErrEmptyNozzle        = errors.New("nozzle cannot be empty")
	ErrInvalidPayment     = errors.New("payment must be cash or card")
	ErrInvalidKind        = errors.New("kind must be income or expense")
	ErrInvalidStatus      = errors.New("status must be pending or settled")
	ErrInvalidNozzleCount = errors.New("nozzle count must be between 1 and 10")
)

func (d Date) Validate() error {
	if _, err := time.Parse(DateLayout, string(d)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Prev returns the previous calendar day. This is real day arithmetic, not a
// string decrement, so month and year boundaries behave.
func (d Date) Prev() Date {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return d
	}
	return Date(t.AddDate(0, 0, -1).Format(DateLayout))
}

// Today returns the current day key in local time.
func Today() Date {
	return Date(time.Now().Format(DateLayout))
}

// Finite coerces NaN and infinities to zero. Aggregations must always produce
// a number, even over malformed historical data.
func Finite(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (s FuelSale) Validate() error {
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.Nozzle) == "" {
		return ErrEmptyNozzle
	}
	if strings.TrimSpace(s.FuelType) == "" {
		return ErrEmptyFuelType
	}
	// NaN compares false against everything, so the ordering check alone
	// would wave a non-finite reading through.
	if !finite(s.StartReading) || !finite(s.EndReading) {
		return ErrInvalidReading
	}
	if s.EndReading <= s.StartReading {
		return ErrInvalidReading
	}
	if s.Rate <= 0 || !finite(s.Rate) {
		return ErrInvalidRate
	}
	if !finite(s.Liters) || !finite(s.Amount) {
		return ErrInvalidAmount
	}
	switch s.Payment {
	case PaymentCash, PaymentCard:
	default:
		return ErrInvalidPayment
	}
	return nil
}

func (c CreditSale) Validate() error {
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.CustomerName) == "" {
		return ErrEmptyCustomer
	}
	if c.Amount <= 0 || !finite(c.Amount) {
		return ErrInvalidAmount
	}
	switch c.Status {
	case CreditPending, CreditSettled:
	default:
		return ErrInvalidStatus
	}
	if c.DueDate != "" {
		if err := c.DueDate.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e Entry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	switch e.Kind {
	case KindIncome, KindExpense:
	default:
		return ErrInvalidKind
	}
	if e.Amount <= 0 || !finite(e.Amount) {
		return ErrInvalidAmount
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (c FuelTypeConfig) Validate() error {
	if c.Price <= 0 || !finite(c.Price) {
		return ErrInvalidRate
	}
	if c.NozzleCount < 1 || c.NozzleCount > 10 {
		return ErrInvalidNozzleCount
	}
	return nil
}

// DefaultFuelConfig seeds a fresh store with the outlet's usual fuel types.
func DefaultFuelConfig() FuelConfig {
	return FuelConfig{
		"Petrol":  {Price: 102.50, NozzleCount: 3},
		"Diesel":  {Price: 89.75, NozzleCount: 2},
		"CNG":     {Price: 75.20, NozzleCount: 2},
		"Premium": {Price: 108.90, NozzleCount: 1},
	}
}
