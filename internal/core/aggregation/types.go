package aggregation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supported measures: sum of price (revenue) and count of records (sales).
const (
	OpCount = "count"
	OpSum   = "sum"
)

// StateRow is one row of a by-state summary. Coordinates come from the
// first record of the state.
type StateRow struct {
	State     string          `json:"state"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Value     decimal.Decimal `json:"value"`
}

// MonthRow is one month-end bucket of a monthly summary.
type MonthRow struct {
	MonthEnd  time.Time       `json:"month_end"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	MonthName string          `json:"month_name"`
	Value     decimal.Decimal `json:"value"`
}

// CategoryRow is one row of a by-category summary.
type CategoryRow struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

// SalespersonRow carries both measures for one salesperson.
type SalespersonRow struct {
	Salesperson string          `json:"salesperson"`
	Sum         decimal.Decimal `json:"sum"`
	Count       int64           `json:"count"`
}

// Totals are the two scalar metrics of a record set.
type Totals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Count   int64           `json:"count"`
}

// Summaries is the full recomputation over one record set.
type Summaries struct {
	Totals            Totals           `json:"totals"`
	RevenueByState    []StateRow       `json:"revenue_by_state"`
	RevenueByMonth    []MonthRow       `json:"revenue_by_month"`
	RevenueByCategory []CategoryRow    `json:"revenue_by_category"`
	SalesByState      []StateRow       `json:"sales_by_state"`
	SalesByMonth      []MonthRow       `json:"sales_by_month"`
	SalesByCategory   []CategoryRow    `json:"sales_by_category"`
	Salespeople       []SalespersonRow `json:"salespeople"`
}
