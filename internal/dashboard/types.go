package dashboard

import (
	"time"

	"github.com/aevon-lab/salesdash/internal/core/aggregation"
	"github.com/aevon-lab/salesdash/internal/core/filter"
	"github.com/aevon-lab/salesdash/internal/core/sales"
	"github.com/shopspring/decimal"
)

// Query is one request's filter parameters before validation.
// Salespeople accepts repeated parameters and comma separated lists.
type Query struct {
	Region      string   `form:"region"`
	Year        string   `form:"year"`
	AllYears    string   `form:"all_years"`
	Salespeople []string `form:"salespeople"`
	Salesperson []string `form:"salesperson"`
	Top         string   `form:"top"`
}

// Filters is a validated Query, echoed back in every response.
type Filters struct {
	Region      string   `json:"region"`
	Year        *int     `json:"year"`
	AllYears    bool     `json:"all_years"`
	Salespeople []string `json:"salespeople"`
	Top         int      `json:"top"`
}

// Params converts the filters to filter stage predicates.
func (f Filters) Params() filter.Params {
	return filter.Params{Region: f.Region, Year: f.Year, Salespeople: f.Salespeople}
}

// Options bounds the dashboard controls.
type Options struct {
	YearMin        int
	YearMax        int
	TopMin         int
	TopMax         int
	TopDefault     int
	TopStates      int
	CurrencyPrefix string
}

// DefaultOptions matches the stock dashboard: years 2020-2023, top 2-10 (5).
func DefaultOptions() Options {
	return Options{
		YearMin:        2020,
		YearMax:        2023,
		TopMin:         2,
		TopMax:         10,
		TopDefault:     5,
		TopStates:      5,
		CurrencyPrefix: "R$",
	}
}

// Result is one recomputation over the filtered view. Shared between
// coalesced callers; treat as read-only.
type Result struct {
	Filters   Filters
	Records   []sales.Record
	Summaries aggregation.Summaries
	Warnings  []string
}

type DatasetInfo struct {
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	Records     int       `json:"records"`
	LoadedAt    time.Time `json:"loaded_at"`
}

type TotalsView struct {
	Revenue        decimal.Decimal `json:"revenue"`
	Count          int64           `json:"count"`
	RevenueDisplay string          `json:"revenue_display"`
	CountDisplay   string          `json:"count_display"`
}

// MeasureView groups the three summaries of one measure (revenue or sales count).
type MeasureView struct {
	ByState    []aggregation.StateRow    `json:"by_state"`
	ByMonth    []aggregation.MonthRow    `json:"by_month"`
	ByCategory []aggregation.CategoryRow `json:"by_category"`
	TopStates  []aggregation.StateRow    `json:"top_states"`
}

type SalespeopleView struct {
	Table        []aggregation.SalespersonRow `json:"table"`
	TopByRevenue []aggregation.SalespersonRow `json:"top_by_revenue"`
	TopByCount   []aggregation.SalespersonRow `json:"top_by_count"`
	Top          int                          `json:"top"`
}

// DashboardResponse is the full dashboard payload.
type DashboardResponse struct {
	Dataset     DatasetInfo     `json:"dataset"`
	Filters     Filters         `json:"filters"`
	Totals      TotalsView      `json:"totals"`
	Revenue     MeasureView     `json:"revenue"`
	Sales       MeasureView     `json:"sales"`
	Salespeople SalespeopleView `json:"salespeople"`
	Warnings    []string        `json:"warnings"`
}

// SummaryResponse carries a single named summary.
type SummaryResponse struct {
	Dataset  DatasetInfo `json:"dataset"`
	Filters  Filters     `json:"filters"`
	Name     string      `json:"name"`
	Rows     interface{} `json:"rows"`
	Warnings []string    `json:"warnings"`
}

type RecordsResponse struct {
	Dataset  DatasetInfo    `json:"dataset"`
	Filters  Filters        `json:"filters"`
	Count    int            `json:"count"`
	Records  []sales.Record `json:"records"`
	Warnings []string       `json:"warnings"`
}

type Bounds struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default,omitempty"`
}

// OptionsResponse lists the values the presentation layer offers in its controls.
type OptionsResponse struct {
	Regions     []string `json:"regions"`
	Years       Bounds   `json:"years"`
	Top         Bounds   `json:"top"`
	Salespeople []string `json:"salespeople"`
	Summaries   []string `json:"summaries"`
}
