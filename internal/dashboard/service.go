package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/aevon-lab/salesdash/internal/core/aggregation"
	"github.com/aevon-lab/salesdash/internal/core/filter"
	"github.com/aevon-lab/salesdash/internal/core/region"
	"github.com/aevon-lab/salesdash/internal/core/sales"
	"github.com/aevon-lab/salesdash/internal/display"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid dashboard query")

	// ErrSummaryNotFound marks an unknown summary name (HTTP 404).
	ErrSummaryNotFound = errors.New("summary not found")
)

// summaries maps the public summary names to their rows.
var summaries = map[string]func(aggregation.Summaries) interface{}{
	"revenue_by_state":    func(s aggregation.Summaries) interface{} { return s.RevenueByState },
	"revenue_by_month":    func(s aggregation.Summaries) interface{} { return s.RevenueByMonth },
	"revenue_by_category": func(s aggregation.Summaries) interface{} { return s.RevenueByCategory },
	"sales_by_state":      func(s aggregation.Summaries) interface{} { return s.SalesByState },
	"sales_by_month":      func(s aggregation.Summaries) interface{} { return s.SalesByMonth },
	"sales_by_category":   func(s aggregation.Summaries) interface{} { return s.SalesByCategory },
	"salespeople":         func(s aggregation.Summaries) interface{} { return s.Salespeople },
}

// SummaryNames returns the accepted summary names, sorted.
func SummaryNames() []string {
	names := make([]string, 0, len(summaries))
	for name := range summaries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Service recomputes every summary from the immutable dataset on each request.
// Identical concurrent queries share one computation.
type Service struct {
	dataset     *sales.Dataset
	regions     *region.Table
	opts        Options
	salespeople []string
	group       singleflight.Group
}

// NewService creates a dashboard service over a loaded dataset.
func NewService(dataset *sales.Dataset, regions *region.Table, opts Options) *Service {
	if dataset == nil {
		panic("dashboard: nil dataset")
	}
	if regions == nil {
		panic("dashboard: nil region table")
	}

	return &Service{
		dataset:     dataset,
		regions:     regions,
		opts:        opts,
		salespeople: dataset.Salespeople(),
	}
}

// Compute validates q, narrows the dataset and recomputes all summaries.
// A filter that matches nothing is not an error: the result carries the
// empty_result warning, empty summaries and zero totals.
func (s *Service) Compute(ctx context.Context, q Query) (*Result, error) {
	filters, err := s.normalizeAndValidate(q)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, shared := s.group.Do(filters.key(), func() (interface{}, error) {
		return s.compute(filters), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("[Dashboard] Coalesced identical query", "key", filters.key())
	}
	return v.(*Result), nil
}

func (s *Service) compute(filters Filters) *Result {
	params := filters.Params()
	if s.regions.IsCountry(params.Region) {
		params.Region = ""
	}

	var records []sales.Record
	if params.IsZero() {
		// Capped so appends cannot write into the dataset.
		n := len(s.dataset.Records)
		records = s.dataset.Records[:n:n]
	} else {
		records = filter.Apply(s.dataset.Records, params, s.regions)
	}

	warnings := []string{}
	if len(records) == 0 {
		warn := &sales.EmptyResultWarning{
			Region:      filters.Region,
			Year:        filters.Year,
			Salespeople: filters.Salespeople,
		}
		slog.Warn("[Dashboard] Filter matched no records",
			"region", filters.Region,
			"year", filters.Year,
			"salespeople", filters.Salespeople,
			"warning", warn.Error())
		warnings = append(warnings, warn.Code())
	}

	return &Result{
		Filters:   filters,
		Records:   records,
		Summaries: aggregation.Summarize(records),
		Warnings:  warnings,
	}
}

// Dashboard returns every summary, the Top-N views and formatted totals.
func (s *Service) Dashboard(ctx context.Context, q Query) (*DashboardResponse, error) {
	res, err := s.Compute(ctx, q)
	if err != nil {
		return nil, err
	}

	sum := res.Summaries
	return &DashboardResponse{
		Dataset: s.DatasetInfo(),
		Filters: res.Filters,
		Totals: TotalsView{
			Revenue:        sum.Totals.Revenue,
			Count:          sum.Totals.Count,
			RevenueDisplay: display.Magnitude(sum.Totals.Revenue, s.opts.CurrencyPrefix),
			CountDisplay:   display.Count(sum.Totals.Count),
		},
		Revenue: MeasureView{
			ByState:    sum.RevenueByState,
			ByMonth:    sum.RevenueByMonth,
			ByCategory: sum.RevenueByCategory,
			TopStates:  aggregation.TopN(sum.RevenueByState, s.opts.TopStates),
		},
		Sales: MeasureView{
			ByState:    sum.SalesByState,
			ByMonth:    sum.SalesByMonth,
			ByCategory: sum.SalesByCategory,
			TopStates:  aggregation.TopN(sum.SalesByState, s.opts.TopStates),
		},
		Salespeople: SalespeopleView{
			Table:        sum.Salespeople,
			TopByRevenue: aggregation.TopSalespeopleByRevenue(sum.Salespeople, res.Filters.Top),
			TopByCount:   aggregation.TopSalespeopleByCount(sum.Salespeople, res.Filters.Top),
			Top:          res.Filters.Top,
		},
		Warnings: res.Warnings,
	}, nil
}

// Summary returns one named summary for the filtered view.
func (s *Service) Summary(ctx context.Context, name string, q Query) (*SummaryResponse, error) {
	pick, ok := summaries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSummaryNotFound, name)
	}

	res, err := s.Compute(ctx, q)
	if err != nil {
		return nil, err
	}

	return &SummaryResponse{
		Dataset:  s.DatasetInfo(),
		Filters:  res.Filters,
		Name:     name,
		Rows:     pick(res.Summaries),
		Warnings: res.Warnings,
	}, nil
}

// Records returns the filtered raw records.
func (s *Service) Records(ctx context.Context, q Query) (*RecordsResponse, error) {
	res, err := s.Compute(ctx, q)
	if err != nil {
		return nil, err
	}

	return &RecordsResponse{
		Dataset:  s.DatasetInfo(),
		Filters:  res.Filters,
		Count:    len(res.Records),
		Records:  res.Records,
		Warnings: res.Warnings,
	}, nil
}

// Options lists the control values: region options (country first), year and
// Top-N bounds, and the distinct salespeople of the full dataset.
func (s *Service) Options() OptionsResponse {
	people := make([]string, len(s.salespeople))
	copy(people, s.salespeople)

	return OptionsResponse{
		Regions:     s.regions.Options(),
		Years:       Bounds{Min: s.opts.YearMin, Max: s.opts.YearMax},
		Top:         Bounds{Min: s.opts.TopMin, Max: s.opts.TopMax, Default: s.opts.TopDefault},
		Salespeople: people,
		Summaries:   SummaryNames(),
	}
}

// DatasetInfo describes the loaded snapshot.
func (s *Service) DatasetInfo() DatasetInfo {
	return DatasetInfo{
		Source:      s.dataset.Source,
		Fingerprint: s.dataset.Fingerprint,
		Records:     s.dataset.Len(),
		LoadedAt:    s.dataset.LoadedAt,
	}
}

// Ping reports dataset readiness for the health endpoint. The snapshot is
// immutable, so a constructed service is always ready.
func (s *Service) Ping(ctx context.Context) error {
	return ctx.Err()
}

// HealthDetails exposes the dataset snapshot on the health endpoint.
func (s *Service) HealthDetails() interface{} {
	return s.DatasetInfo()
}

func (s *Service) normalizeAndValidate(q Query) (Filters, error) {
	var f Filters

	switch name := strings.TrimSpace(q.Region); {
	case s.regions.IsCountry(name):
		f.Region = s.regions.Country().Name
	default:
		r, ok := s.regions.Lookup(name)
		if !ok {
			return f, invalidQueryf("unknown region: %s (must be one of %s)", name, strings.Join(s.regions.Options(), ", "))
		}
		f.Region = r.Name
	}

	f.AllYears = true
	if raw := strings.TrimSpace(q.AllYears); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			return f, invalidQueryf("invalid all_years: %s (must be true or false)", raw)
		}
		f.AllYears = all
	}

	if raw := strings.TrimSpace(q.Year); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return f, invalidQueryf("invalid year: %s (must be an integer)", raw)
		}
		if year < s.opts.YearMin || year > s.opts.YearMax {
			return f, invalidQueryf("year %d out of range [%d, %d]", year, s.opts.YearMin, s.opts.YearMax)
		}
		if strings.TrimSpace(q.AllYears) == "" {
			f.AllYears = false
		}
		if !f.AllYears {
			f.Year = &year
		}
	} else if !f.AllYears {
		return f, invalidQueryf("year is required when all_years is false")
	}

	f.Salespeople = splitNames(append(append([]string(nil), q.Salespeople...), q.Salesperson...))

	f.Top = s.opts.TopDefault
	if raw := strings.TrimSpace(q.Top); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil {
			return f, invalidQueryf("invalid top: %s (must be an integer)", raw)
		}
		if top < s.opts.TopMin || top > s.opts.TopMax {
			return f, invalidQueryf("top %d out of range [%d, %d]", top, s.opts.TopMin, s.opts.TopMax)
		}
		f.Top = top
	}

	return f, nil
}

// splitNames flattens comma separated values, trims them and drops blanks
// and duplicates while keeping the first occurrence order.
func splitNames(values []string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// key identifies a normalized query for request coalescing.
func (f Filters) key() string {
	year := "all"
	if f.Year != nil {
		year = strconv.Itoa(*f.Year)
	}
	return fmt.Sprintf("%s|%s|%d|%s", f.Region, year, f.Top, strings.Join(f.Salespeople, "\x1f"))
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
