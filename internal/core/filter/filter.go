package filter

import (
	"github.com/aevon-lab/salesdash/internal/core/region"
	"github.com/aevon-lab/salesdash/internal/core/sales"
)

// Params are the three optional predicates of the filter stage.
// Zero values disable a predicate.
type Params struct {
	// Region is a region name or alias; empty or the country option means all regions.
	Region string `json:"region"`
	// Year restricts purchase_date to one calendar year; nil means all years.
	Year *int `json:"year"`
	// Salespeople restricts to these names; empty means all salespeople.
	Salespeople []string `json:"salespeople"`
}

// IsZero reports whether no predicate is active.
func (p Params) IsZero() bool {
	return p.Region == "" && p.Year == nil && len(p.Salespeople) == 0
}

// Apply narrows records by region AND year AND salespeople. The source slice
// is never modified; the result is a new slice, possibly empty.
// Region names unknown to the table disable the region predicate; callers
// validate the name first.
func Apply(records []sales.Record, p Params, regions *region.Table) []sales.Record {
	var inRegion func(state string) bool
	if regions != nil {
		inRegion = regions.Matcher(p.Region)
	}

	var people map[string]struct{}
	if len(p.Salespeople) > 0 {
		people = make(map[string]struct{}, len(p.Salespeople))
		for _, name := range p.Salespeople {
			people[name] = struct{}{}
		}
	}

	out := make([]sales.Record, 0, len(records))
	for _, rec := range records {
		if inRegion != nil && !inRegion(rec.State) {
			continue
		}
		if p.Year != nil && rec.PurchaseDate.Year() != *p.Year {
			continue
		}
		if people != nil {
			if _, ok := people[rec.Salesperson]; !ok {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}
