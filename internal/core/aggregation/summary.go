package aggregation

import (
	"sort"
	"time"

	"github.com/aevon-lab/salesdash/internal/core/sales"
	"github.com/shopspring/decimal"
)

// groupState is the running aggregate of one grouping key.
type groupState struct {
	value decimal.Decimal
	// first is the index of the first record in the group.
	first int
}

// fold reduces records per key with the given operator. The returned keys are
// in first-appearance order.
func fold(records []sales.Record, op string, key func(sales.Record) string) ([]string, map[string]groupState) {
	reducer := Operators[op]
	order := make([]string, 0)
	groups := make(map[string]groupState)

	for i, rec := range records {
		k := key(rec)
		state, exists := groups[k]
		if !exists {
			order = append(order, k)
			groups[k] = groupState{value: reducer.Initial(rec.Price), first: i}
			continue
		}
		state.value = reducer.Apply(state.value, rec.Price)
		groups[k] = state
	}
	return order, groups
}

func byState(records []sales.Record, op string) []StateRow {
	order, groups := fold(records, op, func(r sales.Record) string { return r.State })

	rows := make([]StateRow, 0, len(order))
	for _, state := range order {
		g := groups[state]
		rep := records[g.first]
		rows = append(rows, StateRow{
			State:     state,
			Latitude:  rep.Latitude,
			Longitude: rep.Longitude,
			Value:     g.value,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value.GreaterThan(rows[j].Value)
	})
	return rows
}

func byMonth(records []sales.Record, op string) []MonthRow {
	if len(records) == 0 {
		return []MonthRow{}
	}

	reducer := Operators[op]
	buckets := make(map[time.Time]decimal.Decimal)
	first, last := MonthEnd(records[0].PurchaseDate), MonthEnd(records[0].PurchaseDate)

	for _, rec := range records {
		monthEnd := MonthEnd(rec.PurchaseDate)
		if monthEnd.Before(first) {
			first = monthEnd
		}
		if monthEnd.After(last) {
			last = monthEnd
		}
		current, exists := buckets[monthEnd]
		if !exists {
			buckets[monthEnd] = reducer.Initial(rec.Price)
			continue
		}
		buckets[monthEnd] = reducer.Apply(current, rec.Price)
	}

	// Months without records between first and last are emitted with zero.
	monthEnds := monthEndsBetween(first, last)
	rows := make([]MonthRow, 0, len(monthEnds))
	for _, monthEnd := range monthEnds {
		value, ok := buckets[monthEnd]
		if !ok {
			value = decimal.Zero
		}
		rows = append(rows, MonthRow{
			MonthEnd:  monthEnd,
			Year:      monthEnd.Year(),
			Month:     int(monthEnd.Month()),
			MonthName: monthEnd.Month().String(),
			Value:     value,
		})
	}
	return rows
}

func byCategory(records []sales.Record, op string) []CategoryRow {
	order, groups := fold(records, op, func(r sales.Record) string { return r.ProductCategory })
	sort.Strings(order)

	rows := make([]CategoryRow, 0, len(order))
	for _, category := range order {
		rows = append(rows, CategoryRow{Category: category, Value: groups[category].value})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value.GreaterThan(rows[j].Value)
	})
	return rows
}

// RevenueByState sums price per state, descending by revenue.
func RevenueByState(records []sales.Record) []StateRow { return byState(records, OpSum) }

// SalesByState counts records per state, descending by count.
func SalesByState(records []sales.Record) []StateRow { return byState(records, OpCount) }

// RevenueByMonth sums price per month-end bucket, chronologically.
func RevenueByMonth(records []sales.Record) []MonthRow { return byMonth(records, OpSum) }

// SalesByMonth counts records per month-end bucket, chronologically.
func SalesByMonth(records []sales.Record) []MonthRow { return byMonth(records, OpCount) }

// RevenueByCategory sums price per product category, descending by revenue.
func RevenueByCategory(records []sales.Record) []CategoryRow { return byCategory(records, OpSum) }

// SalesByCategory counts records per product category, descending by count.
func SalesByCategory(records []sales.Record) []CategoryRow { return byCategory(records, OpCount) }

// BySalesperson computes sum and count of price per salesperson, ordered by name.
func BySalesperson(records []sales.Record) []SalespersonRow {
	order, sums := fold(records, OpSum, func(r sales.Record) string { return r.Salesperson })
	_, counts := fold(records, OpCount, func(r sales.Record) string { return r.Salesperson })
	sort.Strings(order)

	rows := make([]SalespersonRow, 0, len(order))
	for _, name := range order {
		rows = append(rows, SalespersonRow{
			Salesperson: name,
			Sum:         sums[name].value,
			Count:       counts[name].value.IntPart(),
		})
	}
	return rows
}

// TopSalespeopleByRevenue returns the n salespeople with the highest revenue.
func TopSalespeopleByRevenue(rows []SalespersonRow, n int) []SalespersonRow {
	sorted := append([]SalespersonRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sum.GreaterThan(sorted[j].Sum)
	})
	return TopN(sorted, n)
}

// TopSalespeopleByCount returns the n salespeople with the most sales.
func TopSalespeopleByCount(rows []SalespersonRow, n int) []SalespersonRow {
	sorted := append([]SalespersonRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	return TopN(sorted, n)
}

// TopN truncates an already sorted summary to its first n rows.
// Fewer than n rows returns all of them; n <= 0 returns none.
func TopN[T any](rows []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]T, n)
	copy(out, rows[:n])
	return out
}

// ComputeTotals returns total revenue and record count.
func ComputeTotals(records []sales.Record) Totals {
	revenue := decimal.Zero
	for _, rec := range records {
		revenue = revenue.Add(rec.Price)
	}
	return Totals{Revenue: revenue, Count: int64(len(records))}
}

// Summarize recomputes every summary from the record set.
// An empty record set yields empty (non-nil) summaries and zero totals.
func Summarize(records []sales.Record) Summaries {
	return Summaries{
		Totals:            ComputeTotals(records),
		RevenueByState:    RevenueByState(records),
		RevenueByMonth:    RevenueByMonth(records),
		RevenueByCategory: RevenueByCategory(records),
		SalesByState:      SalesByState(records),
		SalesByMonth:      SalesByMonth(records),
		SalesByCategory:   SalesByCategory(records),
		Salespeople:       BySalesperson(records),
	}
}
