package aggregation

import "time"

// MonthEnd returns the last calendar day of t's month at UTC midnight.
// It is the bucket label for monthly summaries.
// Example: MonthEnd(2021-02-10) → 2021-02-28
func MonthEnd(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

// nextMonthEnd advances a month-end label by one month.
func nextMonthEnd(monthEnd time.Time) time.Time {
	year, month, _ := monthEnd.Date()
	return time.Date(year, month+2, 0, 0, 0, 0, 0, time.UTC)
}

// monthEndsBetween lists every month-end from first to last inclusive.
func monthEndsBetween(first, last time.Time) []time.Time {
	var out []time.Time
	for cur := MonthEnd(first); !cur.After(last); cur = nextMonthEnd(cur) {
		out = append(out, cur)
	}
	return out
}
