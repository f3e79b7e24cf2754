// Package points maps the day a debit is processed to the loyalty points it earns.
package points

import "time"

var table = map[time.Weekday]int64{
	time.Sunday:    25,
	time.Monday:    7,
	time.Tuesday:   6,
	time.Wednesday: 2,
	time.Thursday:  10,
	time.Friday:    15,
	time.Saturday:  20,
}

// For returns the points awarded for a debit processed at t, judged by t's
// weekday in t's own location.
func For(t time.Time) int64 {
	return table[t.Weekday()]
}

// Table returns a copy of the weekday award table.
func Table() map[time.Weekday]int64 {
	out := make(map[time.Weekday]int64, len(table))
	for d, p := range table {
		out[d] = p
	}
	return out
}
