package core

import "sort"

// SortTransactions orders ts by date, most recent first. The sort is stable so
// records sharing a timestamp keep their relative order.
func SortTransactions(ts []Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].Date.After(ts[j].Date)
	})
}

// IsOrdered reports whether ts is non-increasing by date.
func IsOrdered(ts []Transaction) bool {
	for i := 1; i < len(ts); i++ {
		if ts[i].Date.After(ts[i-1].Date) {
			return false
		}
	}
	return true
}
