package filter

import (
	"sort"

	"fintrack/internal/core"
)

// CategoryOption is one entry of a category picker.
type CategoryOption struct {
	Value string
	Label string
}

// CategoryOptions lists the distinct categories used by ts, sorted by label.
// resolve maps a category value to its label; unknown values fall back to the
// raw value.
func CategoryOptions(ts []core.Transaction, resolve func(string) (string, bool)) []CategoryOption {
	seen := make(map[string]struct{})
	var out []CategoryOption
	for _, t := range ts {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		label := t.Category
		if resolve != nil {
			if l, ok := resolve(t.Category); ok {
				label = l
			}
		}
		out = append(out, CategoryOption{Value: t.Category, Label: label})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// ParseStatus maps user input to a Status, defaulting to StatusAll.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusPending, StatusCleared:
		return Status(s)
	default:
		return StatusAll
	}
}

// ParsePeriod maps user input to a Period, defaulting to PeriodMonth.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodAll, PeriodWeek, PeriodYear, PeriodMonth:
		return Period(s)
	default:
		return PeriodMonth
	}
}
