// Package filter narrows a transaction list down to the records matching a
// set of criteria. Every predicate is optional, all predicates are ANDed and
// the input order is preserved.
package filter

import (
	"time"

	"fintrack/internal/core"
)

// All matches every value of a string-valued criterion.
const All = "all"

// AllMonths matches every month of the selected year.
const AllMonths = 0

// Period selects how the date predicate is applied.
type Period string

const (
	// PeriodMonth matches Year and Month (or every month when Month is AllMonths).
	PeriodMonth Period = "month"
	// PeriodYear matches Year only.
	PeriodYear Period = "year"
	// PeriodWeek matches dates on or after the start of the current week.
	PeriodWeek Period = "week"
	// PeriodAll applies no date predicate.
	PeriodAll Period = "all"
)

// Status filters on the reimbursement lifecycle.
type Status string

const (
	StatusAll     Status = All
	StatusPending Status = "pending"
	StatusCleared Status = "cleared"
)

// Criteria describes a view. The zero value selects every month of the
// current year, since Month 0 is AllMonths.
type Criteria struct {
	Period Period
	Year   int
	Month  int // 1-12, or AllMonths

	Type     string // All, "income" or "expense"
	Source   string // All or a source tag; untagged records count as personal
	Category string // All or a category value
	Status   Status

	// WeekStart is the first day of the week for PeriodWeek. Sunday by default.
	WeekStart time.Weekday
	// Location is used to read calendar fields from dates. Local by default.
	Location *time.Location
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// Normalize fills in defaults: period month, current year, "all" for every
// string criterion.
func (c Criteria) Normalize() Criteria {
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.Period == "" {
		c.Period = PeriodMonth
	}
	if c.Year == 0 {
		c.Year = c.Now().In(c.Location).Year()
	}
	if c.Type == "" {
		c.Type = All
	}
	if c.Source == "" {
		c.Source = All
	}
	if c.Category == "" {
		c.Category = All
	}
	if c.Status == "" {
		c.Status = StatusAll
	}
	return c
}

// Apply returns the transactions of ts that match c, in the order of ts.
func Apply(ts []core.Transaction, c Criteria) []core.Transaction {
	m := NewMatcher(c)
	out := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		if m.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Matcher evaluates normalized criteria against single transactions.
type Matcher struct {
	c         Criteria
	weekStart time.Time
}

// NewMatcher normalizes c and captures the start of the week once so that a
// whole list is judged against the same instant.
func NewMatcher(c Criteria) Matcher {
	c = c.Normalize()
	return Matcher{
		c:         c,
		weekStart: core.StartOfWeek(c.Now().In(c.Location), c.WeekStart),
	}
}

// Criteria returns the normalized criteria.
func (m Matcher) Criteria() Criteria {
	return m.c
}

// Match reports whether t satisfies every predicate.
func (m Matcher) Match(t core.Transaction) bool {
	return m.matchDate(t) &&
		m.matchType(t) &&
		m.matchSource(t) &&
		m.matchCategory(t) &&
		m.matchStatus(t)
}

func (m Matcher) matchDate(t core.Transaction) bool {
	d := t.Date.In(m.c.Location)
	switch m.c.Period {
	case PeriodAll:
		return true
	case PeriodWeek:
		return !d.Before(m.weekStart)
	case PeriodYear:
		return d.Year() == m.c.Year
	default:
		if d.Year() != m.c.Year {
			return false
		}
		return m.c.Month == AllMonths || int(d.Month()) == m.c.Month
	}
}

func (m Matcher) matchType(t core.Transaction) bool {
	return m.c.Type == All || string(t.Type) == m.c.Type
}

func (m Matcher) matchSource(t core.Transaction) bool {
	return m.c.Source == All || string(t.EffectiveSource()) == m.c.Source
}

func (m Matcher) matchCategory(t core.Transaction) bool {
	return m.c.Category == All || t.Category == m.c.Category
}

func (m Matcher) matchStatus(t core.Transaction) bool {
	switch m.c.Status {
	case StatusPending:
		return t.ReimbursementState() == core.Pending
	case StatusCleared:
		return t.ReimbursementState() == core.Cleared
	default:
		return true
	}
}
