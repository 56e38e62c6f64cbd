package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/filter"
)

// criteriaFlags binds the view filters shared by list, dashboard and the
// export commands.
type criteriaFlags struct {
	period   string
	year     int
	month    string
	typ      string
	source   string
	category string
	status   string
}

func bindCriteria(fs *flag.FlagSet) *criteriaFlags {
	f := &criteriaFlags{}
	fs.StringVar(&f.period, "period", string(filter.PeriodMonth), "all, week, month or year")
	fs.IntVar(&f.year, "year", 0, "calendar year (default current)")
	fs.StringVar(&f.month, "month", "", "1-12 or all (default current)")
	fs.StringVar(&f.typ, "type", filter.All, "all, income or expense")
	fs.StringVar(&f.source, "source", filter.All, "all or a source tag")
	fs.StringVar(&f.category, "category", filter.All, "all or a category value")
	fs.StringVar(&f.status, "status", string(filter.StatusAll), "all, pending or cleared")
	return f
}

// criteria turns the parsed flags into filter criteria on top of base.
func (f *criteriaFlags) criteria(base filter.Criteria) (filter.Criteria, error) {
	c := base
	c.Period = filter.ParsePeriod(strings.ToLower(f.period))
	c.Year = f.year
	c.Type = f.typ
	c.Source = f.source
	c.Category = f.category
	c.Status = filter.ParseStatus(strings.ToLower(f.status))
	c = c.Normalize()

	switch m := strings.ToLower(strings.TrimSpace(f.month)); m {
	case "":
		c.Month = int(c.Now().In(c.Location).Month())
	case filter.All:
		c.Month = filter.AllMonths
	default:
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > 12 {
			return c, fmt.Errorf("invalid month %q: must be 1-12 or all", f.month)
		}
		c.Month = n
	}
	return c, nil
}
