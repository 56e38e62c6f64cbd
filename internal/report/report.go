// Package report assembles the dashboard for a filtered view and caches it
// until the ledger changes.
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/filter"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/summary"
)

const (
	TopCategories = 10
	RecentCount   = 5
)

// Ledger is the read side of the store.
type Ledger interface {
	Revision() int64
	Transactions() []core.Transaction
	CategoryLabel(typ core.TransactionType, value string) (string, bool)
}

// Dashboard is everything shown for one view.
type Dashboard struct {
	Criteria filter.Criteria
	Count    int

	Totals               summary.Totals
	TopExpenseCategories []summary.Ranked
	ExpenseBySource      []summary.Ranked
	IncomeBySource       []summary.Ranked
	Recent               []core.Transaction

	PendingCount int
	PendingTotal decimal.Decimal
}

// Options configure a Reporter.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	Labels    core.Labels
	Metrics   metrics.Collector
	Logger    *log.Logger
}

// Reporter builds dashboards from a Ledger.
type Reporter struct {
	ledger  Ledger
	cache   *cache.LRU[string, Dashboard]
	labels  core.Labels
	metrics metrics.Collector
	logger  *log.Logger
}

func NewReporter(ledger Ledger, opts Options) *Reporter {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 32
	}
	if opts.Labels.Sources == nil {
		opts.Labels = core.DefaultLabels()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoOpCollector{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Reporter{
		ledger:  ledger,
		cache:   cache.NewLRU[string, Dashboard](opts.CacheSize, opts.CacheTTL),
		labels:  opts.Labels,
		metrics: opts.Metrics,
		logger:  opts.Logger.WithComponent(log.ComponentReport),
	}
}

// Dashboard returns the dashboard for c, from cache when the ledger has not
// changed since it was built.
func (r *Reporter) Dashboard(c filter.Criteria) Dashboard {
	m := filter.NewMatcher(c)
	key := cacheKey(r.ledger.Revision(), m)

	if d, ok := r.cache.Get(key); ok {
		r.metrics.RecordReportCache(true)
		return d
	}
	r.metrics.RecordReportCache(false)

	var view []core.Transaction
	for _, t := range r.ledger.Transactions() {
		if m.Match(t) {
			view = append(view, t)
		}
	}
	d := Build(view, r.resolveExpense, r.labels)
	d.Criteria = m.Criteria()

	r.cache.Set(key, d)
	r.logger.Debug("Dashboard built",
		log.FieldCount, d.Count,
		log.FieldYear, d.Criteria.Year,
		log.FieldMonth, d.Criteria.Month)
	return d
}

func (r *Reporter) resolveExpense(value string) (string, bool) {
	return r.ledger.CategoryLabel(core.Expense, value)
}

// Build computes a dashboard from an already filtered view.
func Build(view []core.Transaction, expenseLabel func(string) (string, bool), labels core.Labels) Dashboard {
	sourceLabel := func(key string) (string, bool) {
		return labels.Source(core.Source(key)), true
	}

	d := Dashboard{
		Count:                len(view),
		Totals:               summary.ComputeTotals(view),
		TopExpenseCategories: summary.TopN(summary.GroupByCategory(view, core.Expense), TopCategories, expenseLabel),
		ExpenseBySource:      summary.NonZero(summary.TopN(summary.GroupBySource(view, core.Expense), 0, sourceLabel)),
		IncomeBySource:       summary.NonZero(summary.TopN(summary.GroupBySource(view, core.Income), 0, sourceLabel)),
		Recent:               summary.Recent(view, RecentCount),
		PendingTotal:         summary.PendingTotal(view),
	}
	d.PendingCount = len(core.PendingIDs(view))
	return d
}

// cacheKey identifies a view at a revision. Week views also carry the start
// of the week so they roll over with the calendar.
func cacheKey(revision int64, m filter.Matcher) string {
	c := m.Criteria()
	key := fmt.Sprintf("%d|%s|%d|%d|%s|%s|%s|%s|%s",
		revision, c.Period, c.Year, c.Month, c.Type, c.Source, c.Category, c.Status, c.Location)
	if c.Period == filter.PeriodWeek {
		key += "|" + core.StartOfWeek(c.Now().In(c.Location), c.WeekStart).Format(time.DateOnly)
	}
	return key
}
