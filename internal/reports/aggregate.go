// Package reports derives dashboard views from a ledger snapshot. All
// functions are pure: they never mutate their input and never touch the
// store.
package reports

import (
	"errors"
	"math"
	"sort"

	"finbook/internal/core"
)

type Timeframe string

const (
	Monthly Timeframe = "monthly"
	Yearly  Timeframe = "yearly"
)

var ErrInvalidTimeframe = errors.New("timeframe must be monthly or yearly")

func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case Monthly, Yearly:
		return Timeframe(s), nil
	default:
		return "", ErrInvalidTimeframe
	}
}

type (
	// TimeBucket is one period of the income/expense series.
	TimeBucket struct {
		Period   string
		Income   core.Money
		Expenses core.Money
	}

	// CategoryShare is one slice of the expense breakdown. Category is
	// the display label; Key is the normalized grouping key.
	CategoryShare struct {
		Category string
		Key      string
		Value    core.Money
	}

	// Totals summarizes a snapshot. Net may be negative.
	Totals struct {
		Income   core.Money
		Expenses core.Money
		Net      core.Money
	}
)

var monthOrder = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// BuildTimeSeries buckets the snapshot by month abbreviation or year.
// Monthly buckets sort by calendar order, not lexically ("Apr" must not
// precede "Jan"); yearly buckets sort ascending. Periods with no
// activity are omitted, never zero-padded.
func BuildTimeSeries(txs []core.Transaction, tf Timeframe) []TimeBucket {
	buckets := make(map[string]*TimeBucket)
	for _, tx := range txs {
		label := tx.Date.MonthLabel()
		if tf == Yearly {
			label = tx.Date.YearLabel()
		}
		b, ok := buckets[label]
		if !ok {
			b = &TimeBucket{Period: label}
			buckets[label] = b
		}
		switch tx.Type {
		case core.Income:
			b.Income = b.Income.Add(tx.Amount)
		case core.Expense:
			b.Expenses = b.Expenses.Add(tx.Amount)
		}
	}

	out := make([]TimeBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	if tf == Monthly {
		sort.Slice(out, func(i, j int) bool {
			return monthOrder[out[i].Period] < monthOrder[out[j].Period]
		})
	} else {
		sort.Slice(out, func(i, j int) bool {
			return out[i].Period < out[j].Period
		})
	}
	return out
}

// BuildCategoryBreakdown groups expense transactions by normalized
// category key, descending by value. Ties break by key ascending so the
// output is deterministic. Income never contributes.
func BuildCategoryBreakdown(txs []core.Transaction) []CategoryShare {
	type entry struct {
		display string
		cents   int64
	}
	groups := make(map[string]*entry)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		cat, err := core.NormalizeCategory(tx.Category)
		if err != nil {
			continue
		}
		e, ok := groups[cat.Key]
		if !ok {
			e = &entry{display: cat.Display}
			groups[cat.Key] = e
		}
		e.cents += tx.Amount.Cents
	}

	out := make([]CategoryShare, 0, len(groups))
	for key, e := range groups {
		out = append(out, CategoryShare{
			Category: e.display,
			Key:      key,
			Value:    core.Money{Cents: e.cents},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value.Cents != out[j].Value.Cents {
			return out[i].Value.Cents > out[j].Value.Cents
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TopCategories returns the first n entries of a breakdown, fewer when
// the breakdown is shorter. n <= 0 yields an empty slice.
func TopCategories(breakdown []CategoryShare, n int) []CategoryShare {
	if n <= 0 {
		return nil
	}
	if n > len(breakdown) {
		n = len(breakdown)
	}
	return breakdown[:n]
}

// BuildTotals sums the snapshot; net = income - expenses.
func BuildTotals(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expenses = t.Expenses.Add(tx.Amount)
		}
	}
	t.Net = t.Income.Sub(t.Expenses)
	return t
}

// AlertThreshold is the utilization ratio at which a budget alerts.
const AlertThreshold = 0.9

// Utilization returns spent/limit. A zero limit never faults: it yields
// 0 when nothing is spent, otherwise +Inf (the "always alert" sentinel,
// see Unbounded).
func Utilization(b core.Budget) float64 {
	if b.Limit.Cents == 0 {
		if b.Spent.Cents == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return float64(b.Spent.Cents) / float64(b.Limit.Cents)
}

// Unbounded reports whether a utilization value is the zero-limit
// sentinel.
func Unbounded(u float64) bool {
	return math.IsInf(u, 1)
}

// Alert reports whether the budget crossed the alert threshold.
func Alert(b core.Budget) bool {
	return Utilization(b) >= AlertThreshold
}
