package recurring

import (
	"sort"

	"fintrack/internal/core"
)

// ForwardMonths is how many monthly instances are seeded when a transaction
// is first marked recurring: the origin month plus the next eleven.
const ForwardMonths = 12

// PlanTopUp is the pure core of the monthly top-up: given every recurring
// transaction on record and today's date, it returns one new instance for
// each series that has no transaction dated inside today's calendar month.
// The same function backs the interactive refresh path and the scheduled
// sweep, so the two cannot drift.
//
// Returned rows copy every field of the series representative except ID
// (assigned by the store) and Date (the origin day rolled into the current
// month). Output is ordered deterministically by series key.
func PlanTopUp(all []core.Transaction, today core.Date) []core.Transaction {
	series := ExtractSeries(all)
	if len(series) == 0 {
		return nil
	}

	year, month := today.Year(), today.Month()
	covered := make(map[SeriesKey]bool, len(series))
	for _, tx := range all {
		if tx.IsRecurring && tx.Date.SameMonth(year, month) {
			covered[KeyOf(tx)] = true
		}
	}

	keys := make([]SeriesKey, 0, len(series))
	for key := range series {
		if !covered[key] {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })

	planned := make([]core.Transaction, 0, len(keys))
	for _, key := range keys {
		rep := series[key]
		planned = append(planned, instanceOf(rep, RollIntoMonth(rep.Date, year, month)))
	}
	return planned
}

// PlanForward produces the bulk forward batch for a newly created recurring
// transaction: months dated copies of the origin, offsets 0..months-1, each
// clamped to its target month. The origin row itself is the offset-0 entry.
func PlanForward(origin core.Transaction, months int) []core.Transaction {
	planned := make([]core.Transaction, 0, months)
	for offset := 0; offset < months; offset++ {
		planned = append(planned, instanceOf(origin, RollDate(origin.Date, offset)))
	}
	return planned
}

// instanceOf copies the representative into a new instance for date. All
// fields except ID and Date carry over verbatim, metadata included.
func instanceOf(rep core.Transaction, date core.Date) core.Transaction {
	tx := rep
	tx.ID = ""
	tx.Date = date
	tx.IsRecurring = true
	return tx
}

func lessKey(a, b SeriesKey) bool {
	if a.Description != b.Description {
		return a.Description < b.Description
	}
	if a.AmountCents != b.AmountCents {
		return a.AmountCents < b.AmountCents
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	return a.Account < b.Account
}
