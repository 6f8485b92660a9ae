// Package recurring implements the recurring-transaction materialization
// engine: it detects recurring series, decides which calendar months are
// missing an instance, and produces the rows to insert, with end-of-month
// date clamping and duplicate suppression.
package recurring

import "fintrack/internal/core"

// SeriesKey identifies a recurring series. Two transactions with the same
// description and amount but different categories or accounts are distinct
// series on purpose: unrelated recurring charges may collide on
// description+amount and must not be merged.
type SeriesKey struct {
	Description string
	AmountCents int64
	Category    string
	Account     string
}

// KeyOf derives the series key of a transaction.
func KeyOf(tx core.Transaction) SeriesKey {
	return SeriesKey{
		Description: tx.Description,
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		Account:     tx.Account,
	}
}

// ExtractSeries groups recurring transactions into unique series, keeping
// the first transaction encountered as the representative of each series.
// Input ordering is caller-determined, typically most-recent-first. Empty
// input yields an empty map.
func ExtractSeries(txs []core.Transaction) map[SeriesKey]core.Transaction {
	series := make(map[SeriesKey]core.Transaction, len(txs))
	for _, tx := range txs {
		if !tx.IsRecurring {
			continue
		}
		key := KeyOf(tx)
		if _, ok := series[key]; !ok {
			series[key] = tx
		}
	}
	return series
}
