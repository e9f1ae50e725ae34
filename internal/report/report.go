// Package report resolves calendar reporting periods and aggregates ledger
// snapshots into period-bounded financial documents.
package report

import (
	"sort"

	"mailledger/internal/core"
)

// Document is the computed, read-only aggregation for one period. It is
// rebuilt from a ledger snapshot on every request and never cached.
type Document struct {
	Period    Period
	Buckets   map[core.Category][]core.Entry
	Subtotals map[core.Category]core.Money

	TotalAssets      core.Money
	TotalLiabilities core.Money
	TotalEquity      core.Money
	TotalRevenue     core.Money
	TotalExpenses    core.Money

	// NetIncome is the income-statement net, revenue minus expenses. It is
	// independent of the balance-sheet totals.
	NetIncome core.Money
}

// Build filters the snapshot to the period, groups the surviving entries into
// the six fixed buckets, and computes subtotals and totals. All six buckets
// are always present, possibly empty. Within a bucket, entries keep their
// relative order from the snapshot. Build never mutates the snapshot, and
// building twice from the same snapshot yields identical documents.
func Build(snapshot []core.Entry, p Period) Document {
	doc := Document{
		Period:    p,
		Buckets:   make(map[core.Category][]core.Entry, len(core.Categories)),
		Subtotals: make(map[core.Category]core.Money, len(core.Categories)),
	}
	for _, cat := range core.Categories {
		doc.Buckets[cat] = []core.Entry{}
	}

	for _, e := range snapshot {
		if !p.Contains(e.OccurredOn) {
			continue
		}
		doc.Buckets[e.Category] = append(doc.Buckets[e.Category], e)
		doc.Subtotals[e.Category] = doc.Subtotals[e.Category].Add(e.Amount)
	}

	doc.TotalAssets = doc.Subtotals[core.Assets]
	doc.TotalLiabilities = doc.Subtotals[core.Liabilities]
	doc.TotalEquity = doc.Subtotals[core.Equity]
	doc.TotalRevenue = doc.Subtotals[core.Revenue]
	doc.TotalExpenses = doc.Subtotals[core.Expenses]
	doc.NetIncome = doc.TotalRevenue.Sub(doc.TotalExpenses)

	return doc
}

// Chronological flattens the document's buckets into one combined view sorted
// by entry date, newest first. This is a presentation concern: the buckets
// themselves keep insertion order and are not touched.
func Chronological(doc Document) []core.Entry {
	var all []core.Entry
	for _, cat := range core.Categories {
		all = append(all, doc.Buckets[cat]...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].OccurredOn.After(all[j].OccurredOn)
	})
	return all
}
