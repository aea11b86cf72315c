// Package partition splits classified records into clean and rejected sets
// and summarizes the outcome.
package partition

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/retailstar/internal/model"
	"github.com/cleared-dev/retailstar/internal/quality"
)

// Rejected is a record that failed at least one rule.
type Rejected struct {
	Record  model.EnrichedRecord
	Reasons quality.Reasons
}

// Result is the outcome of Split. Clean and Rejected keep input order.
type Result struct {
	Clean    []model.EnrichedRecord
	Rejected []Rejected

	reasons []ReasonCount
	totals  AmountTotals
}

// ReasonCount is how many records were rejected with one composite reason.
type ReasonCount struct {
	Reason string
	Count  int
}

// AmountTotals are control sums over the whole input set.
type AmountTotals struct {
	Source decimal.Decimal // sum of stated amounts
	Calc   decimal.Decimal // sum of recomputed amounts
}

// Diff returns Source - Calc.
func (t AmountTotals) Diff() decimal.Decimal {
	return t.Source.Sub(t.Calc)
}

// Summary reports the counts of a Result.
type Summary struct {
	Total    int
	Clean    int
	Rejected int
	Reasons  []ReasonCount // descending count, ties by first appearance
	Amounts  AmountTotals
}

// Split routes each record by its verdict. verdicts must be index-aligned
// with recs.
func Split(recs []model.EnrichedRecord, verdicts []quality.Reasons) (*Result, error) {
	if len(recs) != len(verdicts) {
		return nil, fmt.Errorf("partition: %d records but %d verdicts", len(recs), len(verdicts))
	}

	res := &Result{
		totals: AmountTotals{Source: decimal.Zero, Calc: decimal.Zero},
	}
	index := make(map[string]int)
	for i, rec := range recs {
		res.totals.Source = res.totals.Source.Add(rec.Raw.TotalAmount)
		res.totals.Calc = res.totals.Calc.Add(rec.AmountCalc)

		v := verdicts[i]
		if v.Clean() {
			res.Clean = append(res.Clean, rec)
			continue
		}
		res.Rejected = append(res.Rejected, Rejected{Record: rec, Reasons: v})

		key := v.String()
		if j, ok := index[key]; ok {
			res.reasons[j].Count++
			continue
		}
		index[key] = len(res.reasons)
		res.reasons = append(res.reasons, ReasonCount{Reason: key, Count: 1})
	}
	return res, nil
}

// Summary returns the counts and the ranked reason frequencies.
func (r *Result) Summary() Summary {
	return Summary{
		Total:    len(r.Clean) + len(r.Rejected),
		Clean:    len(r.Clean),
		Rejected: len(r.Rejected),
		Reasons:  rank(r.reasons),
		Amounts:  r.totals,
	}
}

// rank orders counts descending. counts is in first-seen order, and the
// stable sort keeps ties that way.
func rank(counts []ReasonCount) []ReasonCount {
	out := slices.Clone(counts)
	slices.SortStableFunc(out, func(a, b ReasonCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

// Top returns at most n of the ranked reasons; none when n is negative.
func (s Summary) Top(n int) []ReasonCount {
	n = max(n, 0)
	if n < len(s.Reasons) {
		return s.Reasons[:n]
	}
	return s.Reasons
}
