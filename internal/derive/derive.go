// Package derive computes the derived fields of an enriched sales record.
package derive

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/retailstar/internal/id"
	"github.com/cleared-dev/retailstar/internal/model"
	"github.com/cleared-dev/retailstar/internal/normalize"
)

// Age group labels, in policy order.
const (
	AgeUnder18 = "<18"
	Age18to25  = "18-25"
	Age26to35  = "26-35"
	Age36to45  = "36-45"
	Age46to60  = "46-60"
	AgeOver60  = "60+"
)

// AgeBucket maps an age to its group label. It is total over all ints.
func AgeBucket(age int) string {
	switch {
	case age < 18:
		return AgeUnder18
	case age <= 25:
		return Age18to25
	case age <= 35:
		return Age26to35
	case age <= 45:
		return Age36to45
	case age <= 60:
		return Age46to60
	default:
		return AgeOver60
	}
}

// Enrich normalizes raw and computes its derived fields.
func Enrich(raw model.RawRecord) model.EnrichedRecord {
	f := normalize.Normalize(raw)

	rec := model.EnrichedRecord{
		Raw:        raw,
		CustomerID: f.CustomerID,
		Gender:     f.Gender,
		Category:   f.Category,
		Date:       f.Date,
		AmountCalc: decimal.Zero,
		AmountDiff: decimal.Zero,
	}
	if raw.AmountKnown() {
		rec.AmountCalc = decimal.NewFromInt(int64(raw.Quantity)).Mul(raw.UnitPrice)
		rec.AmountDiff = raw.TotalAmount.Sub(rec.AmountCalc)
	}
	if raw.Parsed(model.FieldAge) {
		rec.AgeGroup = AgeBucket(raw.Age)
	}
	if f.Date.Valid {
		rec.Year = f.Date.Time.Year()
		rec.Month = int(f.Date.Time.Month())
		rec.Quarter = id.Quarter(rec.Month)
	}
	return rec
}

// EnrichAll enriches records in order.
func EnrichAll(raws []model.RawRecord) []model.EnrichedRecord {
	out := make([]model.EnrichedRecord, len(raws))
	for i, raw := range raws {
		out[i] = Enrich(raw)
	}
	return out
}
