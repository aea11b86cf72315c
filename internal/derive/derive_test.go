package derive

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/retailstar/internal/model"
)

func TestAgeBucket_Boundaries(t *testing.T) {
	tests := []struct {
		age  int
		want string
	}{
		{math.MinInt, "<18"},
		{-5, "<18"},
		{0, "<18"},
		{17, "<18"},
		{18, "18-25"},
		{25, "18-25"},
		{26, "26-35"},
		{35, "26-35"},
		{36, "36-45"},
		{45, "36-45"},
		{46, "46-60"},
		{60, "46-60"},
		{61, "60+"},
		{150, "60+"},
		{math.MaxInt, "60+"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeBucket(tt.age), "AgeBucket(%d)", tt.age)
	}
}

// Every age maps to exactly one range, and each range is a contiguous run.
func TestAgeBucket_PartitionsIntegers(t *testing.T) {
	ranges := []struct {
		label  string
		lo, hi int
	}{
		{"<18", math.MinInt, 17},
		{"18-25", 18, 25},
		{"26-35", 26, 35},
		{"36-45", 36, 45},
		{"46-60", 46, 60},
		{"60+", 61, math.MaxInt},
	}

	for age := -1000; age <= 1000; age++ {
		matches := 0
		for _, r := range ranges {
			if age >= r.lo && age <= r.hi {
				matches++
				assert.Equal(t, r.label, AgeBucket(age), "age %d", age)
			}
		}
		assert.Equal(t, 1, matches, "age %d must fall in exactly one range", age)
	}

	// Ranges are adjacent: no gap between consecutive ranges.
	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].hi+1, ranges[i].lo, "gap before %s", ranges[i].label)
	}
}

func TestEnrich(t *testing.T) {
	raw := model.RawRecord{
		TransactionID: "7",
		CustomerID:    " CUST007",
		Date:          "2023-08-15",
		Age:           29,
		Gender:        "female",
		Category:      "beauty",
		Quantity:      3,
		UnitPrice:     decimal.RequireFromString("25.50"),
		TotalAmount:   decimal.RequireFromString("80"),
	}

	got := Enrich(raw)

	assert.Equal(t, raw, got.Raw)
	assert.Equal(t, "CUST007", got.CustomerID)
	assert.Equal(t, "Female", got.Gender)
	assert.Equal(t, "Beauty", got.Category)
	assert.Equal(t, model.NewDate(2023, time.August, 15), got.Date)
	assert.True(t, got.AmountCalc.Equal(decimal.RequireFromString("76.50")), "calc %s", got.AmountCalc)
	assert.True(t, got.AmountDiff.Equal(decimal.RequireFromString("3.50")), "diff %s", got.AmountDiff)
	assert.Equal(t, 2023, got.Year)
	assert.Equal(t, 8, got.Month)
	assert.Equal(t, 3, got.Quarter)
	assert.Equal(t, "26-35", got.AgeGroup)
}

func TestEnrich_UnparseableDate(t *testing.T) {
	got := Enrich(model.RawRecord{
		Date:        "2024-13-40",
		Age:         40,
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(10),
		TotalAmount: decimal.NewFromInt(10),
	})

	assert.False(t, got.Date.Valid)
	assert.Zero(t, got.Year)
	assert.Zero(t, got.Month)
	assert.Zero(t, got.Quarter)
	assert.True(t, got.AmountDiff.IsZero())
}

func TestEnrich_NegativeQuantity(t *testing.T) {
	got := Enrich(model.RawRecord{
		Date:        "2024-01-10",
		Quantity:    -1,
		UnitPrice:   decimal.NewFromInt(5),
		TotalAmount: decimal.NewFromInt(-5),
	})
	assert.True(t, got.AmountCalc.Equal(decimal.NewFromInt(-5)))
	assert.True(t, got.AmountDiff.IsZero())
}

func TestEnrich_UnparsedNumbers(t *testing.T) {
	got := Enrich(model.RawRecord{
		Date:        "2024-01-10",
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(5),
		TotalAmount: decimal.NewFromInt(99),
		Unparsed:    model.FieldAge | model.FieldTotalAmount,
	})
	assert.True(t, got.AmountCalc.IsZero())
	assert.True(t, got.AmountDiff.IsZero())
	assert.Empty(t, got.AgeGroup)
	assert.True(t, got.Date.Valid)
}

func TestEnrichAll_PreservesOrder(t *testing.T) {
	raws := []model.RawRecord{{TransactionID: "a"}, {TransactionID: "b"}, {TransactionID: "c"}}
	got := EnrichAll(raws)
	assert.Len(t, got, 3)
	for i := range raws {
		assert.Equal(t, raws[i].TransactionID, got[i].Raw.TransactionID)
	}
}
