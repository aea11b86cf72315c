package dataset

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/retailstar/internal/derive"
	"github.com/cleared-dev/retailstar/internal/model"
	"github.com/cleared-dev/retailstar/internal/quality"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleRows() []Row {
	good := derive.Enrich(model.RawRecord{
		TransactionID: "1",
		CustomerID:    "CUST001",
		Date:          "2023-11-24",
		Age:           34,
		Gender:        "male",
		Category:      "beauty",
		Quantity:      3,
		UnitPrice:     dec("50.25"),
		TotalAmount:   dec("150.75"),
	})
	bad := derive.Enrich(model.RawRecord{
		TransactionID: "7",
		CustomerID:    "CUST007",
		Date:          "2024-13-40",
		Age:           150,
		Gender:        "Male",
		Category:      "Clothing, Kids",
		Quantity:      3,
		UnitPrice:     dec("10"),
		TotalAmount:   dec("30"),
	})
	return []Row{
		{Record: good},
		{Record: bad, Reasons: quality.Reasons{quality.InvalidDate, quality.InvalidAge}},
	}
}

func TestMarshalRow(t *testing.T) {
	rows := sampleRows()

	got := MarshalRow(rows[0])
	assert.Equal(t, []string{
		"1", "2023-11-24", "2023-11-24", "CUST001", "Male", "34", "Beauty", "3",
		"50.25", "150.75", "150.75", "0", "2023", "11", "4", "26-35", "",
	}, got)

	got = MarshalRow(rows[1])
	assert.Equal(t, "2024-13-40", got[colDateRaw])
	assert.Equal(t, "", got[colDate])
	assert.Equal(t, "", got[colYear])
	assert.Equal(t, "", got[colQuarter])
	assert.Equal(t, "INVALID_DATE|INVALID_AGE", got[colReason])
}

func TestRoundTrip(t *testing.T) {
	rows := sampleRows()

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, rows))
	assert.True(t, strings.HasPrefix(buf.String(), "transaction_id,date_raw,"))

	got, err := ReadRows(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range rows {
		want, have := rows[i].Record, got[i].Record
		assert.Equal(t, want.Raw.TransactionID, have.Raw.TransactionID)
		assert.Equal(t, want.Raw.Date, have.Raw.Date)
		assert.Equal(t, want.Date, have.Date)
		assert.Equal(t, want.CustomerID, have.CustomerID)
		assert.Equal(t, want.Gender, have.Gender)
		assert.Equal(t, want.Category, have.Category)
		assert.Equal(t, want.Raw.Age, have.Raw.Age)
		assert.Equal(t, want.Raw.Quantity, have.Raw.Quantity)
		assert.True(t, want.Raw.UnitPrice.Equal(have.Raw.UnitPrice))
		assert.True(t, want.Raw.TotalAmount.Equal(have.Raw.TotalAmount))
		assert.True(t, want.AmountCalc.Equal(have.AmountCalc))
		assert.True(t, want.AmountDiff.Equal(have.AmountDiff))
		assert.Equal(t, want.Year, have.Year)
		assert.Equal(t, want.Month, have.Month)
		assert.Equal(t, want.Quarter, have.Quarter)
		assert.Equal(t, want.AgeGroup, have.AgeGroup)
		assert.Equal(t, rows[i].Reasons, got[i].Reasons)
	}
}

func TestRoundTrip_UnparsedCells(t *testing.T) {
	rec := derive.Enrich(model.RawRecord{
		TransactionID: "13",
		CustomerID:    "CUST013",
		Date:          "2023-06-01",
		Gender:        "Female",
		Category:      "Beauty",
		Quantity:      2,
		UnitPrice:     dec("25"),
		Unparsed:      model.FieldAge | model.FieldTotalAmount,
	})
	row := Row{Record: rec, Reasons: quality.Reasons{quality.InvalidAge, quality.AmountMismatch}}

	fields := MarshalRow(row)
	assert.Equal(t, "", fields[colAge])
	assert.Equal(t, "2", fields[colQuantity])
	assert.Equal(t, "", fields[colTotal])
	assert.Equal(t, "", fields[colTotalCalc])
	assert.Equal(t, "", fields[colAmountDiff])
	assert.Equal(t, "", fields[colAgeGroup])

	got, err := UnmarshalRow(fields)
	require.NoError(t, err)
	assert.Equal(t, model.FieldAge|model.FieldTotalAmount, got.Record.Raw.Unparsed)
	assert.Equal(t, 2, got.Record.Raw.Quantity)
	assert.True(t, got.Record.AmountCalc.IsZero())
	assert.Equal(t, row.Reasons, got.Reasons)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales_clean.csv")
	require.NoError(t, WriteFile(path, sampleRows()[:1]))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Reasons.Clean())
	assert.Len(t, Records(got), 1)
}

func TestReadRows_Empty(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestReadRows_HeaderOnly(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRows_WrongHeader(t *testing.T) {
	in := strings.Replace(Header, "date_raw", "raw_date", 1) + "\n"
	_, err := ReadRows(strings.NewReader(in))
	assert.ErrorContains(t, err, "unexpected header")
}

func TestUnmarshalRow_Errors(t *testing.T) {
	base := MarshalRow(sampleRows()[0])

	bad := append([]string(nil), base...)
	bad[colAge] = "x"
	_, err := UnmarshalRow(bad)
	assert.Error(t, err)

	bad = append([]string(nil), base...)
	bad[colUnitPrice] = "$1"
	_, err = UnmarshalRow(bad)
	assert.Error(t, err)

	bad = append([]string(nil), base...)
	bad[colReason] = "NOPE"
	_, err = UnmarshalRow(bad)
	assert.ErrorContains(t, err, "unknown reason code")

	_, err = UnmarshalRow(base[:3])
	assert.ErrorContains(t, err, "expected 17 fields")
}
