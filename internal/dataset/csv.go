// Package dataset reads and writes classified records as CSV: the clean
// and rejected outputs of the quality stage.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/retailstar/internal/model"
	"github.com/cleared-dev/retailstar/internal/quality"
)

// Header is the CSV header shared by the clean and rejected files.
const Header = "transaction_id,date_raw,date,customer_id,gender,age,product_category,quantity,unit_price,total_amount,total_amount_calc,amount_diff,year,month,quarter,age_group,reject_reason"

const (
	numFields     = 17
	dateFormat    = "2006-01-02"
	colTxnID      = 0
	colDateRaw    = 1
	colDate       = 2
	colCustomerID = 3
	colGender     = 4
	colAge        = 5
	colCategory   = 6
	colQuantity   = 7
	colUnitPrice  = 8
	colTotal      = 9
	colTotalCalc  = 10
	colAmountDiff = 11
	colYear       = 12
	colMonth      = 13
	colQuarter    = 14
	colAgeGroup   = 15
	colReason     = 16
)

// blankField maps a raw numeric column to the field a blank cell marks.
// Derived columns are blank only as a consequence and map to nothing.
var blankField = map[int]model.NumericField{
	colAge:       model.FieldAge,
	colQuantity:  model.FieldQuantity,
	colUnitPrice: model.FieldUnitPrice,
	colTotal:     model.FieldTotalAmount,
}

// Row is an enriched record with its verdict.
type Row struct {
	Record  model.EnrichedRecord
	Reasons quality.Reasons
}

// WriteFile writes rows to path, replacing any existing file.
func WriteFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteRows(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadFile reads rows from path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// WriteRows writes the header and rows.
func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRows reads rows written by WriteRows.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading dataset CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if got := strings.Join(records[0], ","); got != Header {
		return nil, fmt.Errorf("unexpected header %q", got)
	}

	var rows []Row
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MarshalRow converts a Row to CSV fields. Calendar parts are blank when the
// date is absent, numeric cells when they did not parse, and the recomputed
// amount and variance when they are undefined.
func MarshalRow(row Row) []string {
	rec := row.Record
	out := make([]string, numFields)
	out[colTxnID] = rec.Raw.TransactionID
	out[colDateRaw] = rec.Raw.Date
	out[colDate] = rec.Date.String()
	out[colCustomerID] = rec.CustomerID
	out[colGender] = rec.Gender
	out[colCategory] = rec.Category
	raw := rec.Raw
	if raw.Parsed(model.FieldAge) {
		out[colAge] = strconv.Itoa(raw.Age)
	}
	if raw.Parsed(model.FieldQuantity) {
		out[colQuantity] = strconv.Itoa(raw.Quantity)
	}
	if raw.Parsed(model.FieldUnitPrice) {
		out[colUnitPrice] = raw.UnitPrice.String()
	}
	if raw.Parsed(model.FieldTotalAmount) {
		out[colTotal] = raw.TotalAmount.String()
	}
	if raw.AmountKnown() {
		out[colTotalCalc] = rec.AmountCalc.String()
		out[colAmountDiff] = rec.AmountDiff.String()
	}
	if rec.Date.Valid {
		out[colYear] = strconv.Itoa(rec.Year)
		out[colMonth] = strconv.Itoa(rec.Month)
		out[colQuarter] = strconv.Itoa(rec.Quarter)
	}
	out[colAgeGroup] = rec.AgeGroup
	out[colReason] = row.Reasons.String()
	return out
}

// UnmarshalRow converts CSV fields back to a Row. Raw text fields are
// restored in their normalized form.
func UnmarshalRow(fields []string) (Row, error) {
	if len(fields) != numFields {
		return Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(fields))
	}

	var date model.Date
	if fields[colDate] != "" {
		t, err := time.Parse(dateFormat, fields[colDate])
		if err != nil {
			return Row{}, fmt.Errorf("parsing date %q: %w", fields[colDate], err)
		}
		date = model.NewDate(t.Year(), t.Month(), t.Day())
	}

	var unparsed model.NumericField
	ints := make(map[int]int, 5)
	for _, c := range []int{colAge, colQuantity, colYear, colMonth, colQuarter} {
		if fields[c] == "" {
			unparsed |= blankField[c]
			continue
		}
		n, err := strconv.Atoi(fields[c])
		if err != nil {
			return Row{}, fmt.Errorf("parsing column %d %q: %w", c, fields[c], err)
		}
		ints[c] = n
	}

	decs := make(map[int]decimal.Decimal, 4)
	for _, c := range []int{colUnitPrice, colTotal, colTotalCalc, colAmountDiff} {
		if fields[c] == "" {
			unparsed |= blankField[c]
			decs[c] = decimal.Zero
			continue
		}
		d, err := decimal.NewFromString(fields[c])
		if err != nil {
			return Row{}, fmt.Errorf("parsing column %d %q: %w", c, fields[c], err)
		}
		decs[c] = d
	}

	reasons, err := quality.ParseReasons(fields[colReason])
	if err != nil {
		return Row{}, err
	}

	return Row{
		Record: model.EnrichedRecord{
			Raw: model.RawRecord{
				TransactionID: fields[colTxnID],
				CustomerID:    fields[colCustomerID],
				Date:          fields[colDateRaw],
				Age:           ints[colAge],
				Gender:        fields[colGender],
				Category:      fields[colCategory],
				Quantity:      ints[colQuantity],
				UnitPrice:     decs[colUnitPrice],
				TotalAmount:   decs[colTotal],
				Unparsed:      unparsed,
			},
			CustomerID: fields[colCustomerID],
			Gender:     fields[colGender],
			Category:   fields[colCategory],
			Date:       date,
			AmountCalc: decs[colTotalCalc],
			AmountDiff: decs[colAmountDiff],
			Year:       ints[colYear],
			Month:      ints[colMonth],
			Quarter:    ints[colQuarter],
			AgeGroup:   fields[colAgeGroup],
		},
		Reasons: reasons,
	}, nil
}

// Records returns the enriched records of rows.
func Records(rows []Row) []model.EnrichedRecord {
	out := make([]model.EnrichedRecord, len(rows))
	for i, r := range rows {
		out[i] = r.Record
	}
	return out
}
