// Package ingest reads raw sales transactions from CSV.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/retailstar/internal/model"
)

// Source column names.
const (
	ColTransactionID = "Transaction ID"
	ColDate          = "Date"
	ColCustomerID    = "Customer ID"
	ColGender        = "Gender"
	ColAge           = "Age"
	ColCategory      = "Product Category"
	ColQuantity      = "Quantity"
	ColUnitPrice     = "Price per Unit"
	ColTotalAmount   = "Total Amount"
)

// RequiredColumns must all be present in the header. Extra columns are
// ignored and order does not matter.
var RequiredColumns = []string{
	ColTransactionID,
	ColDate,
	ColCustomerID,
	ColGender,
	ColAge,
	ColCategory,
	ColQuantity,
	ColUnitPrice,
	ColTotalAmount,
}

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("input has no header row")

var (
	errNotNumber  = errors.New("not a number")
	errNotInteger = errors.New("not an integer")
)

// MissingColumnsError reports required columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ReadFile reads raw records from a CSV file.
func ReadFile(path string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening raw input: %w", err)
	}
	defer f.Close()

	recs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return recs, nil
}

// Read parses raw records. The header is checked before any row is read, so
// a structural error aborts before processing starts. Rows with the wrong
// number of cells are also fatal. A numeric cell that is blank or does not
// parse is data: it is marked in RawRecord.Unparsed and left to the rules.
func Read(r io.Reader) ([]model.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}
	cr.FieldsPerRecord = len(header)

	var recs []model.RawRecord
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		recs = append(recs, parseRow(rec, cols))
	}
	return recs, nil
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		idx[h] = i
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return idx, nil
}

func parseRow(rec []string, cols map[string]int) model.RawRecord {
	get := func(c string) string { return rec[cols[c]] }

	raw := model.RawRecord{
		TransactionID: strings.TrimSpace(get(ColTransactionID)),
		CustomerID:    get(ColCustomerID),
		Date:          get(ColDate),
		Gender:        get(ColGender),
		Category:      get(ColCategory),
	}

	var err error
	if raw.Age, err = parseInt(get(ColAge)); err != nil {
		raw.Unparsed |= model.FieldAge
	}
	if raw.Quantity, err = parseInt(get(ColQuantity)); err != nil {
		raw.Unparsed |= model.FieldQuantity
	}
	if raw.UnitPrice, err = parseDecimal(get(ColUnitPrice)); err != nil {
		raw.Unparsed |= model.FieldUnitPrice
	}
	if raw.TotalAmount, err = parseDecimal(get(ColTotalAmount)); err != nil {
		raw.Unparsed |= model.FieldTotalAmount
	}
	return raw
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// parseInt accepts plain integers and integral decimals such as "34.0",
// which spreadsheet exports commonly produce.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errNotNumber
	}
	if !d.IsInteger() {
		return 0, errNotInteger
	}
	return int(d.IntPart()), nil
}
