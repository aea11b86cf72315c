// Package sink persists named tables with a full-replace policy: writing a
// table discards whatever a previous run stored under the same name.
package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ColumnType is the logical type of a column.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
	Decimal
	Date
)

func (t ColumnType) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Date:
		return "date"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Column names and types one column.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a named set of rows. Row values are string, int,
// decimal.Decimal or time.Time, matching the column types.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Sink stores tables.
type Sink interface {
	// Replace stores t, superseding any prior content for t.Name.
	Replace(ctx context.Context, t Table) error
	Close() error
}

const dateFormat = "2006-01-02"

// Validate checks that every row has one value per column and that value
// kinds match the column types.
func (t Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table has no name")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %s row %d: expected %d values, got %d", t.Name, i, len(t.Columns), len(row))
		}
		for j, v := range row {
			if !kindMatches(t.Columns[j].Type, v) {
				return fmt.Errorf("table %s row %d column %s: %T is not %s", t.Name, i, t.Columns[j].Name, v, t.Columns[j].Type)
			}
		}
	}
	return nil
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func kindMatches(ct ColumnType, v any) bool {
	switch v.(type) {
	case string:
		return ct == Text
	case int:
		return ct == Integer
	case decimal.Decimal:
		return ct == Decimal
	case time.Time:
		return ct == Date
	default:
		return false
	}
}

// FormatValue renders a row value as text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format(dateFormat)
	default:
		return fmt.Sprint(x)
	}
}

// Open returns the sink for driver: "csv" writes one file per table under
// target, "sqlite" and "postgres" treat target as a DSN.
func Open(driver, target string) (Sink, error) {
	switch strings.ToLower(driver) {
	case "csv":
		return NewCSV(target)
	case "sqlite", "postgres":
		return OpenSQL(driver, target)
	default:
		return nil, fmt.Errorf("unknown sink driver %q", driver)
	}
}
