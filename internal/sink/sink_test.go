package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Name: "fact_sales",
		Columns: []Column{
			{"transaction_id", Text},
			{"date_id", Integer},
			{"total_amount", Decimal},
			{"date", Date},
		},
		Rows: [][]any{
			{"1", 20231124, decimal.RequireFromString("150.50"), time.Date(2023, 11, 24, 0, 0, 0, 0, time.UTC)},
			{"2, with comma", 20230221, decimal.RequireFromString("30"), time.Date(2023, 2, 21, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestTableValidate(t *testing.T) {
	require.NoError(t, sampleTable().Validate())

	bad := sampleTable()
	bad.Rows = append(bad.Rows, []any{"3", 1})
	assert.ErrorContains(t, bad.Validate(), "expected 4 values")

	bad = sampleTable()
	bad.Rows[0][1] = "20231124"
	assert.ErrorContains(t, bad.Validate(), "is not integer")

	assert.Error(t, Table{Columns: []Column{{"a", Text}}}.Validate())
	assert.Error(t, Table{Name: "x"}.Validate())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "abc", FormatValue("abc"))
	assert.Equal(t, "42", FormatValue(42))
	assert.Equal(t, "76.5", FormatValue(decimal.RequireFromString("76.50")))
	assert.Equal(t, "2024-01-10", FormatValue(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSV_Replace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "warehouse")
	s, err := NewCSV(dir)
	require.NoError(t, err)

	require.NoError(t, s.Replace(context.Background(), sampleTable()))

	rows := readCSV(t, s.Path("fact_sales"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"transaction_id", "date_id", "total_amount", "date"}, rows[0])
	assert.Equal(t, []string{"1", "20231124", "150.5", "2023-11-24"}, rows[1])
	assert.Equal(t, "2, with comma", rows[2][0])
}

func TestCSV_ReplaceSupersedes(t *testing.T) {
	s, err := NewCSV(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, sampleTable()))
	smaller := sampleTable()
	smaller.Rows = smaller.Rows[:1]
	require.NoError(t, s.Replace(ctx, smaller))

	assert.Len(t, readCSV(t, s.Path("fact_sales")), 2)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(s.Path("fact_sales")))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCSV_InvalidTable(t *testing.T) {
	s, err := NewCSV(t.TempDir())
	require.NoError(t, err)
	bad := sampleTable()
	bad.Rows[0] = bad.Rows[0][:2]
	assert.Error(t, s.Replace(context.Background(), bad))
	_, statErr := os.Stat(s.Path("fact_sales"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Replace(ctx, sampleTable()))
	require.NoError(t, m.Replace(ctx, Table{Name: "fact_sales", Columns: []Column{{"a", Text}}}))

	got, ok := m.Table("fact_sales")
	require.True(t, ok)
	assert.Empty(t, got.Rows)
	assert.Equal(t, []string{"fact_sales", "fact_sales"}, m.Writes())

	_, ok = m.Table("missing")
	assert.False(t, ok)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "x")
	assert.ErrorContains(t, err, "unknown sink driver")
}

func TestOpen_CSV(t *testing.T) {
	s, err := Open("CSV", t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &CSV{}, s)
	assert.NoError(t, s.Close())
}
