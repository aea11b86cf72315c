package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSV writes each table to <dir>/<name>.csv.
type CSV struct {
	dir string
}

// NewCSV creates a CSV sink rooted at dir, creating it if needed.
func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sink dir: %w", err)
	}
	return &CSV{dir: dir}, nil
}

// Path returns the file a table is written to.
func (s *CSV) Path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// Replace writes t to a temp file and renames it over the previous file.
func (s *CSV) Replace(ctx context.Context, t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, t.Name+"-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("creating %s: %w", t.Name, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeTable(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", t.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", t.Name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(t.Name)); err != nil {
		return fmt.Errorf("replacing %s: %w", t.Name, err)
	}
	return nil
}

// Close is a no-op.
func (s *CSV) Close() error { return nil }

func writeTable(f *os.File, t Table) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(t.Columns))
	for i, values := range t.Rows {
		for j, v := range values {
			row[j] = FormatValue(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
