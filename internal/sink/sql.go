package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"
)

// dialect covers the SQL differences between the supported databases.
type dialect struct {
	driverName  string
	placeholder func(n int) string
	types       map[ColumnType]string
}

var dialects = map[string]dialect{
	"sqlite": {
		driverName:  "sqlite",
		placeholder: func(int) string { return "?" },
		types: map[ColumnType]string{
			Text:    "TEXT",
			Integer: "INTEGER",
			Decimal: "NUMERIC",
			Date:    "DATE",
		},
	},
	"postgres": {
		driverName:  "pgx",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		types: map[ColumnType]string{
			Text:    "TEXT",
			Integer: "BIGINT",
			Decimal: "NUMERIC",
			Date:    "DATE",
		},
	},
}

// SQL replaces tables in a relational database. Each table is dropped and
// recreated inside its own transaction; tables are not written atomically
// as a group.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQL connects to a "sqlite" or "postgres" database and verifies the
// connection.
func OpenSQL(driver, dsn string) (*SQL, error) {
	d, ok := dialects[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("unknown sql driver %q", driver)
	}
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}
	return &SQL{db: db, dialect: d}, nil
}

// DB returns the underlying handle.
func (s *SQL) DB() *sql.DB {
	return s.db
}

// Replace drops t.Name if present, recreates it and inserts every row.
func (s *SQL) Replace(ctx context.Context, t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", t.Name, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(t.Name)); err != nil {
		return fmt.Errorf("dropping %s: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, s.createStmt(t)); err != nil {
		return fmt.Errorf("creating %s: %w", t.Name, err)
	}

	if len(t.Rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, s.insertStmt(t))
		if err != nil {
			return fmt.Errorf("preparing insert into %s: %w", t.Name, err)
		}
		defer stmt.Close()

		for i, row := range t.Rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("inserting %s row %d: %w", t.Name, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", t.Name, err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQL) Close() error {
	return s.db.Close()
}

func (s *SQL) createStmt(t Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quote(c.Name) + " " + s.dialect.types[c.Type]
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quote(t.Name), strings.Join(cols, ", "))
}

func (s *SQL) insertStmt(t Table) string {
	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quote(c.Name)
		marks[i] = s.dialect.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(t.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
