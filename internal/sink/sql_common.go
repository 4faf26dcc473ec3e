package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sanitycsv/internal/export"
)

// dialect captures the SQL differences between the supported engines.
type dialect struct {
	driverName string
	quote      byte
	dollarArgs bool // $1, $2 instead of ?
}

var (
	dialectMySQL    = dialect{driverName: "mysql", quote: '`'}
	dialectPostgres = dialect{driverName: "postgres", quote: '"', dollarArgs: true}
	dialectSQLite   = dialect{driverName: "sqlite", quote: '"'}
)

func (d dialect) ident(name string) string {
	q := string(d.quote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

func (d dialect) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if d.dollarArgs {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// sqlConnector is the shared implementation for MySQL, Postgres, and SQLite.
type sqlConnector struct {
	dialect dialect
	db      *sql.DB
}

// newSQLConnector creates a generic SQL connector.
func newSQLConnector(d dialect, dsn string) (*sqlConnector, error) {
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driverName, err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlConnector{dialect: d, db: db}, nil
}

func (c *sqlConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

// WriteTable creates the table with one TEXT column per field and inserts
// every row inside a single transaction. In replace mode the table is
// recreated so its columns match fields exactly.
func (c *sqlConnector) WriteTable(ctx context.Context, table string, fields []string, rows []export.Record, mode WriteMode) (int, error) {
	if table == "" {
		return 0, fmt.Errorf("table name is required")
	}
	if len(fields) == 0 {
		return 0, export.ErrNoFieldsSelected
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if mode == WriteReplace {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+c.dialect.ident(table)); err != nil {
			return 0, fmt.Errorf("drop table: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, c.createTableSQL(table, fields)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, c.insertSQL(table, fields))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	args := make([]any, len(fields))
	for i, row := range rows {
		for j, f := range fields {
			if text, ok := cellText(row[f]); ok {
				args[j] = text
			} else {
				args[j] = nil
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return written, fmt.Errorf("insert row %d: %w", i, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

func (c *sqlConnector) createTableSQL(table string, fields []string) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = c.dialect.ident(f) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", c.dialect.ident(table), strings.Join(cols, ", "))
}

func (c *sqlConnector) insertSQL(table string, fields []string) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = c.dialect.ident(f)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.dialect.ident(table), strings.Join(cols, ", "), c.dialect.placeholders(len(fields)))
}

func (c *sqlConnector) Close() error {
	return c.db.Close()
}
