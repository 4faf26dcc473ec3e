package sink

import (
	"context"
	"fmt"
	"strconv"

	"sanitycsv/internal/domain"
	"sanitycsv/internal/export"
)

// WriteMode determines how rows are written to the destination table.
type WriteMode string

const (
	WriteReplace WriteMode = "replace" // drop existing rows, insert fresh
	WriteAppend  WriteMode = "append"  // add rows without deleting existing
)

// ParseWriteMode validates a mode name. Empty means replace.
func ParseWriteMode(s string) (WriteMode, error) {
	switch m := WriteMode(s); m {
	case "":
		return WriteReplace, nil
	case WriteReplace, WriteAppend:
		return m, nil
	default:
		return "", fmt.Errorf("unknown write mode %q", s)
	}
}

// Connector writes an exported table into an external database.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// WriteTable stores rows restricted to fields into table (or collection)
	// and returns the number of rows written.
	WriteTable(ctx context.Context, table string, fields []string, rows []export.Record, mode WriteMode) (int, error)

	// Close closes the connection.
	Close() error
}

// NewConnector creates a Connector for the given sink.
// The password must be provided separately (from the secret store).
func NewConnector(conn *domain.SinkConnection, password string) (Connector, error) {
	switch conn.Driver {
	case domain.SinkDriverSQLite:
		return newSQLiteConnector(conn)
	case domain.SinkDriverMySQL:
		return newSQLConnector(dialectMySQL, buildMySQLDSN(conn, password))
	case domain.SinkDriverPostgres:
		return newSQLConnector(dialectPostgres, buildPostgresDSN(conn, password))
	case domain.SinkDriverMongoDB:
		return newMongoConnector(conn, password)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver)
	}
}

// cellText renders a decoded CSV value as the text stored in a sink column.
func cellText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return fmt.Sprint(x), true
	}
}
