package sink

import (
	"sanitycsv/internal/domain"

	_ "modernc.org/sqlite"
)

// newSQLiteConnector creates a connector for an SQLite file at conn.Host.
// Opens in WAL mode with busy timeout for concurrent access.
func newSQLiteConnector(conn *domain.SinkConnection) (*sqlConnector, error) {
	dsn := conn.Host + "?_journal_mode=WAL&_busy_timeout=5000"
	return newSQLConnector(dialectSQLite, dsn)
}
