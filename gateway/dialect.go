package gateway

import (
	"database/sql"
	"strconv"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names one of the storage backends a Gateway can target. The
// upsert statements PutObject renders differ across dialects (bind
// placeholder syntax, and how an id conflict is handled), so the gateway
// carries its dialect rather than assuming Postgres everywhere.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// driverName returns the database/sql driver name registered for d.
func (d Dialect) driverName() string {
	switch d {
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	default:
		return "postgres"
	}
}

// placeholder renders the bind parameter for position pos (1-based) in
// this dialect's syntax: Postgres uses "$pos", MySQL and SQLite use "?".
func (d Dialect) placeholder(pos int) string {
	if d == MySQL || d == SQLite {
		return "?"
	}
	return "$" + strconv.Itoa(pos)
}

// Open opens a connection pool for dialect against dsn and returns a
// Gateway over it.
func Open(dialect Dialect, dsn string) (*Gateway, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, err
	}
	return NewWithDialect(db, dialect), nil
}
