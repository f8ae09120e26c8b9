package gateway

import (
	"strings"

	"github.com/fuel-indexer-go/indexer/catalog"
)

// idColumn is the name every compiled object's primary key column carries.
const idColumn = "id"

// isIDOnlyUpsert reports whether schemaColumns describes a table with no
// columns besides the id and the packed object blob, in which case a
// conflicting row needs no update at all.
func isIDOnlyUpsert(schemaColumns []string) bool {
	return len(schemaColumns) == 2 && schemaColumns[0] == idColumn
}

// upsertQuery renders the INSERT statement that writes one row, using
// dialect's conflict-handling syntax: Postgres and SQLite share the same
// ON CONFLICT(id) clause, MySQL instead uses ON DUPLICATE KEY UPDATE.
// schemaColumns names every column the table has, in order, including the
// trailing "object" column; inserts holds a literal or bind placeholder
// per schemaColumn; updates holds the "col = value" fragments applied
// when the id already exists.
func upsertQuery(dialect Dialect, table string, schemaColumns, inserts, updates []string) string {
	base := "INSERT INTO " + table + " (" + strings.Join(schemaColumns, ", ") + ") VALUES (" +
		strings.Join(inserts, ", ") + ")"

	if dialect == MySQL {
		if isIDOnlyUpsert(schemaColumns) {
			return base + " ON DUPLICATE KEY UPDATE id = id"
		}
		return base + " ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
	}
	if isIDOnlyUpsert(schemaColumns) {
		return base + " ON CONFLICT(id) DO NOTHING"
	}
	return base + " ON CONFLICT(id) DO UPDATE SET " + strings.Join(updates, ", ")
}

// buildPutQuery renders the full upsert statement for one row: columns
// names the table's typed value columns in schema order (excluding the
// trailing object column), and values holds one catalog.Value per column.
// The packed entity bytes are bound separately, using dialect's bind
// placeholder syntax and, for Postgres, an explicit ::bytea cast.
func buildPutQuery(dialect Dialect, table string, columns []string, values []catalog.Value) (string, error) {
	inserts := make([]string, len(values))
	updates := make([]string, len(values))
	for i, v := range values {
		lit, err := catalog.Literal(v)
		if err != nil {
			return "", err
		}
		inserts[i] = lit
		updates[i] = columns[i] + " = " + lit
	}

	objectPlaceholder := dialect.placeholder(1)
	if dialect == Postgres {
		objectPlaceholder += "::bytea"
	}

	schemaColumns := append(append([]string(nil), columns...), "object")
	inserts = append(inserts, objectPlaceholder)
	updates = append(updates, "object = "+objectPlaceholder)

	return upsertQuery(dialect, table, schemaColumns, inserts, updates), nil
}

// getQuery renders the statement that fetches one row's packed object
// bytes by id.
func getQuery(table string, id uint64) string {
	lit, _ := catalog.Literal(catalog.NewID(id))
	return "SELECT object FROM " + table + " WHERE id = " + lit
}
