package schema

import (
	"fmt"
	"strings"

	"github.com/fuel-indexer-go/indexer/catalog"
)

// CreateSchemaStatement renders the CREATE SCHEMA IF NOT EXISTS statement
// for the indexer's namespace.
func CreateSchemaStatement(namespace string) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", namespace)
}

// CreateTableStatement renders the CREATE TABLE IF NOT EXISTS statement for
// one compiled object, in a fixed multi-line layout: one column fragment
// per line, comma-joined.
func CreateTableStatement(namespace, table string, columns []catalog.Column) (string, error) {
	fragments := make([]string, 0, len(columns))
	for _, col := range columns {
		frag, err := col.SQLFragment()
		if err != nil {
			return "", err
		}
		fragments = append(fragments, frag)
	}
	body := strings.Join(fragments, ",\n ")
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS\n %s.%s (\n %s\n)", namespace, table, body), nil
}

// CreateIndexStatement renders the CREATE INDEX IF NOT EXISTS statement for
// one @indexed column, named after its table and column so repeated
// compiles of the same schema produce the same index name.
func CreateIndexStatement(namespace, table, column string) string {
	indexName := fmt.Sprintf("%s_%s_idx", table, column)
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s.%s (%s)", indexName, namespace, table, column)
}

// DropSchemaStatement renders the DROP SCHEMA ... CASCADE statement used to
// remove every table belonging to a replaced indexer in one statement.
func DropSchemaStatement(schemaName string) string {
	return fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName)
}

// objectColumn returns the implicit trailing column every indexed object
// table carries: the packed binary encoding of the entity itself.
func objectColumn(position int) catalog.Column {
	return catalog.NewColumn("object", "__", catalog.KindBlob, position)
}
