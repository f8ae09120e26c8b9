package gateway

import (
	"testing"

	"github.com/fuel-indexer-go/indexer/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPutQueryIDOnly(t *testing.T) {
	query, err := buildPutQuery(Postgres, "widget", []string{"id"}, []catalog.Value{catalog.NewID(7)})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO widget (id, object) VALUES (7, $1::bytea) ON CONFLICT(id) DO NOTHING", query)
}

func TestBuildPutQueryWithUpdates(t *testing.T) {
	query, err := buildPutQuery(Postgres, "borrower",
		[]string{"id", "name"},
		[]catalog.Value{catalog.NewID(7), catalog.NewCharfield("bob")},
	)
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO borrower (id, name, object) VALUES (7, 'bob', $1::bytea) "+
			"ON CONFLICT(id) DO UPDATE SET id = 7, name = 'bob', object = $1::bytea",
		query,
	)
}

func TestBuildPutQueryMySQLUsesPlaceholderAndDuplicateKeySyntax(t *testing.T) {
	query, err := buildPutQuery(MySQL, "borrower",
		[]string{"id", "name"},
		[]catalog.Value{catalog.NewID(7), catalog.NewCharfield("bob")},
	)
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO borrower (id, name, object) VALUES (7, 'bob', ?) "+
			"ON DUPLICATE KEY UPDATE id = 7, name = 'bob', object = ?",
		query,
	)
}

func TestBuildPutQuerySQLiteUsesPlaceholderAndOnConflictSyntax(t *testing.T) {
	query, err := buildPutQuery(SQLite, "widget", []string{"id"}, []catalog.Value{catalog.NewID(7)})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO widget (id, object) VALUES (7, ?) ON CONFLICT(id) DO NOTHING", query)
}

func TestGetQuery(t *testing.T) {
	assert.Equal(t, "SELECT object FROM widget WHERE id = 42", getQuery("widget", 42))
}

func TestIsIDOnlyUpsert(t *testing.T) {
	assert.True(t, isIDOnlyUpsert([]string{"id", "object"}))
	assert.False(t, isIDOnlyUpsert([]string{"id", "name", "object"}))
	assert.False(t, isIDOnlyUpsert([]string{"name", "id"}))
}
