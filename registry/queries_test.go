package registry_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/fuel-indexer-go/indexer/registry"
)

func TestSetLastCommittedHeight(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE indexer_registry SET last_committed_height = $1 WHERE id = $2`)).
		WithArgs(uint32(42), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = registry.SetLastCommittedHeight(context.Background(), db, 7, 42)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeIndexerDeletesCatalogRowsAndAssets(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM graph_registry_columns WHERE type_id IN`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM graph_registry_type_ids WHERE schema_name = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM graph_registry_root_columns WHERE root_id IN`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM graph_registry_graph_root WHERE schema_name = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DROP SCHEMA IF EXISTS widgets_ns CASCADE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for range []registry.AssetType{registry.AssetWasm, registry.AssetManifest, registry.AssetSchema} {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM indexer_asset_registry_`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE indexer_registry SET last_committed_height = 0 WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = registry.PurgeIndexer(context.Background(), db, 1, "widgets_ns_main", "widgets_ns")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterIndexerInsertsNewRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, namespace, identifier, last_committed_height, pubkey, created_at FROM indexer_registry WHERE namespace = $1 AND identifier = $2`)).
		WithArgs("ns", "main").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO indexer_registry (namespace, identifier, last_committed_height, pubkey, created_at) VALUES ($1, $2, 0, $3, $4) RETURNING id`)).
		WithArgs("ns", "main", "02abcd", int64(1000)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	r, err := registry.RegisterIndexer(context.Background(), db, "ns", "main", "02abcd", 1000)
	require.NoError(t, err)
	require.Equal(t, registry.RegisteredIndexer{ID: 9, Namespace: "ns", Identifier: "main", PubKey: "02abcd", CreatedAt: 1000}, r)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterIndexerReturnsExistingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, namespace, identifier, last_committed_height, pubkey, created_at FROM indexer_registry WHERE namespace = $1 AND identifier = $2`)).
		WithArgs("ns", "main").
		WillReturnRows(sqlmock.NewRows([]string{"id", "namespace", "identifier", "last_committed_height", "pubkey", "created_at"}).
			AddRow(int64(9), "ns", "main", uint32(3), "02abcd", int64(1000)))

	r, err := registry.RegisterIndexer(context.Background(), db, "ns", "main", "02abcd", 1000)
	require.NoError(t, err)
	require.Equal(t, uint32(3), r.LastCommittedHeight)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNonceInsertLookupAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO nonce (uid, expiry) VALUES ($1, $2)`)).
		WithArgs("uid-1", int64(2000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, registry.InsertNonce(context.Background(), db, registry.Nonce{UID: "uid-1", Expiry: 2000}))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT uid, expiry FROM nonce WHERE uid = $1`)).
		WithArgs("uid-1").
		WillReturnRows(sqlmock.NewRows([]string{"uid", "expiry"}).AddRow("uid-1", int64(2000)))
	n, err := registry.NonceByUID(context.Background(), db, "uid-1")
	require.NoError(t, err)
	require.Equal(t, registry.Nonce{UID: "uid-1", Expiry: 2000}, n)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM nonce WHERE uid = $1`)).
		WithArgs("uid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, registry.DeleteNonce(context.Background(), db, "uid-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
