package registry

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/fuel-indexer-go/indexer/schema"
)

// Conn is the subset of *sql.DB / *sql.Tx the registry needs. Passing a
// transaction makes a sequence of calls atomic; passing the pool runs each
// call in its own implicit transaction.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Digest returns the hex-encoded SHA-256 digest of an asset's bytes, the
// key used to detect byte-identical re-registrations.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// InsertGraphRoot persists a new schema version and returns its row ID.
func InsertGraphRoot(ctx context.Context, c Conn, root GraphRoot) (int64, error) {
	var id int64
	err := c.QueryRowContext(ctx,
		`INSERT INTO graph_registry_graph_root (version, schema_name, query, schema)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		root.Version, root.SchemaName, root.Query, root.Schema,
	).Scan(&id)
	return id, err
}

// LatestGraphRoot returns the most recently committed schema version for
// the given schema name.
func LatestGraphRoot(ctx context.Context, c Conn, schemaName string) (GraphRoot, error) {
	var r GraphRoot
	err := c.QueryRowContext(ctx,
		`SELECT id, version, schema_name, query, schema FROM graph_registry_graph_root
		 WHERE schema_name = $1 ORDER BY id DESC LIMIT 1`,
		schemaName,
	).Scan(&r.ID, &r.Version, &r.SchemaName, &r.Query, &r.Schema)
	return r, err
}

// InsertRootColumn persists one field of the synthetic Query root type.
func InsertRootColumn(ctx context.Context, c Conn, rc RootColumn) error {
	_, err := c.ExecContext(ctx,
		`INSERT INTO graph_registry_root_columns (root_id, column_name, graphql_type)
		 VALUES ($1, $2, $3)`,
		rc.RootID, rc.ColumnName, rc.GraphQLType,
	)
	return err
}

// RootColumnsByRootID returns every root column belonging to rootID.
func RootColumnsByRootID(ctx context.Context, c Conn, rootID int64) ([]RootColumn, error) {
	rows, err := c.QueryContext(ctx,
		`SELECT id, root_id, column_name, graphql_type FROM graph_registry_root_columns
		 WHERE root_id = $1`,
		rootID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RootColumn
	for rows.Next() {
		var rc RootColumn
		if err := rows.Scan(&rc.ID, &rc.RootID, &rc.ColumnName, &rc.GraphQLType); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// InsertTypeID persists a compiled object's type ID row.
func InsertTypeID(ctx context.Context, c Conn, t TypeIDRow) error {
	_, err := c.ExecContext(ctx,
		`INSERT INTO graph_registry_type_ids (id, schema_version, schema_name, graphql_name, table_name)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.SchemaVersion, t.SchemaName, t.GraphQLName, t.TableName,
	)
	return err
}

// TypeIDsByNameVersion returns every type ID row for a given schema name
// and version.
func TypeIDsByNameVersion(ctx context.Context, c Conn, name, version string) ([]TypeIDRow, error) {
	rows, err := c.QueryContext(ctx,
		`SELECT id, schema_version, schema_name, graphql_name, table_name FROM graph_registry_type_ids
		 WHERE schema_name = $1 AND schema_version = $2`,
		name, version,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TypeIDRow
	for rows.Next() {
		var t TypeIDRow
		if err := rows.Scan(&t.ID, &t.SchemaVersion, &t.SchemaName, &t.GraphQLName, &t.TableName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SchemaExists reports whether a schema of the given name and version has
// already been committed.
func SchemaExists(ctx context.Context, c Conn, name, version string) (bool, error) {
	var count int64
	err := c.QueryRowContext(ctx,
		`SELECT count(*) FROM graph_registry_type_ids WHERE schema_name = $1 AND schema_version = $2`,
		name, version,
	).Scan(&count)
	return count != 0, err
}

// InsertColumn persists one column of a compiled object.
func InsertColumn(ctx context.Context, c Conn, col ColumnRow) error {
	_, err := c.ExecContext(ctx,
		`INSERT INTO graph_registry_columns
		 (type_id, column_position, column_name, column_type, nullable, "unique", graphql_type, reference_field)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		col.TypeID, col.Position, col.Name, col.ColumnType, col.Nullable, col.Unique, col.GraphQLType, col.ReferenceField,
	)
	return err
}

// ColumnsByTypeID returns every column belonging to a type ID, ordered by
// declared position.
func ColumnsByTypeID(ctx context.Context, c Conn, typeID int64) ([]ColumnRow, error) {
	rows, err := c.QueryContext(ctx,
		`SELECT id, type_id, column_position, column_name, column_type, nullable, "unique", graphql_type, reference_field
		 FROM graph_registry_columns WHERE type_id = $1 ORDER BY column_position`,
		typeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ColumnRow
	for rows.Next() {
		var c2 ColumnRow
		if err := rows.Scan(&c2.ID, &c2.TypeID, &c2.Position, &c2.Name, &c2.ColumnType, &c2.Nullable, &c2.Unique, &c2.GraphQLType, &c2.ReferenceField); err != nil {
			return nil, err
		}
		out = append(out, c2)
	}
	return out, rows.Err()
}

// RegisterIndexer returns the existing row for (namespace, identifier) if
// one exists, or inserts and returns a new one owned by pubkey.
func RegisterIndexer(ctx context.Context, c Conn, namespace, identifier, pubkey string, createdAt int64) (RegisteredIndexer, error) {
	existing, err := IndexerByUID(ctx, c, namespace, identifier)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return RegisteredIndexer{}, err
	}

	var id int64
	err = c.QueryRowContext(ctx,
		`INSERT INTO indexer_registry (namespace, identifier, last_committed_height, pubkey, created_at) VALUES ($1, $2, 0, $3, $4) RETURNING id`,
		namespace, identifier, pubkey, createdAt,
	).Scan(&id)
	if err != nil {
		return RegisteredIndexer{}, err
	}
	return RegisteredIndexer{ID: id, Namespace: namespace, Identifier: identifier, PubKey: pubkey, CreatedAt: createdAt}, nil
}

// IndexerByUID looks up a registered indexer by its namespace/identifier
// pair. Returns sql.ErrNoRows if none exists.
func IndexerByUID(ctx context.Context, c Conn, namespace, identifier string) (RegisteredIndexer, error) {
	var r RegisteredIndexer
	err := c.QueryRowContext(ctx,
		`SELECT id, namespace, identifier, last_committed_height, pubkey, created_at FROM indexer_registry WHERE namespace = $1 AND identifier = $2`,
		namespace, identifier,
	).Scan(&r.ID, &r.Namespace, &r.Identifier, &r.LastCommittedHeight, &r.PubKey, &r.CreatedAt)
	return r, err
}

// InsertNonce persists a freshly issued authentication nonce.
func InsertNonce(ctx context.Context, c Conn, n Nonce) error {
	_, err := c.ExecContext(ctx,
		`INSERT INTO nonce (uid, expiry) VALUES ($1, $2)`,
		n.UID, n.Expiry,
	)
	return err
}

// NonceByUID looks up a nonce by its uid, whether or not it has expired.
// Returns sql.ErrNoRows if none exists.
func NonceByUID(ctx context.Context, c Conn, uid string) (Nonce, error) {
	var n Nonce
	err := c.QueryRowContext(ctx,
		`SELECT uid, expiry FROM nonce WHERE uid = $1`,
		uid,
	).Scan(&n.UID, &n.Expiry)
	return n, err
}

// DeleteNonce removes a nonce after it has been consumed (or swept for
// expiry), so it can never be replayed.
func DeleteNonce(ctx context.Context, c Conn, uid string) error {
	_, err := c.ExecContext(ctx, `DELETE FROM nonce WHERE uid = $1`, uid)
	return err
}

// SetLastCommittedHeight durably advances the indexer's resume cursor. The
// scheduler calls this exactly once per successfully committed batch.
func SetLastCommittedHeight(ctx context.Context, c Conn, indexerID int64, height uint32) error {
	_, err := c.ExecContext(ctx,
		`UPDATE indexer_registry SET last_committed_height = $1 WHERE id = $2`,
		height, indexerID,
	)
	return err
}

// PurgeIndexer deletes a replaced indexer's catalog rows (type IDs, their
// columns, and graph roots) for schemaName, drops namespace itself (the
// Postgres schema the gateway created for the indexer's own data tables,
// per spec.md §8 scenario 4: "table ns_id.t is dropped"), purges its asset
// history, and resets last_committed_height back to 0 so a subsequent run
// starts from genesis rather than resuming a lineage that no longer
// exists. schemaName and namespace are distinct: schemaName is the
// (namespace, identifier)-qualified catalog scoping key SchemaName
// returns, while namespace alone names the actual Postgres schema.
func PurgeIndexer(ctx context.Context, c Conn, indexerID int64, schemaName, namespace string) error {
	if _, err := c.ExecContext(ctx,
		`DELETE FROM graph_registry_columns WHERE type_id IN (
			SELECT id FROM graph_registry_type_ids WHERE schema_name = $1)`,
		schemaName,
	); err != nil {
		return err
	}
	if _, err := c.ExecContext(ctx, `DELETE FROM graph_registry_type_ids WHERE schema_name = $1`, schemaName); err != nil {
		return err
	}
	if _, err := c.ExecContext(ctx,
		`DELETE FROM graph_registry_root_columns WHERE root_id IN (
			SELECT id FROM graph_registry_graph_root WHERE schema_name = $1)`,
		schemaName,
	); err != nil {
		return err
	}
	if _, err := c.ExecContext(ctx, `DELETE FROM graph_registry_graph_root WHERE schema_name = $1`, schemaName); err != nil {
		return err
	}
	if _, err := c.ExecContext(ctx, schema.DropSchemaStatement(namespace)); err != nil {
		return err
	}
	for _, t := range []AssetType{AssetWasm, AssetManifest, AssetSchema} {
		if err := PurgeAssets(ctx, c, t, indexerID); err != nil {
			return err
		}
	}
	return ResetLastCommittedHeight(ctx, c, indexerID)
}

// ResetLastCommittedHeight zeroes an indexer's resume cursor, used when a
// replace-with-purge discards its prior data so the next run starts from
// genesis instead of resuming a lineage that no longer exists.
func ResetLastCommittedHeight(ctx context.Context, c Conn, indexerID int64) error {
	_, err := c.ExecContext(ctx, `UPDATE indexer_registry SET last_committed_height = 0 WHERE id = $1`, indexerID)
	return err
}

// assetTable returns the table name backing one of the three asset types.
func assetTable(t AssetType) string {
	return "indexer_asset_registry_" + t.String()
}

// LatestAsset returns the highest-versioned asset of type t belonging to
// indexerID. Returns sql.ErrNoRows if none has been registered yet.
func LatestAsset(ctx context.Context, c Conn, indexerID int64, t AssetType) (IndexerAsset, error) {
	var a IndexerAsset
	query := fmt.Sprintf(
		`SELECT id, index_id, version, digest, bytes FROM %s
		 WHERE index_id = $1 ORDER BY version DESC LIMIT 1`,
		assetTable(t),
	)
	err := c.QueryRowContext(ctx, query, indexerID).Scan(&a.ID, &a.IndexerID, &a.Version, &a.Digest, &a.Bytes)
	return a, err
}

// InsertAsset persists a new asset version row and returns it.
func InsertAsset(ctx context.Context, c Conn, t AssetType, indexerID int64, version int32, b []byte) (IndexerAsset, error) {
	digest := Digest(b)
	query := fmt.Sprintf(
		`INSERT INTO %s (index_id, version, digest, bytes) VALUES ($1, $2, $3, $4) RETURNING id`,
		assetTable(t),
	)
	var id int64
	err := c.QueryRowContext(ctx, query, indexerID, version, digest, b).Scan(&id)
	if err != nil {
		return IndexerAsset{}, err
	}
	return IndexerAsset{ID: id, IndexerID: indexerID, Version: version, Digest: digest, Bytes: b}, nil
}

// PurgeAssets deletes every asset of type t belonging to indexerID. Used
// when an indexer is replaced wholesale rather than versioned forward.
func PurgeAssets(ctx context.Context, c Conn, t AssetType, indexerID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE index_id = $1`, assetTable(t))
	_, err := c.ExecContext(ctx, query, indexerID)
	return err
}
