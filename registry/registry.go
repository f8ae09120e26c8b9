package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fuel-indexer-go/indexer/schema"
)

// DB is the subset of *sql.DB the registry needs to run a registration as
// a single atomic transaction.
type DB interface {
	Conn
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Registration bundles everything one indexer registration submits: the
// compiled schema and the three asset byte blobs it was built from.
type Registration struct {
	Namespace    string
	Identifier   string
	PubKey       string
	CreatedAt    int64
	Compiled     *schema.CompiledSchema
	WasmBytes    []byte
	ManifestYAML []byte
	SchemaSource []byte
	AssetVersion int32
	// Replace, when set, purges the indexer's prior catalog rows, asset
	// history and data tables before the new schema is committed, and
	// resets last_committed_height to 0 (spec.md §8 scenario 4: replace
	// with remove_data).
	Replace bool
}

// Result is what a successful Commit returns: the registered indexer row
// and whether each asset type was a fresh version or a byte-identical
// repeat of what was already stored.
type Result struct {
	Indexer       RegisteredIndexer
	WasmAsset     IndexerAsset
	ManifestAsset IndexerAsset
	SchemaAsset   IndexerAsset
	SchemaWasNew  bool
}

// SchemaName returns the registry's (namespace, identifier)-qualified name
// for the graph_registry_* catalog rows, distinct from the Postgres schema
// the gateway creates for the indexer's own tables (which is named after
// namespace alone). Package queryplanner uses this to look up the same
// catalog rows registration committed.
func SchemaName(namespace, identifier string) string {
	return namespace + "_" + identifier
}

// Commit atomically registers an indexer: it records (or reuses) the
// indexer row, commits the compiled schema's DDL and catalog metadata if
// this schema version has never been seen before, and stores each asset,
// skipping storage for any asset whose bytes are identical to the
// indexer's current version (asset content is deduplicated by digest; an
// unchanged asset never grows a new version row).
func Commit(ctx context.Context, db DB, reg Registration) (Result, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("registry: begin transaction: %w", err)
	}
	defer tx.Rollback()

	indexer, err := RegisterIndexer(ctx, tx, reg.Namespace, reg.Identifier, reg.PubKey, reg.CreatedAt)
	if err != nil {
		return Result{}, fmt.Errorf("registry: register indexer: %w", err)
	}

	name := SchemaName(reg.Namespace, reg.Identifier)

	if reg.Replace {
		if err := PurgeIndexer(ctx, tx, indexer.ID, name, reg.Namespace); err != nil {
			return Result{}, fmt.Errorf("registry: purge before replace: %w", err)
		}
		indexer.LastCommittedHeight = 0
	}

	exists, err := SchemaExists(ctx, tx, name, reg.Compiled.Version)
	if err != nil {
		return Result{}, fmt.Errorf("registry: check schema existence: %w", err)
	}
	if !exists {
		if err := commitSchema(ctx, tx, name, reg.Compiled); err != nil {
			return Result{}, err
		}
	}

	result := Result{Indexer: indexer, SchemaWasNew: !exists}

	wasmAsset, err := putAsset(ctx, tx, AssetWasm, indexer.ID, reg.AssetVersion, reg.WasmBytes)
	if err != nil {
		return Result{}, fmt.Errorf("registry: store wasm asset: %w", err)
	}
	result.WasmAsset = wasmAsset

	manifestAsset, err := putAsset(ctx, tx, AssetManifest, indexer.ID, reg.AssetVersion, reg.ManifestYAML)
	if err != nil {
		return Result{}, fmt.Errorf("registry: store manifest asset: %w", err)
	}
	result.ManifestAsset = manifestAsset

	schemaAsset, err := putAsset(ctx, tx, AssetSchema, indexer.ID, reg.AssetVersion, reg.SchemaSource)
	if err != nil {
		return Result{}, fmt.Errorf("registry: store schema asset: %w", err)
	}
	result.SchemaAsset = schemaAsset

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("registry: commit transaction: %w", err)
	}
	return result, nil
}

// commitSchema runs the compiled DDL and persists the graph root, type ID
// and column rows for a schema version that has not been seen before.
func commitSchema(ctx context.Context, c Conn, name string, compiled *schema.CompiledSchema) error {
	for _, stmt := range compiled.Statements {
		if _, err := c.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("registry: apply ddl: %w", err)
		}
	}

	root, err := InsertGraphRoot(ctx, c, GraphRoot{
		Version:    compiled.Version,
		SchemaName: name,
		Query:      "Query",
		Schema:     name,
	})
	if err != nil {
		return fmt.Errorf("registry: insert graph root: %w", err)
	}

	for _, obj := range compiled.Objects {
		typeID := int64(obj.TypeID)
		if err := InsertTypeID(ctx, c, TypeIDRow{
			ID:            typeID,
			SchemaVersion: compiled.Version,
			SchemaName:    name,
			GraphQLName:   obj.Name,
			TableName:     obj.TableName,
		}); err != nil {
			return fmt.Errorf("registry: insert type id %s: %w", obj.Name, err)
		}
		for _, col := range obj.Columns {
			var referenceField string
			if fk, ok := obj.ForeignKeys[col.Name]; ok {
				referenceField = fk.ReferenceField
			}
			if err := InsertColumn(ctx, c, ColumnRow{
				TypeID:         typeID,
				Position:       int32(col.Position),
				Name:           col.Name,
				ColumnType:     col.Kind.String(),
				Nullable:       col.Nullable,
				Unique:         col.Unique,
				GraphQLType:    col.GraphQLType,
				ReferenceField: referenceField,
			}); err != nil {
				return fmt.Errorf("registry: insert column %s.%s: %w", obj.Name, col.Name, err)
			}
		}
		if err := InsertRootColumn(ctx, c, RootColumn{
			RootID:      root,
			ColumnName:  toRootFieldName(obj.Name),
			GraphQLType: obj.Name,
		}); err != nil {
			return fmt.Errorf("registry: insert root column %s: %w", obj.Name, err)
		}
	}
	return nil
}

// putAsset stores b as the next asset version unless it is byte-identical
// to the indexer's current version of that asset type, in which case the
// existing row is returned untouched.
func putAsset(ctx context.Context, c Conn, t AssetType, indexerID int64, version int32, b []byte) (IndexerAsset, error) {
	latest, err := LatestAsset(ctx, c, indexerID, t)
	switch err {
	case nil:
		if latest.Digest == Digest(b) {
			return latest, nil
		}
	case sql.ErrNoRows:
		// first asset of this type for this indexer
	default:
		return IndexerAsset{}, err
	}
	return InsertAsset(ctx, c, t, indexerID, version, b)
}

func toRootFieldName(objectName string) string {
	b := []byte(objectName)
	if len(b) > 0 && b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b) + "s"
}
