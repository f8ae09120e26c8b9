// Package registry persists the compiled schema catalog and indexer asset
// bundles that the storage gateway and scheduler consult at runtime: the
// graph root, its type IDs and columns, registered indexers, and the
// wasm/manifest/schema byte blobs associated with each.
package registry

import "fmt"

// GraphRoot is one committed version of an indexer's compiled schema.
type GraphRoot struct {
	ID         int64
	Version    string
	SchemaName string
	Query      string
	Schema     string
}

// RootColumn is a field of the synthetic Query root type, used by the
// query planner to resolve top-level GraphQL queries to their backing
// object table.
type RootColumn struct {
	ID          int32
	RootID      int64
	ColumnName  string
	GraphQLType string
}

// TypeIDRow is a persisted mapping from a compiled object's stable type ID
// to the GraphQL name and table it was compiled from, scoped to one
// schema version.
type TypeIDRow struct {
	ID            int64
	SchemaVersion string
	SchemaName    string
	GraphQLName   string
	TableName     string
}

// ColumnRow is a persisted column belonging to a TypeIDRow. ReferenceField
// is non-empty only for a foreign-key column: the field on the referenced
// object this column's value is joined against (the compiler defaults this
// to "id" unless overridden by a @join(on: "...") directive).
type ColumnRow struct {
	ID             int32
	TypeID         int64
	Position       int32
	Name           string
	ColumnType     string
	Nullable       bool
	Unique         bool
	GraphQLType    string
	ReferenceField string
}

// RegisteredIndexer identifies one namespace/identifier pair that has
// completed at least one successful registration. LastCommittedHeight is
// the scheduler's durable cursor: the highest block height this indexer
// has committed a batch through, so a restart can resume rather than
// replay from genesis. PubKey is the hex-encoded compressed secp256k1
// public key that owns this indexer; a mutating request (re-registration,
// removal) must carry a signature recoverable to this key.
type RegisteredIndexer struct {
	ID                  int64
	Namespace           string
	Identifier          string
	LastCommittedHeight uint32
	PubKey              string
	CreatedAt           int64
}

// UID returns the indexer's namespace-qualified identifier.
func (r RegisteredIndexer) UID() string {
	return fmt.Sprintf("%s.%s", r.Namespace, r.Identifier)
}

// AssetType distinguishes the three byte blobs an indexer registration
// carries.
type AssetType uint8

const (
	AssetWasm AssetType = iota
	AssetManifest
	AssetSchema
)

// String returns the table-suffix name of the asset type.
func (a AssetType) String() string {
	switch a {
	case AssetWasm:
		return "wasm"
	case AssetManifest:
		return "manifest"
	case AssetSchema:
		return "schema"
	default:
		return fmt.Sprintf("AssetType(%d)", uint8(a))
	}
}

// IndexerAsset is one versioned byte blob (wasm module, manifest, or
// schema source) belonging to a registered indexer.
type IndexerAsset struct {
	ID        int64
	IndexerID int64
	Version   int32
	Digest    string
	Bytes     []byte
}

// Nonce is a short-lived token issued for signature-based authentication
// of a mutating registration request. Signature verification and the
// expiry check live in package auth (VerifySignature, CheckNonceExpiry);
// the registry only persists, looks up and deletes the token.
type Nonce struct {
	UID    string
	Expiry int64
}
