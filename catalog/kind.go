// Package catalog defines the closed enumeration of entity column kinds,
// their on-wire binary encoding, and their SQL/query-literal rendering. It
// is the shared vocabulary the schema compiler, storage gateway, and
// sandboxed executor all speak when addressing a column by type.
package catalog

import "fmt"

// Kind is a column kind recognized by the catalog. The set is closed: no
// caller may register a new Kind at runtime.
type Kind uint8

// The enumerated column kinds. Values are stable across schema versions and
// must never be renumbered once released, since persisted Column rows store
// the Kind by name, not by this constant's underlying value.
const (
	KindID Kind = iota
	KindAddress
	KindAssetID
	KindContractID
	KindBytes4
	KindBytes8
	KindBytes32
	KindSalt
	KindInt4
	KindInt8
	KindUInt4
	KindUInt8
	KindTimestamp
	KindBlob
	KindJSON
	KindMessageID
	KindCharfield
	KindIdentity
	KindBoolean
	// kindForeignKey is the internal ForeignKey discriminator. It has no
	// wire or SQL form: Encode, Literal and SQLType reject it with
	// ErrUnknownKind. The schema package does not use it; it compiles a
	// foreign-key column with KindID.
	kindForeignKey
)

// names indexes Kind values to their canonical GraphQL-facing name.
var names = [...]string{
	KindID:         "ID",
	KindAddress:    "Address",
	KindAssetID:    "AssetId",
	KindContractID: "ContractId",
	KindBytes4:     "Bytes4",
	KindBytes8:     "Bytes8",
	KindBytes32:    "Bytes32",
	KindSalt:       "Salt",
	KindInt4:       "Int4",
	KindInt8:       "Int8",
	KindUInt4:      "UInt4",
	KindUInt8:      "UInt8",
	KindTimestamp:  "Timestamp",
	KindBlob:       "Blob",
	KindJSON:       "Json",
	KindMessageID:  "MessageId",
	KindCharfield:  "Charfield",
	KindIdentity:   "Identity",
	KindBoolean:    "Boolean",
	kindForeignKey: "ForeignKey",
}

// String returns the canonical name of k.
func (k Kind) String() string {
	if int(k) < len(names) && names[k] != "" {
		return names[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// byName is the reverse index built once at package init.
var byName map[string]Kind

func init() {
	byName = make(map[string]Kind, len(names))
	for k, n := range names {
		byName[n] = Kind(k)
	}
}

// ParseKind resolves a GraphQL scalar name to its Kind. ok is false for any
// name outside the closed enumeration.
func ParseKind(name string) (k Kind, ok bool) {
	k, ok = byName[name]
	return
}

// IsVariable reports whether values of k are length-prefixed on the wire
// rather than fixed-size (Blob, Json, Charfield).
func (k Kind) IsVariable() bool {
	switch k {
	case KindBlob, KindJSON, KindCharfield:
		return true
	default:
		return false
	}
}

// FixedSize returns the number of bytes a fixed-size Kind occupies in its
// little-endian wire form, and ok=false for variable-length kinds.
func (k Kind) FixedSize() (n int, ok bool) {
	switch k {
	case KindID, KindInt8, KindUInt8, KindTimestamp:
		return 8, true
	case KindAddress, KindAssetID, KindContractID, KindBytes32, KindSalt:
		return 32, true
	case KindBytes4:
		return 4, true
	case KindBytes8:
		return 8, true
	case KindInt4, KindUInt4:
		return 4, true
	case KindMessageID:
		return 32, true
	case KindIdentity:
		// Identity carries a 1-byte discriminator plus a 32-byte payload
		// (Address or ContractId).
		return 33, true
	case KindBoolean:
		return 1, true
	default:
		return 0, false
	}
}
