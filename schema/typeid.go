package schema

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// TypeID derives the stable identifier for an object type: the first 8
// bytes of SHA-256("namespace:name"), read big-endian. The hash input is
// namespace-qualified so that two indexers may declare types with the
// same GraphQL name without colliding.
func TypeID(namespace, name string) uint64 {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	return binary.BigEndian.Uint64(sum[:8])
}

// Version derives the schema version identifier from its full GraphQL
// source text: the hex-encoded SHA-256 digest of the unmodified document.
// Two schemas with byte-identical source always resolve to the same
// version, regardless of when or how many times they are submitted.
func Version(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
