package catalog

import "fmt"

// Value is a single column value tagged with its Kind. It is the Go
// analogue of the FtColumn the storage gateway and sandboxed executor pass
// across the host/guest boundary.
type Value struct {
	Kind Kind

	// Uint carries ID, UInt4, UInt8, Timestamp (as unix seconds) and
	// Boolean (0 or 1) values.
	Uint uint64

	// Int carries Int4 and Int8 signed values.
	Int int64

	// Bytes carries Address, AssetId, ContractId, Bytes4, Bytes8, Bytes32,
	// Salt, MessageId, Identity and Blob payloads.
	Bytes []byte

	// Str carries Charfield and Json textual payloads.
	Str string
}

// NewID returns an ID value.
func NewID(id uint64) Value { return Value{Kind: KindID, Uint: id} }

// NewInt4 returns an Int4 value.
func NewInt4(v int32) Value { return Value{Kind: KindInt4, Int: int64(v)} }

// NewInt8 returns an Int8 value.
func NewInt8(v int64) Value { return Value{Kind: KindInt8, Int: v} }

// NewUInt4 returns a UInt4 value.
func NewUInt4(v uint32) Value { return Value{Kind: KindUInt4, Uint: uint64(v)} }

// NewUInt8 returns a UInt8 value.
func NewUInt8(v uint64) Value { return Value{Kind: KindUInt8, Uint: v} }

// NewTimestamp returns a Timestamp value holding unix seconds.
func NewTimestamp(unixSeconds int64) Value {
	return Value{Kind: KindTimestamp, Uint: uint64(unixSeconds)}
}

// NewBoolean returns a Boolean value.
func NewBoolean(b bool) Value {
	v := Value{Kind: KindBoolean}
	if b {
		v.Uint = 1
	}
	return v
}

// Bool returns the Boolean value as a bool.
func (v Value) Bool() bool { return v.Uint != 0 }

// NewBytes32 returns a Bytes32 value; it panics if b is not exactly 32
// bytes, mirroring the fixed-size contract of the Kind.
func NewBytes32(b []byte) Value { return newFixedBytes(KindBytes32, b, 32) }

// NewAddress returns an Address value (32 bytes).
func NewAddress(b []byte) Value { return newFixedBytes(KindAddress, b, 32) }

// NewAssetID returns an AssetId value (32 bytes).
func NewAssetID(b []byte) Value { return newFixedBytes(KindAssetID, b, 32) }

// NewContractID returns a ContractId value (32 bytes).
func NewContractID(b []byte) Value { return newFixedBytes(KindContractID, b, 32) }

// NewSalt returns a Salt value (32 bytes).
func NewSalt(b []byte) Value { return newFixedBytes(KindSalt, b, 32) }

// NewBytes4 returns a Bytes4 value (4 bytes).
func NewBytes4(b []byte) Value { return newFixedBytes(KindBytes4, b, 4) }

// NewBytes8 returns a Bytes8 value (8 bytes).
func NewBytes8(b []byte) Value { return newFixedBytes(KindBytes8, b, 8) }

// NewMessageID returns a MessageId value (32 bytes).
func NewMessageID(b []byte) Value { return newFixedBytes(KindMessageID, b, 32) }

func newFixedBytes(k Kind, b []byte, want int) Value {
	if len(b) != want {
		panic(fmt.Sprintf("catalog: %s requires %d bytes, got %d", k, want, len(b)))
	}
	return Value{Kind: k, Bytes: append([]byte(nil), b...)}
}

// NewBlob returns a Blob value.
func NewBlob(b []byte) Value { return Value{Kind: KindBlob, Bytes: b} }

// NewCharfield returns a Charfield value.
func NewCharfield(s string) Value { return Value{Kind: KindCharfield, Str: s} }

// NewJSON returns a Json value holding pre-serialized JSON text.
func NewJSON(raw string) Value { return Value{Kind: KindJSON, Str: raw} }

// NewIdentity returns an Identity value: a 1-byte discriminator (0 =
// Address, 1 = ContractId) followed by the 32-byte payload.
func NewIdentity(isContract bool, payload []byte) Value {
	if len(payload) != 32 {
		panic(fmt.Sprintf("catalog: Identity payload requires 32 bytes, got %d", len(payload)))
	}
	b := make([]byte, 33)
	if isContract {
		b[0] = 1
	}
	copy(b[1:], payload)
	return Value{Kind: KindIdentity, Bytes: b}
}
