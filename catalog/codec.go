package catalog

import (
	"encoding/binary"
	"strings"
)

// maxCharfieldLen is the Charfield length ceiling, post-trim, in bytes.
const maxCharfieldLen = 255

// Encode renders v as its little-endian wire form. Fixed-size kinds encode
// to exactly Kind.FixedSize() bytes; variable kinds (Blob, Json, Charfield)
// are length-prefixed with a uint32 little-endian length. column names the
// field being encoded, used only for error messages.
func Encode(v Value, column string) ([]byte, error) {
	switch v.Kind {
	case KindID, KindUInt8, KindTimestamp:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, v.Uint)
		return b, nil
	case KindInt8:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(v.Int))
		return b, nil
	case KindUInt4:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v.Uint))
		return b, nil
	case KindInt4:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v.Int))
		return b, nil
	case KindBoolean:
		if v.Uint != 0 {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case KindAddress, KindAssetID, KindContractID, KindBytes32, KindSalt,
		KindBytes4, KindBytes8, KindMessageID, KindIdentity:
		return append([]byte(nil), v.Bytes...), nil
	case KindBlob:
		return lengthPrefixed(v.Bytes), nil
	case KindJSON:
		return lengthPrefixed([]byte(v.Str)), nil
	case KindCharfield:
		trimmed := strings.TrimRight(v.Str, " ")
		if len(trimmed) > maxCharfieldLen {
			return nil, &LengthExceededError{Column: column, Length: len(trimmed)}
		}
		return lengthPrefixed([]byte(trimmed)), nil
	default:
		return nil, ErrUnknownKind
	}
}

func lengthPrefixed(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.LittleEndian.PutUint32(out, uint32(len(b)))
	copy(out[4:], b)
	return out
}

// Decode reads one value of the given Kind from the front of buf, returning
// the value and the number of bytes consumed. For variable-length kinds the
// leading 4-byte length prefix is included in the consumed count.
func Decode(kind Kind, buf []byte) (Value, int, error) {
	if n, ok := kind.FixedSize(); ok {
		if len(buf) < n {
			return Value{}, 0, &DecodeError{Expected: n, Got: len(buf)}
		}
		return decodeFixed(kind, buf[:n]), n, nil
	}
	if len(buf) < 4 {
		return Value{}, 0, &DecodeError{Expected: 4, Got: len(buf), Reason: "truncated length prefix"}
	}
	l := int(binary.LittleEndian.Uint32(buf))
	if len(buf) < 4+l {
		return Value{}, 0, &DecodeError{Expected: 4 + l, Got: len(buf)}
	}
	payload := buf[4 : 4+l]
	switch kind {
	case KindBlob:
		return Value{Kind: KindBlob, Bytes: append([]byte(nil), payload...)}, 4 + l, nil
	case KindJSON:
		return Value{Kind: KindJSON, Str: string(payload)}, 4 + l, nil
	case KindCharfield:
		return Value{Kind: KindCharfield, Str: string(payload)}, 4 + l, nil
	default:
		return Value{}, 0, ErrUnknownKind
	}
}

func decodeFixed(kind Kind, b []byte) Value {
	switch kind {
	case KindID:
		return Value{Kind: KindID, Uint: binary.LittleEndian.Uint64(b)}
	case KindUInt8, KindTimestamp:
		return Value{Kind: kind, Uint: binary.LittleEndian.Uint64(b)}
	case KindInt8:
		return Value{Kind: KindInt8, Int: int64(binary.LittleEndian.Uint64(b))}
	case KindUInt4:
		return Value{Kind: KindUInt4, Uint: uint64(binary.LittleEndian.Uint32(b))}
	case KindInt4:
		return Value{Kind: KindInt4, Int: int64(int32(binary.LittleEndian.Uint32(b)))}
	case KindBoolean:
		return Value{Kind: KindBoolean, Uint: uint64(b[0])}
	default: // fixed byte-array kinds
		return Value{Kind: kind, Bytes: append([]byte(nil), b...)}
	}
}
