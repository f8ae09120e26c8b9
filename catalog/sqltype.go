package catalog

// SQLType renders the storage-column type used to materialize a field of
// kind k. The mapping is fixed across dialects; dialect-specific gateways
// may translate further (e.g. Blob to a driver-specific binary type) but
// the catalog owns the canonical Postgres-flavored spelling.
func (k Kind) SQLType() (string, error) {
	switch k {
	case KindID:
		return "BIGINT PRIMARY KEY", nil
	case KindAddress, KindAssetID, KindContractID, KindBytes32, KindSalt, KindMessageID:
		return "VARCHAR(64)", nil
	case KindBytes4:
		return "VARCHAR(8)", nil
	case KindBytes8:
		return "VARCHAR(16)", nil
	case KindInt4, KindUInt4:
		return "INTEGER", nil
	case KindInt8, KindUInt8:
		return "BIGINT", nil
	case KindTimestamp:
		return "TIMESTAMP", nil
	case KindBlob:
		return "BYTEA", nil
	case KindJSON:
		return "JSON", nil
	case KindCharfield:
		return "VARCHAR(255)", nil
	case KindIdentity:
		return "VARCHAR(66)", nil
	case KindBoolean:
		return "BOOLEAN", nil
	default:
		return "", ErrUnknownKind
	}
}
