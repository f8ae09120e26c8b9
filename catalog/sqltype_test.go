package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLType(t *testing.T) {
	cases := map[Kind]string{
		KindID:         "BIGINT PRIMARY KEY",
		KindAddress:    "VARCHAR(64)",
		KindAssetID:    "VARCHAR(64)",
		KindContractID: "VARCHAR(64)",
		KindBytes32:    "VARCHAR(64)",
		KindSalt:       "VARCHAR(64)",
		KindMessageID:  "VARCHAR(64)",
		KindBytes4:     "VARCHAR(8)",
		KindBytes8:     "VARCHAR(16)",
		KindInt4:       "INTEGER",
		KindUInt4:      "INTEGER",
		KindInt8:       "BIGINT",
		KindUInt8:      "BIGINT",
		KindTimestamp:  "TIMESTAMP",
		KindBlob:       "BYTEA",
		KindJSON:       "JSON",
		KindCharfield:  "VARCHAR(255)",
		KindIdentity:   "VARCHAR(66)",
		KindBoolean:    "BOOLEAN",
	}
	for kind, want := range cases {
		got, err := kind.SQLType()
		assert.NoError(t, err, kind.String())
		assert.Equal(t, want, got, kind.String())
	}

	_, err := kindForeignKey.SQLType()
	assert.ErrorIs(t, err, ErrUnknownKind)
}
