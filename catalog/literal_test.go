package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralNumeric(t *testing.T) {
	lit, err := Literal(NewID(42))
	require.NoError(t, err)
	assert.Equal(t, "42", lit)

	lit, err = Literal(NewInt4(-7))
	require.NoError(t, err)
	assert.Equal(t, "-7", lit)

	lit, err = Literal(NewBoolean(true))
	require.NoError(t, err)
	assert.Equal(t, "TRUE", lit)
}

func TestLiteralBytesHexEncoded(t *testing.T) {
	b := []byte{0xde, 0xad, 0xbe, 0xef}
	lit, err := Literal(NewBytes4(b))
	require.NoError(t, err)
	assert.Equal(t, "'deadbeef'", lit)
}

func TestLiteralStringEscaping(t *testing.T) {
	lit, err := Literal(NewCharfield(`O'Brien`))
	require.NoError(t, err)
	assert.Equal(t, `'O''Brien'`, lit)

	lit, err = Literal(NewJSON(`{"a":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, `'{"a":"b"}'`, lit)
}

func TestLiteralUnknownKind(t *testing.T) {
	_, err := Literal(Value{Kind: kindForeignKey})
	assert.ErrorIs(t, err, ErrUnknownKind)
}
