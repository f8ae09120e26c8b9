package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parserTestSource = `
schema { query: Query }
scalar Address

type Query { dummy: String }

enum Status {
  ACTIVE
  CLOSED
}

type Account {
  id: ID!
  owner: Address!
  status: Status
}
`

func TestParseClassifiesTypes(t *testing.T) {
	p, err := Parse("ns", "ident", false, parserTestSource)
	require.NoError(t, err)

	assert.True(t, p.HasScalar("Address"))
	assert.True(t, p.IsEnumType("Status"))
	assert.True(t, p.HasType("Account"))
	assert.False(t, p.HasType("Missing"))
	assert.True(t, p.IsPossibleForeignKey("Account"))
	assert.False(t, p.IsPossibleForeignKey("Status"))
	assert.False(t, p.IsPossibleForeignKey("Address"))
}

func TestParseSkipsQueryRoot(t *testing.T) {
	p, err := Parse("ns", "ident", false, parserTestSource)
	require.NoError(t, err)
	_, ok := p.ObjectFields["Query"]
	assert.False(t, ok)
}

func TestParseFieldTypeMappings(t *testing.T) {
	p, err := Parse("ns", "ident", false, parserTestSource)
	require.NoError(t, err)
	assert.Equal(t, "Address", p.FieldTypeMappings["Account.owner"])
	assert.Equal(t, "Status", p.FieldTypeMappings["Status.ACTIVE"])
}
