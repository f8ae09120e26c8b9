package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-indexer-go/indexer/manifest"
)

const wasmManifest = `
namespace: test_namespace
identifier: loans
graphql_schema: schema/loans.graphql
module:
  wasm: target/wasm32-unknown-unknown/release/loans.wasm
contract_id: "0x0101010101010101010101010101010101010101010101010101010101010101"
start_block: 100
resumable: true
`

const nativeManifest = `
namespace: test_namespace
identifier: loans
graphql_schema: schema/loans.graphql
module: native
contract_id:
  - "0xaa"
  - "0xbb"
`

func TestParseWasmModule(t *testing.T) {
	m, err := manifest.Parse([]byte(wasmManifest))
	require.NoError(t, err)
	assert.Equal(t, "test_namespace.loans", m.UID())
	assert.Equal(t, manifest.ModuleWasm, m.Module.Kind)
	assert.Equal(t, "target/wasm32-unknown-unknown/release/loans.wasm", m.Module.Path)
	assert.Equal(t, manifest.SourceWasm, m.ExecutionSource())
	require.NotNil(t, m.StartBlock)
	assert.EqualValues(t, 100, *m.StartBlock)
	require.NotNil(t, m.Resumable)
	assert.True(t, *m.Resumable)

	id, ok := m.ContractID.Single()
	assert.True(t, ok)
	assert.Equal(t, "0x0101010101010101010101010101010101010101010101010101010101010101", id)
}

func TestParseNativeModule(t *testing.T) {
	m, err := manifest.Parse([]byte(nativeManifest))
	require.NoError(t, err)
	assert.Equal(t, manifest.ModuleNative, m.Module.Kind)
	assert.Equal(t, "native", m.Module.String())
	assert.Equal(t, manifest.SourceNative, m.ExecutionSource())
	assert.Equal(t, []string{"0xaa", "0xbb"}, m.ContractID.IDs)

	_, err = m.ModuleBytes()
	assert.Error(t, err)
}

func TestParseRequiresNamespaceAndIdentifier(t *testing.T) {
	_, err := manifest.Parse([]byte("graphql_schema: x.graphql\nmodule: native\n"))
	assert.Error(t, err)
}

func TestParseRejectsUnknownModuleScalar(t *testing.T) {
	_, err := manifest.Parse([]byte("namespace: a\nidentifier: b\ngraphql_schema: x.graphql\nmodule: bogus\n"))
	assert.Error(t, err)
}
