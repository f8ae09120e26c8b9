package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisteredIndexerUID(t *testing.T) {
	r := RegisteredIndexer{Namespace: "my_ns", Identifier: "main"}
	assert.Equal(t, "my_ns.main", r.UID())
}

func TestAssetTypeString(t *testing.T) {
	assert.Equal(t, "wasm", AssetWasm.String())
	assert.Equal(t, "manifest", AssetManifest.String())
	assert.Equal(t, "schema", AssetSchema.String())
}

func TestAssetTable(t *testing.T) {
	assert.Equal(t, "indexer_asset_registry_wasm", assetTable(AssetWasm))
	assert.Equal(t, "indexer_asset_registry_manifest", assetTable(AssetManifest))
	assert.Equal(t, "indexer_asset_registry_schema", assetTable(AssetSchema))
}
