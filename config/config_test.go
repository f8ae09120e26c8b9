package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
database:
  dsn: "postgres://localhost/indexer"
node:
  address: "127.0.0.1:4000"
accept_sql_queries: true
retry:
  base_delay: 1s
  cap: 10s
`

func TestLoadParsesYAMLAndKeepsUnsetDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/indexer", cfg.Database.DSN)
	assert.Equal(t, "127.0.0.1:4000", cfg.Node.Address)
	assert.True(t, cfg.AcceptSQLQueries)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 10*time.Second, cfg.Retry.Cap)
	assert.Equal(t, 5, cfg.Retry.DBAcquireRetries, "unset fields keep their default")
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnvOverridesFileValues(t *testing.T) {
	cfg := defaults()
	cfg.Database.DSN = "from-file"
	cfg.AcceptSQLQueries = false

	envLookup = func(key string) (string, bool) {
		switch key {
		case "FUEL_INDEXER_DATABASE_DSN":
			return "from-env", true
		case "FUEL_INDEXER_ACCEPT_SQL_QUERIES":
			return "true", true
		default:
			return "", false
		}
	}
	defer func() { envLookup = os.LookupEnv }()

	ApplyEnv(&cfg)
	assert.Equal(t, "from-env", cfg.Database.DSN)
	assert.True(t, cfg.AcceptSQLQueries)
}

func TestApplyEnvLeavesUnsetVariablesAlone(t *testing.T) {
	cfg := defaults()
	cfg.Node.Address = "unchanged"

	envLookup = func(key string) (string, bool) { return "", false }
	defer func() { envLookup = os.LookupEnv }()

	ApplyEnv(&cfg)
	assert.Equal(t, "unchanged", cfg.Node.Address)
}
