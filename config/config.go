// Package config loads the runtime configuration every component reads at
// startup: database DSN, node address, listen endpoint, metering budget,
// retry tuning, and the accept_sql_queries guard. Config is read from a
// YAML file and overridden by environment variables, matching the pack's
// layered-override convention (env wins over file) rather than requiring
// every deployment to hand-edit YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the fully-resolved runtime configuration.
type Config struct {
	Database Database `yaml:"database"`
	Node     Node     `yaml:"node"`
	HTTP     HTTP     `yaml:"http"`
	Retry    Retry    `yaml:"retry"`

	// MeteringBudget is the guest function-call budget per handle_events
	// invocation, the value sandbox.WasmOptions.MeteringLimit takes. Zero
	// disables metering.
	MeteringBudget uint64 `yaml:"metering_budget"`

	// AcceptSQLQueries gates the /sql endpoint per spec.md §6 scenario 6:
	// queryplanner.ValidateRawSQL's first argument.
	AcceptSQLQueries bool `yaml:"accept_sql_queries"`
}

// Database holds the Postgres connection string the gateway and registry
// share one *sql.DB pool from.
type Database struct {
	DSN string `yaml:"dsn"`
}

// Node holds the address of the Fuel node the scheduler polls for blocks.
type Node struct {
	Address string `yaml:"address"`
}

// HTTP holds the listen endpoint for the out-of-scope HTTP layer. Carried
// here rather than dropped, since config loading is an ambient concern
// that exists independent of whether this module serves that endpoint.
type HTTP struct {
	ListenAddress string `yaml:"listen_address"`
}

// Retry holds backoff settings whose defaults match scheduler.Options'
// defaults. Nothing in this module reads it: scheduler.Options and the
// gateway's start_transaction retry are configured independently.
type Retry struct {
	BaseDelay        time.Duration `yaml:"base_delay"`
	Cap              time.Duration `yaml:"cap"`
	DBAcquireRetries int           `yaml:"db_acquire_retries"`
}

func defaults() Config {
	return Config{
		Retry: Retry{
			BaseDelay:        2 * time.Second,
			Cap:              32 * time.Second,
			DBAcquireRetries: 5,
		},
		AcceptSQLQueries: false,
	}
}

// Load reads path as YAML into a Config seeded with defaults, then applies
// environment overrides via ApplyEnv.
func Load(path string) (Config, error) {
	cfg := defaults()

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// envLookup is swappable in tests; defaults to os.LookupEnv.
var envLookup = os.LookupEnv

// ApplyEnv overrides cfg's fields from environment variables, for the
// settings an operator most often needs to vary per-deployment without
// editing the checked-in file: the database DSN, the node address, the
// HTTP listen address, the SQL endpoint guard, and the metering budget.
func ApplyEnv(cfg *Config) {
	if v, ok := envLookup("FUEL_INDEXER_DATABASE_DSN"); ok {
		cfg.Database.DSN = v
	}
	if v, ok := envLookup("FUEL_INDEXER_NODE_ADDRESS"); ok {
		cfg.Node.Address = v
	}
	if v, ok := envLookup("FUEL_INDEXER_HTTP_LISTEN_ADDRESS"); ok {
		cfg.HTTP.ListenAddress = v
	}
	if v, ok := envLookup("FUEL_INDEXER_ACCEPT_SQL_QUERIES"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AcceptSQLQueries = b
		}
	}
	if v, ok := envLookup("FUEL_INDEXER_METERING_BUDGET"); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.MeteringBudget = n
		}
	}
}
