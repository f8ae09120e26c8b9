// Package gateway is the storage boundary sandboxed indexer modules talk
// to through the host ABI: one transaction per batch of blocks, with
// upsert-by-id writes, id-keyed reads, and many-to-many join inserts.
package gateway

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/fuel-indexer-go/indexer/catalog"
)

// Gateway opens transactions against a connection pool with retrying
// acquisition, since a saturated pool under indexer load should back off
// rather than fail a block immediately.
type Gateway struct {
	db      *sql.DB
	dialect Dialect
	backoff func() backoff.BackOff
}

// New returns a Postgres Gateway over db, retrying BeginTx with
// exponential backoff: delays of 2s, 4s, 8s, 16s and 32s, giving up after
// the fifth retry.
func New(db *sql.DB) *Gateway {
	return NewWithDialect(db, Postgres)
}

// NewWithDialect is New, targeting a dialect other than Postgres (MySQL
// or SQLite), so PutObject renders that dialect's bind placeholder and
// conflict-handling syntax instead of assuming Postgres.
func NewWithDialect(db *sql.DB, dialect Dialect) *Gateway {
	return &Gateway{
		db:      db,
		dialect: dialect,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 2 * time.Second
			b.Multiplier = 2
			b.RandomizationFactor = 0
			b.MaxElapsedTime = 0
			return backoff.WithMaxRetries(b, 5)
		},
	}
}

// Begin opens a new transaction, retrying on transient acquisition
// failures (e.g. the pool is momentarily exhausted) until the retry limit
// is reached.
func (g *Gateway) Begin(ctx context.Context) (*Transaction, error) {
	var tx *sql.Tx
	err := backoff.Retry(func() error {
		t, err := g.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		tx = t
		return nil
	}, backoff.WithContext(g.backoff(), ctx))
	if err != nil {
		return nil, &Error{Op: "start_transaction", Err: err}
	}
	return &Transaction{tx: tx, dialect: g.dialect}, nil
}

// Transaction is a single stashed connection spanning one batch of
// blocks: every put_object, get_object and put_many_to_many host call an
// indexer module makes while handling that batch runs inside it, and it
// is committed or rolled back as a unit once the handler returns.
type Transaction struct {
	tx      *sql.Tx
	dialect Dialect
}

// Commit commits the transaction.
func (t *Transaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return &Error{Op: "commit_transaction", Err: err}
	}
	return nil
}

// Rollback reverts the transaction.
func (t *Transaction) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return &Error{Op: "revert_transaction", Err: err}
	}
	return nil
}

// PutObject upserts one row by id: columns and values describe the
// row's typed columns in schema order (excluding the implicit object
// column), and objectBytes is the row's packed binary encoding. A row
// with a colliding id is updated in place except when the table carries
// no columns besides id and object, in which case the conflicting row is
// left untouched.
func (t *Transaction) PutObject(ctx context.Context, table string, columns []string, values []catalog.Value, objectBytes []byte) error {
	query, err := buildPutQuery(t.dialect, table, columns, values)
	if err != nil {
		return &Error{Op: "put_object", Table: table, Err: err}
	}
	args := []any{objectBytes}
	if (t.dialect == MySQL || t.dialect == SQLite) && !(len(columns) == 1 && columns[0] == idColumn) {
		// "?" placeholders are positional: the update clause's object
		// placeholder needs its own copy of the bytes.
		args = append(args, objectBytes)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return &Error{Op: "put_object", Table: table, Err: err}
	}
	return nil
}

// GetObject fetches the packed object bytes for the row with the given
// id. It returns sql.ErrNoRows if no such row exists.
func (t *Transaction) GetObject(ctx context.Context, table string, id uint64) ([]byte, error) {
	var b []byte
	row := t.tx.QueryRowContext(ctx, getQuery(table, id))
	if err := row.Scan(&b); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, &Error{Op: "get_object", Table: table, Err: err}
	}
	return b, nil
}

// PutManyToMany executes a batch of pre-rendered join-table insert
// statements as part of the current transaction.
func (t *Transaction) PutManyToMany(ctx context.Context, queries []string) error {
	for _, q := range queries {
		if _, err := t.tx.ExecContext(ctx, q); err != nil {
			return &Error{Op: "put_many_to_many", Err: err}
		}
	}
	return nil
}

// ExecDDL runs a schema-definition statement (CREATE SCHEMA/TABLE) as
// part of the current transaction.
func (t *Transaction) ExecDDL(ctx context.Context, stmt string) error {
	if _, err := t.tx.ExecContext(ctx, stmt); err != nil {
		return &Error{Op: "exec_ddl", Err: err}
	}
	return nil
}
