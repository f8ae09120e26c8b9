package sandbox

import (
	"context"
	"errors"

	"github.com/fuel-indexer-go/indexer/gateway"
	"github.com/fuel-indexer-go/indexer/manifest"
	"github.com/fuel-indexer-go/indexer/node"
)

// HandlerFunc is the typed function value a native indexer's compiled
// binary registers in place of a WASM module, matching spec.md §4.4.2's
// `fn(Vec<BlockData>, Arc<Mutex<Database>>) -> Future<Result<(), ExecError>>`.
type HandlerFunc func(ctx context.Context, blocks []node.BlockData, tx *gateway.Transaction) error

// NativeExecutor runs handle in-process with no metering, sharing the same
// one-transaction-per-batch boundary and error classification as
// WasmExecutor.
type NativeExecutor struct {
	manifest manifest.Manifest
	gw       *gateway.Gateway
	handle   HandlerFunc
	kill     KillSwitch
}

// NewNativeExecutor returns an Executor that dispatches each batch to handle.
func NewNativeExecutor(m manifest.Manifest, gw *gateway.Gateway, handle HandlerFunc) *NativeExecutor {
	return &NativeExecutor{manifest: m, gw: gw, handle: handle}
}

// Manifest implements Executor.
func (e *NativeExecutor) Manifest() manifest.Manifest { return e.manifest }

// KillSwitch implements Executor.
func (e *NativeExecutor) KillSwitch() *KillSwitch { return &e.kill }

// HandleEvents implements Executor.
func (e *NativeExecutor) HandleEvents(ctx context.Context, blocks []node.BlockData) error {
	tx, err := e.gw.Begin(ctx)
	if err != nil {
		return toIndexerError(e.manifest.UID(), transientError("start_transaction", err))
	}

	if err := e.handle(ctx, blocks, tx); err != nil {
		_ = tx.Rollback()
		var he *HandlerError
		if errors.As(err, &he) {
			if he.Fatal {
				e.kill.Set()
			}
			return toIndexerError(e.manifest.UID(), he)
		}
		return toIndexerError(e.manifest.UID(), dataError("handle_events", err))
	}

	if err := tx.Commit(); err != nil {
		return toIndexerError(e.manifest.UID(), transientError("commit_transaction", err))
	}
	return nil
}
