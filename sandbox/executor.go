// Package sandbox runs one indexer's compiled handlers against a batch of
// blocks, in one of two variants sharing the same Executor contract: a
// metered WASM guest (WasmExecutor) or an in-process typed function
// (NativeExecutor). Every call opens exactly one Storage Gateway
// transaction per batch and commits it on clean return or reverts it on
// any trap, host-call failure, or metering exhaustion.
package sandbox

import (
	"context"
	"sync/atomic"

	"github.com/fuel-indexer-go/indexer/manifest"
	"github.com/fuel-indexer-go/indexer/node"
)

// KillSwitch is a flag an executor sets once and never clears: once set,
// the owning scheduler task stops polling for further blocks.
type KillSwitch struct {
	flag atomic.Bool
}

// Set trips the kill-switch.
func (k *KillSwitch) Set() { k.flag.Store(true) }

// IsSet reports whether the kill-switch has been tripped.
func (k *KillSwitch) IsSet() bool { return k.flag.Load() }

// Executor is the capability set the scheduler drives: a manifest to read
// configuration from, a kill-switch it can poll after every batch, and one
// entry point that processes a batch of blocks inside a single transaction.
// WasmExecutor and NativeExecutor both satisfy it so the scheduler's hot
// loop never type-switches on which variant it's driving.
type Executor interface {
	Manifest() manifest.Manifest
	KillSwitch() *KillSwitch
	HandleEvents(ctx context.Context, blocks []node.BlockData) error
}
