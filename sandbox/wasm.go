package sandbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fuel-indexer-go/indexer/gateway"
	"github.com/fuel-indexer-go/indexer/manifest"
	"github.com/fuel-indexer-go/indexer/node"
)

// requiredExports lists the guest exports a WASM module must provide;
// missing any of them is a Fatal load-time error, matching spec.md §4.4.3.
var requiredExports = []string{"handle_events", "alloc_fn", "dealloc_fn"}

// WasmExecutor runs one indexer's handlers inside a metered wazero guest.
type WasmExecutor struct {
	runtime    wazero.Runtime
	hostModule api.Module
	module     api.Module
	env        *hostEnv

	manifest      manifest.Manifest
	gw            *gateway.Gateway
	types         *TypeTable
	meteringLimit uint64

	kill KillSwitch
}

// WasmOptions configures a WasmExecutor beyond the required manifest,
// compiled module bytes, gateway, and type table.
type WasmOptions struct {
	// MeteringLimit bounds the number of guest function calls one
	// HandleEvents invocation may make before it traps. Zero disables
	// metering, which spec.md does not call for in production but which
	// is useful for tests that don't care about the budget.
	MeteringLimit uint64
	// LogFunc receives every ff_log_data call the guest makes. Nil
	// discards log output.
	LogFunc func(level uint32, msg string)
}

// NewWasmExecutor compiles wasmBytes, registers the host ABI, and
// instantiates the guest module, resolving its required exports. It
// returns a Fatal-classified error if the module fails to compile, link,
// or is missing a required export.
func NewWasmExecutor(ctx context.Context, m manifest.Manifest, wasmBytes []byte, gw *gateway.Gateway, types *TypeTable, opts WasmOptions) (*WasmExecutor, error) {
	rt := wazero.NewRuntime(ctx)

	env := &hostEnv{types: types, logFunc: opts.LogFunc}
	hostModule, err := registerHostModule(ctx, rt, env)
	if err != nil {
		rt.Close(ctx)
		return nil, fatalError("register_host_module", err)
	}

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, fatalError("compile_module", err)
	}

	instance, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		rt.Close(ctx)
		return nil, fatalError("instantiate_module", err)
	}

	for _, name := range requiredExports {
		if instance.ExportedFunction(name) == nil {
			rt.Close(ctx)
			return nil, fatalError("resolve_exports", fmt.Errorf("missing required export %q", name))
		}
	}

	return &WasmExecutor{
		runtime:       rt,
		hostModule:    hostModule,
		module:        instance,
		env:           env,
		manifest:      m,
		gw:            gw,
		types:         types,
		meteringLimit: opts.MeteringLimit,
	}, nil
}

// Close releases the wazero runtime and every module instantiated from it.
func (e *WasmExecutor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Manifest implements Executor.
func (e *WasmExecutor) Manifest() manifest.Manifest { return e.manifest }

// KillSwitch implements Executor.
func (e *WasmExecutor) KillSwitch() *KillSwitch { return &e.kill }

// HandleEvents serializes blocks, copies them into guest memory via
// alloc_fn, invokes handle_events under the configured metering budget, and
// frees the guest buffer with dealloc_fn. The whole call runs inside one
// gateway transaction: a clean return commits it, any error reverts it.
func (e *WasmExecutor) HandleEvents(ctx context.Context, blocks []node.BlockData) error {
	tx, err := e.gw.Begin(ctx)
	if err != nil {
		return toIndexerError(e.manifest.UID(), transientError("start_transaction", err))
	}
	e.env.tx = tx
	e.env.err = nil

	payload, err := msgpack.Marshal(blocks)
	if err != nil {
		_ = tx.Rollback()
		return toIndexerError(e.manifest.UID(), dataError("encode_batch", err))
	}

	ptr, ok := guestAlloc(ctx, e.module, uint32(len(payload)))
	if !ok {
		_ = tx.Rollback()
		return toIndexerError(e.manifest.UID(), fatalError("alloc_fn", errGuestAllocFailed))
	}
	if !e.module.Memory().Write(ptr, payload) {
		_ = tx.Rollback()
		return toIndexerError(e.manifest.UID(), fatalError("alloc_fn", errGuestMemoryWrite))
	}

	meteredCtx := withMetering(ctx, e.meteringLimit)
	_, callErr := e.module.ExportedFunction("handle_events").Call(meteredCtx, uint64(ptr), uint64(len(payload)))

	if dealloc := e.module.ExportedFunction("dealloc_fn"); dealloc != nil {
		_, _ = dealloc.Call(ctx, uint64(ptr), uint64(len(payload)))
	}

	if callErr == nil && e.env.err != nil {
		callErr = e.env.err
	}

	if callErr != nil {
		_ = tx.Rollback()
		return toIndexerError(e.manifest.UID(), classifyWasmError(callErr, &e.kill))
	}

	if err := tx.Commit(); err != nil {
		return toIndexerError(e.manifest.UID(), transientError("commit_transaction", err))
	}
	return nil
}

// classifyWasmError maps a trap or host-call failure onto the executor
// error taxonomy, tripping the kill-switch for module-level failures.
func classifyWasmError(err error, kill *KillSwitch) *HandlerError {
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == meteringExitCode {
		kill.Set()
		return fatalError("handle_events", ErrMeteringExhausted)
	}
	var he *HandlerError
	if errors.As(err, &he) {
		if he.Fatal {
			kill.Set()
		}
		return he
	}
	return dataError("handle_events", err)
}
