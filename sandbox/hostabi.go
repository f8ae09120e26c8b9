package sandbox

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fuel-indexer-go/indexer/catalog"
	"github.com/fuel-indexer-go/indexer/gateway"
)

// hostEnv is the state the five ff_* host imports close over: the
// transaction for the batch currently in flight, the type table resolving
// type-ids to tables/columns, a logging sink, and the first host-call
// failure encountered (exported functions can't return a Go error, so it's
// latched here and checked by the caller after Call returns).
type hostEnv struct {
	tx      *gateway.Transaction
	types   *TypeTable
	logFunc func(level uint32, msg string)

	err error
}

func (e *hostEnv) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// registerHostModule binds the ff_* imports to the "env" namespace, exactly
// matching spec.md §6's Host ABI.
func registerHostModule(ctx context.Context, rt wazero.Runtime, env *hostEnv) (api.Module, error) {
	builder := rt.NewHostModuleBuilder("env")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, typeID uint64, id uint64, outPtrOut uint32) uint32 {
			return hostGetObject(ctx, mod, env, typeID, id, outPtrOut)
		}).
		Export("ff_get_object")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, typeID uint64, dataPtr uint32, dataLen uint32) {
			hostPutObject(ctx, mod, env, typeID, dataPtr, dataLen)
		}).
		Export("ff_put_object")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, dataPtr uint32, dataLen uint32) {
			hostPutManyToMany(ctx, mod, env, dataPtr, dataLen)
		}).
		Export("ff_put_many_to_many")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, level uint32, ptr uint32, length uint32) {
			hostLogData(mod, env, level, ptr, length)
		}).
		Export("ff_log_data")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, code uint32) {
			_ = mod.CloseWithExitCode(ctx, code)
		}).
		Export("ff_early_exit")

	return builder.Instantiate(ctx)
}

func hostGetObject(ctx context.Context, mod api.Module, env *hostEnv, typeID uint64, id uint64, outPtrOut uint32) uint32 {
	table, _, ok := env.types.Lookup(typeID)
	if !ok {
		return 0
	}
	data, err := env.tx.GetObject(ctx, table, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			env.fail(err)
		}
		return 0
	}
	ptr, ok := guestAlloc(ctx, mod, uint32(len(data)))
	if !ok {
		env.fail(errGuestAllocFailed)
		return 0
	}
	if !mod.Memory().Write(ptr, data) {
		env.fail(errGuestMemoryWrite)
		return 0
	}
	if !mod.Memory().WriteUint32Le(outPtrOut, ptr) {
		env.fail(errGuestMemoryWrite)
		return 0
	}
	return uint32(len(data))
}

func hostPutObject(ctx context.Context, mod api.Module, env *hostEnv, typeID uint64, dataPtr, dataLen uint32) {
	raw, ok := mod.Memory().Read(dataPtr, dataLen)
	if !ok {
		env.fail(errGuestMemoryRead)
		return
	}
	table, columns, ok := env.types.Lookup(typeID)
	if !ok {
		env.fail(errUnknownTypeID)
		return
	}

	const typeIDHeaderLen = 8
	if len(raw) < typeIDHeaderLen {
		env.fail(errGuestMemoryRead)
		return
	}
	fields := raw[typeIDHeaderLen:]

	names := make([]string, 0, len(columns))
	values := make([]catalog.Value, 0, len(columns))
	for _, col := range columns {
		if col.Name == "object" {
			continue
		}
		v, n, err := catalog.Decode(col.Kind, fields)
		if err != nil {
			env.fail(err)
			return
		}
		fields = fields[n:]
		names = append(names, col.Name)
		values = append(values, v)
	}

	if err := env.tx.PutObject(ctx, table, names, values, raw); err != nil {
		env.fail(err)
	}
}

func hostPutManyToMany(ctx context.Context, mod api.Module, env *hostEnv, dataPtr, dataLen uint32) {
	raw, ok := mod.Memory().Read(dataPtr, dataLen)
	if !ok {
		env.fail(errGuestMemoryRead)
		return
	}
	var queries []string
	if err := msgpack.Unmarshal(raw, &queries); err != nil {
		env.fail(err)
		return
	}
	if err := env.tx.PutManyToMany(ctx, queries); err != nil {
		env.fail(err)
	}
}

func hostLogData(mod api.Module, env *hostEnv, level, ptr, length uint32) {
	if env.logFunc == nil {
		return
	}
	raw, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return
	}
	env.logFunc(level, string(raw))
}

// guestAlloc calls the guest's exported alloc_fn to reserve length bytes of
// guest memory, returning the pointer it reports.
func guestAlloc(ctx context.Context, mod api.Module, length uint32) (uint32, bool) {
	fn := mod.ExportedFunction("alloc_fn")
	if fn == nil {
		return 0, false
	}
	results, err := fn.Call(ctx, uint64(length))
	if err != nil || len(results) == 0 {
		return 0, false
	}
	return uint32(results[0]), true
}

var (
	errGuestAllocFailed = errors.New("sandbox: guest alloc_fn failed")
	errGuestMemoryWrite = errors.New("sandbox: guest memory write out of bounds")
	errGuestMemoryRead  = errors.New("sandbox: guest memory read out of bounds")
	errUnknownTypeID    = errors.New("sandbox: unknown type-id")
)
