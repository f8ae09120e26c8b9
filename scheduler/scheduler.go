// Package scheduler drives one goroutine per registered indexer: it polls
// the node for contiguous pages of blocks, hands each filtered batch to the
// indexer's sandboxed executor, and advances a durable cursor on commit.
// Retry, cancellation, and replace semantics follow spec.md §4.5 exactly.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/fuel-indexer-go/indexer"
	"github.com/fuel-indexer-go/indexer/node"
	"github.com/fuel-indexer-go/indexer/registry"
	"github.com/fuel-indexer-go/indexer/sandbox"
)

// Logger is the structured-logging sink a Task reports batch failures to.
// package xlog's zap-backed logger satisfies this.
type Logger interface {
	Error(msg string, keysAndValues ...any)
}

// errStopped is the sentinel retryTransient returns (wrapped in
// backoff.Permanent) when shouldStop fires mid-retry; Task.run treats it
// the same as a clean Stop.
var errStopped = errors.New("scheduler: task stopped")

// Options tunes the timing knobs spec.md §4.5/§5 leave configurable.
type Options struct {
	// PageSize is the number of blocks requested per page. Default 10.
	PageSize int
	// PollInterval is how long the task sleeps after a page comes back
	// empty or the node reports no further cursor. Default 5s.
	PollInterval time.Duration
	// BaseRetryDelay is the starting delay for a Transient-error retry.
	// Default 2s, doubling up to RetryCap.
	BaseRetryDelay time.Duration
	RetryCap       time.Duration
}

func (o Options) withDefaults() Options {
	if o.PageSize == 0 {
		o.PageSize = 10
	}
	if o.PollInterval == 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.BaseRetryDelay == 0 {
		o.BaseRetryDelay = 2 * time.Second
	}
	if o.RetryCap == 0 {
		o.RetryCap = 32 * time.Second
	}
	return o
}

// Task drives one indexer's loop end to end: fetch, filter, dispatch,
// commit, repeat.
type Task struct {
	UID       string
	IndexerID int64
	Executor  sandbox.Executor
	Node      node.Client
	DB        registry.Conn
	Control   Control
	Logger    Logger

	opts  Options
	state State
}

// NewTask builds a Task ready to Run. initial carries the starting State
// (StartBlock/EndBlock/Resumable/PageSize from the manifest, plus whatever
// LastCommittedHeight was loaded from the registry row).
func NewTask(uid string, indexerID int64, exec sandbox.Executor, nodeClient node.Client, db registry.Conn, control Control, opts Options, initial State) *Task {
	opts = opts.withDefaults()
	if initial.PageSize == 0 {
		initial.PageSize = opts.PageSize
	}
	initial.NextBlock = effectiveStartHeight(initial)
	return &Task{
		UID:       uid,
		IndexerID: indexerID,
		Executor:  exec,
		Node:      nodeClient,
		DB:        db,
		Control:   control,
		opts:      opts,
		state:     initial,
	}
}

// Run executes the loop until ctx is canceled, the kill-switch trips, a
// Stop request arrives, or a Fatal error surfaces. It returns the Fatal
// error in the last case and nil for every cooperative stop. A Stop
// request's Ack is closed as Run returns.
func (t *Task) Run(ctx context.Context) error {
	for {
		if stop, req := t.drainControl(); stop {
			defer ack(req)
			return nil
		}
		if t.Executor.KillSwitch().IsSet() {
			return nil
		}

		page, err := t.Node.Blocks(ctx, node.PaginationRequest{
			Cursor:    t.state.Cursor,
			Limit:     t.state.PageSize,
			Direction: node.Forward,
		})
		if err != nil {
			if t.sleep(ctx, t.opts.PollInterval) {
				return nil
			}
			continue
		}

		batch := filterBlocks(page.Items, t.state.NextBlock, t.state.EndBlock)
		if len(batch) == 0 {
			t.state.Cursor = page.Cursor
			if !page.HasNext {
				if t.sleep(ctx, t.opts.PollInterval) {
					return nil
				}
			}
			continue
		}

		if t.Executor.KillSwitch().IsSet() {
			return nil
		}

		handleErr := retryTransient(ctx, t.opts.BaseRetryDelay, t.opts.RetryCap, t.Executor.KillSwitch().IsSet, func() error {
			return t.Executor.HandleEvents(ctx, batch)
		})

		switch {
		case handleErr == nil:
			last := batch[len(batch)-1].Height
			t.state.LastCommittedHeight = last
			t.state.NextBlock = last + 1
			if err := registry.SetLastCommittedHeight(ctx, t.DB, t.IndexerID, last); err != nil {
				t.log("persist last_committed_height failed", err)
			}
		case errors.Is(handleErr, errStopped):
			return nil
		case indexer.IsFatal(handleErr):
			t.log("fatal handler error, stopping indexer", handleErr)
			return handleErr
		default:
			// DataError: the gateway already reverted the batch; the
			// scheduler still advances past it so a single bad block
			// doesn't wedge the indexer forever.
			t.log("batch reverted, advancing past it", handleErr)
			last := batch[len(batch)-1].Height
			t.state.NextBlock = last + 1
		}

		t.state.Cursor = page.Cursor
		if t.state.EndBlock != 0 && t.state.NextBlock > t.state.EndBlock {
			return nil
		}
	}
}

// drainControl non-blockingly checks for a pending ServiceRequest. A Stop
// request is returned un-acked with stop=true, so Run acks it as it
// returns; a Reload request is acked here and otherwise ignored (nothing
// in this package swaps a task's executor; Supervisor.Replace restarts a
// task instead).
func (t *Task) drainControl() (stop bool, req ServiceRequest) {
	if t.Control == nil {
		return false, ServiceRequest{}
	}
	select {
	case req := <-t.Control:
		if !req.Stop {
			ack(req)
		}
		return req.Stop, req
	default:
		return false, ServiceRequest{}
	}
}

// sleep waits for d or ctx cancellation, returning true if ctx was
// canceled (the caller should stop).
func (t *Task) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}

func (t *Task) log(msg string, err error) {
	if t.Logger == nil {
		return
	}
	t.Logger.Error(msg, "indexer", t.UID, "error", err)
}
