package scheduler

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-indexer-go/indexer"
	"github.com/fuel-indexer-go/indexer/manifest"
	"github.com/fuel-indexer-go/indexer/node"
	"github.com/fuel-indexer-go/indexer/sandbox"
)

func TestEffectiveStartHeightResumesFromLastCommitted(t *testing.T) {
	assert.EqualValues(t, 21, effectiveStartHeight(State{Resumable: true, StartBlock: 5, LastCommittedHeight: 20}))
	assert.EqualValues(t, 5, effectiveStartHeight(State{Resumable: true, StartBlock: 5, LastCommittedHeight: 0}))
	assert.EqualValues(t, 1, effectiveStartHeight(State{Resumable: true}))
}

func TestEffectiveStartHeightIgnoresLastCommittedWhenNotResumable(t *testing.T) {
	assert.EqualValues(t, 5, effectiveStartHeight(State{Resumable: false, StartBlock: 5, LastCommittedHeight: 20}))
	assert.EqualValues(t, 1, effectiveStartHeight(State{Resumable: false}))
}

func TestFilterBlocksDropsAlreadyCommittedAndStopsAtEndBlock(t *testing.T) {
	blocks := []node.BlockData{{Height: 1}, {Height: 2}, {Height: 3}, {Height: 4}, {Height: 5}}
	out := filterBlocks(blocks, 3, 4)
	require.Len(t, out, 2)
	assert.EqualValues(t, 3, out[0].Height)
	assert.EqualValues(t, 4, out[1].Height)
}

func TestFilterBlocksUnboundedEndBlock(t *testing.T) {
	blocks := []node.BlockData{{Height: 1}, {Height: 2}}
	out := filterBlocks(blocks, 0, 0)
	assert.Len(t, out, 2)
}

// fakeExecutor is a minimal sandbox.Executor implementation so the
// scheduler's loop logic can be tested without a real wazero/native
// handler underneath it.
type fakeExecutor struct {
	kill    sandbox.KillSwitch
	handle  func(ctx context.Context, blocks []node.BlockData) error
	batches [][]node.BlockData
}

func (f *fakeExecutor) Manifest() manifest.Manifest    { return manifest.Manifest{} }
func (f *fakeExecutor) KillSwitch() *sandbox.KillSwitch { return &f.kill }
func (f *fakeExecutor) HandleEvents(ctx context.Context, blocks []node.BlockData) error {
	f.batches = append(f.batches, blocks)
	return f.handle(ctx, blocks)
}

// mockConn returns a registry.Conn backed by sqlmock, pre-armed to accept
// any number of last_committed_height updates so tests can focus on the
// scheduler's control flow rather than the persistence call's exact args.
func mockConn(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec(`UPDATE indexer_registry SET last_committed_height`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Permit more than one commit without over-specifying call count.
	for i := 0; i < 10; i++ {
		mock.ExpectExec(`UPDATE indexer_registry SET last_committed_height`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	return db, func() { db.Close() }
}

func TestTaskRunProcessesUpToEndBlockThenStops(t *testing.T) {
	blocks := make([]node.BlockData, 5)
	for i := range blocks {
		blocks[i] = node.BlockData{Height: uint32(i + 1)}
	}
	mem := node.NewMemory(blocks)

	db, closeDB := mockConn(t)
	defer closeDB()

	exec := &fakeExecutor{handle: func(ctx context.Context, blocks []node.BlockData) error { return nil }}
	task := NewTask("ns.id", 1, exec, mem, db, nil, Options{PageSize: 10, PollInterval: 10 * time.Millisecond},
		State{StartBlock: 1, EndBlock: 3, PageSize: 10})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := task.Run(ctx)
	require.NoError(t, err)

	require.Len(t, exec.batches, 1)
	assert.Len(t, exec.batches[0], 3)
	assert.EqualValues(t, 3, task.state.LastCommittedHeight)
}

func TestTaskRunStopsWhenKillSwitchAlreadySet(t *testing.T) {
	mem := node.NewMemory(nil)
	db, closeDB := mockConn(t)
	defer closeDB()

	exec := &fakeExecutor{handle: func(ctx context.Context, blocks []node.BlockData) error { return nil }}
	exec.kill.Set()

	task := NewTask("ns.id", 1, exec, mem, db, nil, Options{}, State{StartBlock: 1})
	err := task.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, exec.batches)
}

func TestTaskRunFatalErrorStopsAndPropagates(t *testing.T) {
	blocks := []node.BlockData{{Height: 1}}
	mem := node.NewMemory(blocks)
	db, closeDB := mockConn(t)
	defer closeDB()

	exec := &fakeExecutor{handle: func(ctx context.Context, blocks []node.BlockData) error {
		return indexer.New(indexer.KindModule, "resolve_exports", assert.AnError).AsFatal()
	}}
	task := NewTask("ns.id", 1, exec, mem, db, nil, Options{}, State{StartBlock: 1})
	err := task.Run(context.Background())
	require.Error(t, err)
	assert.True(t, indexer.IsFatal(err))
}

func TestTaskRunDataErrorAdvancesPastBatch(t *testing.T) {
	blocks := []node.BlockData{{Height: 1}, {Height: 2}}
	mem := node.NewMemory(blocks)
	db, closeDB := mockConn(t)
	defer closeDB()

	calls := 0
	exec := &fakeExecutor{handle: func(ctx context.Context, blocks []node.BlockData) error {
		calls++
		if calls == 1 {
			return indexer.New(indexer.KindData, "handle_events", assert.AnError)
		}
		return nil
	}}
	task := NewTask("ns.id", 1, exec, mem, db, nil, Options{PollInterval: 5 * time.Millisecond},
		State{StartBlock: 1, EndBlock: 2, PageSize: 10})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := task.Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, task.state.NextBlock)
}
