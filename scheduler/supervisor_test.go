package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuel-indexer-go/indexer/node"
)

// newBlockingTask returns a Task backed by an empty Memory node, which
// always reports no blocks and no next page: the task's loop just sleeps
// PollInterval and retries, forever, until its context is canceled. This
// gives Start/Stop/Replace a task that keeps a goroutine alive long enough
// to exercise real teardown instead of one that exits on its own.
func newBlockingTask(t *testing.T, uid string) *Task {
	t.Helper()
	db, closeDB := mockConn(t)
	t.Cleanup(closeDB)
	mem := node.NewMemory(nil)
	exec := &fakeExecutor{handle: func(ctx context.Context, blocks []node.BlockData) error { return nil }}
	return NewTask(uid, 1, exec, mem, db, nil, Options{PageSize: 10, PollInterval: time.Millisecond}, State{StartBlock: 1})
}

func TestSupervisorStartTwiceReturnsErrAlreadyRunning(t *testing.T) {
	s := NewSupervisor()
	ctx := context.Background()

	require.NoError(t, s.Start(ctx, newBlockingTask(t, "ns.id")))
	defer s.Stop("ns.id")

	err := s.Start(ctx, newBlockingTask(t, "ns.id"))
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestSupervisorStopAwaitsGoroutineExit(t *testing.T) {
	s := NewSupervisor()
	require.NoError(t, s.Start(context.Background(), newBlockingTask(t, "ns.id")))
	assert.True(t, s.Running("ns.id"))

	stopped := make(chan error, 1)
	go func() { stopped <- s.Stop("ns.id") }()

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after its task's context was canceled")
	}
	assert.False(t, s.Running("ns.id"))
}

func TestSupervisorReplaceRunsPurgeBetweenStopAndStart(t *testing.T) {
	s := NewSupervisor()
	require.NoError(t, s.Start(context.Background(), newBlockingTask(t, "ns.id")))

	var purged bool
	replaced := make(chan error, 1)
	go func() {
		replaced <- s.Replace(context.Background(), "ns.id", func(context.Context) error {
			purged = true
			assert.False(t, s.Running("ns.id"), "old task must be stopped before purge runs")
			return nil
		}, newBlockingTask(t, "ns.id"))
	}()

	select {
	case err := <-replaced:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Replace did not return after its old task's context was canceled")
	}
	defer s.Stop("ns.id")

	assert.True(t, purged)
	assert.True(t, s.Running("ns.id"), "replacement task must be running after Replace")
}

func TestSupervisorReplacePropagatesPurgeError(t *testing.T) {
	s := NewSupervisor()
	require.NoError(t, s.Start(context.Background(), newBlockingTask(t, "ns.id")))

	wantErr := assert.AnError
	replaced := make(chan error, 1)
	go func() {
		replaced <- s.Replace(context.Background(), "ns.id", func(context.Context) error {
			return wantErr
		}, newBlockingTask(t, "ns.id"))
	}()

	select {
	case err := <-replaced:
		require.Error(t, err)
		assert.ErrorIs(t, err, wantErr)
	case <-time.After(2 * time.Second):
		t.Fatal("Replace did not return after its old task's context was canceled")
	}
	assert.False(t, s.Running("ns.id"), "replacement must not start when purge fails")
}
