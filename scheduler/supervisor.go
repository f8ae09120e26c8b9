package scheduler

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Supervisor owns the set of currently-running Tasks, one per registered
// indexer, and implements the replace-semantics half of spec.md §4.5: when
// a new registration arrives for an already-running (namespace,
// identifier), the old task is stopped and awaited before a replacement
// starts.
type Supervisor struct {
	mu    sync.Mutex
	tasks map[string]*runningTask
}

// runningTask tracks one Task's goroutine via an errgroup.Group of size
// one: Wait blocks until the goroutine exits and surfaces its error,
// replacing the done-channel-plus-stashed-error bookkeeping Stop would
// otherwise need to do by hand.
type runningTask struct {
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewSupervisor returns an empty Supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{tasks: make(map[string]*runningTask)}
}

// ErrAlreadyRunning is returned by Start when uid already has a running
// task and the caller didn't go through Replace.
var ErrAlreadyRunning = fmt.Errorf("scheduler: indexer already running")

// Start launches task.Run in its own goroutine under a context derived
// from ctx, returning ErrAlreadyRunning if task.UID is already running.
func (s *Supervisor) Start(ctx context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.UID]; exists {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, groupCtx := errgroup.WithContext(runCtx)
	rt := &runningTask{cancel: cancel, group: g}
	s.tasks[task.UID] = rt

	g.Go(func() error {
		return task.Run(groupCtx)
	})
	return nil
}

// Stop trips task.UID's context and blocks until its goroutine exits,
// returning whatever error Run surfaced (nil for a clean stop).
func (s *Supervisor) Stop(uid string) error {
	s.mu.Lock()
	rt, exists := s.tasks[uid]
	if exists {
		delete(s.tasks, uid)
	}
	s.mu.Unlock()
	if !exists {
		return nil
	}
	rt.cancel()
	return rt.group.Wait()
}

// Replace stops uid's running task (if any), optionally purges its old
// data via purge, then starts replacement. purge may be nil when
// replace_indexer policy doesn't call for a data wipe.
func (s *Supervisor) Replace(ctx context.Context, uid string, purge func(context.Context) error, replacement *Task) error {
	if err := s.Stop(uid); err != nil {
		return err
	}
	if purge != nil {
		if err := purge(ctx); err != nil {
			return fmt.Errorf("scheduler: purge before replace: %w", err)
		}
	}
	return s.Start(ctx, replacement)
}

// Running reports whether uid currently has a running task.
func (s *Supervisor) Running(uid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.tasks[uid]
	return exists
}
