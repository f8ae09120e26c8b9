package sandbox

import (
	"errors"
	"fmt"

	"github.com/fuel-indexer-go/indexer"
)

// HandlerError classifies a failure from one handle_events invocation per
// spec.md §4.4.3: Transient failures are retried by the scheduler, DataError
// reverts the batch and advances past it, and Fatal trips the kill-switch.
type HandlerError struct {
	Transient bool
	Fatal     bool
	Op        string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("sandbox: %s: %v", e.Op, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

func transientError(op string, err error) *HandlerError {
	return &HandlerError{Transient: true, Op: op, Err: err}
}

func dataError(op string, err error) *HandlerError {
	return &HandlerError{Op: op, Err: err}
}

func fatalError(op string, err error) *HandlerError {
	return &HandlerError{Fatal: true, Op: op, Err: err}
}

// toIndexerError maps a HandlerError onto the shared *indexer.Error
// taxonomy so callers outside this package can classify failures uniformly
// with errors.As/errors.Is, without importing sandbox's own error type.
func toIndexerError(uid string, err error) error {
	if err == nil {
		return nil
	}
	var he *HandlerError
	if !errors.As(err, &he) {
		return indexer.New(indexer.KindHandler, "handle_events", err).WithIndexer(uid)
	}
	kind := indexer.KindHandler
	if he.Transient {
		kind = indexer.KindTransient
	} else if !he.Fatal {
		kind = indexer.KindData
	}
	e := indexer.New(kind, he.Op, he.Err).WithIndexer(uid)
	if he.Fatal {
		e = e.AsFatal()
	}
	return e
}
