package scheduler

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/fuel-indexer-go/indexer"
)

// retryTransient calls fn, and keeps retrying with exponential backoff
// (base, 2*base, 4*base, ... capped at max) for as long as fn keeps
// returning a Transient-classified error, per spec.md §4.5 step 5's "sleep
// base_delay * 2^attempt (capped), retry the same batch". Any other error
// (or nil) stops the retry loop immediately. shouldStop is polled before
// every attempt so a tripped kill-switch or a Stop request aborts the wait
// instead of retrying forever.
func retryTransient(ctx context.Context, base, cap time.Duration, shouldStop func() bool, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = cap
	b.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		if shouldStop() {
			return backoff.Permanent(errStopped)
		}
		err := fn()
		if err == nil {
			return nil
		}
		if !indexer.IsKind(err, indexer.KindTransient) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
}
