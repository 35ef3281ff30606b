// Package workerpool bounds how many blocking aggregator calls run at once.
// Scheduled updates hand their fetches to a Pool instead of calling the
// API directly, so a burst of ticks cannot flood the upstream.
package workerpool

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
)

// Pool runs functions with bounded concurrency.
type Pool struct {
	sem     *semaphore.Weighted
	size    int64
	timeout time.Duration
	logger  *zerolog.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithTimeout bounds each job. Zero disables the per-job deadline.
func WithTimeout(d time.Duration) Option {
	return func(p *Pool) { p.timeout = d }
}

// WithLogger sets the pool's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a pool running at most size jobs concurrently. A size below
// one uses constants.MaxConcurrentRequests.
func New(size int, opts ...Option) *Pool {
	if size < 1 {
		size = constants.MaxConcurrentRequests
	}
	p := &Pool{
		sem:     semaphore.NewWeighted(int64(size)),
		size:    int64(size),
		timeout: constants.UpdateTimeout,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the concurrency limit.
func (p *Pool) Size() int { return int(p.size) }

// Do waits for a free slot and runs fn on the calling goroutine. It returns
// ctx.Err() if no slot frees up in time. A panic in fn is returned as an
// error.
func (p *Pool) Do(ctx context.Context, fn func(context.Context) error) (err error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: waiting for worker: %v", errors.ErrCanceled, err)
	}
	defer p.sem.Release(1)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("Recovered panic in worker")
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()

	return fn(ctx)
}
