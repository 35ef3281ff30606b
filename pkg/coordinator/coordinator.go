// Package coordinator turns an UpdateFunc into a periodically refreshed
// data source. A failed tick marks the source unavailable and keeps the
// last good value; it never stops the loop.
package coordinator

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
)

// BalanceName is the coordinator name for an account's balances.
func BalanceName(uniqueRef string) string {
	return "nordigen-balance-" + uniqueRef
}

// RequisitionName is the coordinator name for an awaiting requisition.
func RequisitionName(reference string) string {
	return "nordigen-requisition-" + reference
}

// Listener is called after every refresh with the current state.
type Listener[T any] func(name string, data T, available bool)

// Coordinator periodically runs an UpdateFunc and caches its result.
type Coordinator[T any] struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	update   UpdateFunc[T]
	logger   *zerolog.Logger

	mu          sync.RWMutex
	data        T
	available   bool
	lastErr     error
	lastSuccess time.Time
	listeners   []Listener[T]

	ticker *time.Ticker
	cancel context.CancelFunc
	stopCh chan struct{}
	done   chan struct{}
}

// Option configures a Coordinator.
type Option func(*settings)

type settings struct {
	logger  *zerolog.Logger
	timeout time.Duration
}

// WithLogger sets the coordinator's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout bounds each refresh.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// New creates a stopped Coordinator.
func New[T any](name string, interval time.Duration, update UpdateFunc[T], opts ...Option) (*Coordinator[T], error) {
	if interval <= 0 {
		return nil, &errors.ValidationError{
			Field:   "interval",
			Value:   interval,
			Message: "update interval must be positive",
		}
	}
	if update == nil {
		return nil, &errors.ValidationError{Field: "update", Message: "cannot be nil"}
	}

	s := &settings{logger: logging.Default(), timeout: constants.UpdateTimeout}
	for _, opt := range opts {
		opt(s)
	}
	logger := s.logger.With().Str("coordinator", name).Logger()

	c := &Coordinator[T]{
		name:     name,
		interval: interval,
		timeout:  s.timeout,
		update:   update,
		logger:   &logger,
		stopCh:   make(chan struct{}),
	}
	close(c.stopCh)
	return c, nil
}

// Name returns the coordinator name.
func (c *Coordinator[T]) Name() string { return c.name }

// Interval returns the refresh interval.
func (c *Coordinator[T]) Interval() time.Duration { return c.interval }

// OnUpdate registers a listener.
func (c *Coordinator[T]) OnUpdate(fn Listener[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Data returns the last good value and whether the last refresh succeeded.
func (c *Coordinator[T]) Data() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data, c.available
}

// LastError returns the error of the last refresh, if it failed.
func (c *Coordinator[T]) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// LastSuccess returns when data was last refreshed successfully.
func (c *Coordinator[T]) LastSuccess() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSuccess
}

// Refresh runs one update now. The returned error is the update's error;
// callers in a loop can ignore it since state and listeners already
// reflect it.
func (c *Coordinator[T]) Refresh(ctx context.Context) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	data, err := c.update(ctx)

	c.mu.Lock()
	if err != nil {
		c.available = false
		c.lastErr = err
	} else {
		c.data = data
		c.available = true
		c.lastErr = nil
		c.lastSuccess = time.Now()
	}
	current, available := c.data, c.available
	listeners := append([]Listener[T](nil), c.listeners...)
	c.mu.Unlock()

	if err != nil {
		if errors.IsUpdateFailed(err) {
			c.logger.Warn().Err(err).Bool("timeout", errors.IsTimeout(err)).Msg("Update failed, keeping last data")
		} else {
			c.logger.Error().Err(err).Msg("Update returned an unexpected error")
		}
	} else {
		c.logger.Debug().Msg("Updated")
	}

	for _, fn := range listeners {
		fn(c.name, current, available)
	}
	return err
}

// Start refreshes once and then every interval until Stop is called or
// ctx is done.
func (c *Coordinator[T]) Start(ctx context.Context) error {
	c.Stop()

	c.mu.Lock()
	c.stopCh = make(chan struct{})
	c.done = make(chan struct{})
	c.ticker = time.NewTicker(c.interval)
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	ticker, stopCh, done := c.ticker, c.stopCh, c.done
	c.mu.Unlock()

	c.logger.Info().Dur("interval", c.interval).Msg("Starting coordinator")

	go func() {
		defer close(done)
		_ = c.Refresh(loopCtx)
		for {
			select {
			case <-ticker.C:
				if err := c.Refresh(loopCtx); err != nil {
					if stderrors.Is(err, context.Canceled) && loopCtx.Err() != nil {
						return
					}
				}
			case <-loopCtx.Done():
				return
			case <-stopCh:
				return
			}
		}
	}()
	return nil
}

// Stop halts the loop and waits for an in-flight refresh to finish.
func (c *Coordinator[T]) Stop() {
	c.mu.Lock()
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
	done := c.done
	c.done = nil
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}
