package nordigenha

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
)

// AutoUpdater provides controls for automatic updates.
type AutoUpdater interface {
	// AutoUpdatesOn updates right away and then on every interval.
	AutoUpdatesOn() error

	// AutoUpdatesOff stops automatic updates.
	AutoUpdatesOff() error
}

// AutoUpdatesOn begins automatic updates.
func (m *manager) AutoUpdatesOn() error {
	interval := m.options.autoUpdateInterval
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "autoUpdateInterval",
			Value:   interval,
			Message: "update interval must be positive",
		}
	}

	// Stop any existing auto-updates to prevent resource leaks
	if err := m.AutoUpdatesOff(); err != nil {
		return err
	}

	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	// Recreate stopCh since it was closed in AutoUpdatesOff
	m.stopCh = make(chan struct{})
	m.updateTicker = time.NewTicker(interval)

	ctx, cancel := context.WithCancel(context.Background())
	m.updateCancel = cancel

	go m.updateLoop(ctx, m.updateTicker, m.stopCh)

	return nil
}

func (m *manager) updateLoop(ctx context.Context, ticker *time.Ticker, stopCh <-chan struct{}) {
	update := func() bool {
		updateCtx, cancel := context.WithTimeout(ctx, constants.RunTimeout)
		err := m.Update(updateCtx)
		cancel()

		if err != nil {
			if stderrors.Is(err, context.Canceled) {
				return false
			}
			m.logger.Error().Err(err).Msg("Auto-update failed")
		}
		return true
	}

	if !update() {
		return
	}
	for {
		select {
		case <-ticker.C:
			if !update() {
				return
			}
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		}
	}
}

// AutoUpdatesOff stops automatic updates.
func (m *manager) AutoUpdatesOff() error {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	if m.updateTicker != nil {
		m.updateTicker.Stop()
		m.updateTicker = nil
	}
	if m.updateCancel != nil {
		m.updateCancel()
		m.updateCancel = nil
	}
	select {
	case <-m.stopCh:
		// Already closed
	default:
		close(m.stopCh)
	}
	return nil
}
