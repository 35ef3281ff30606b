// Package nordigenha keeps a reconciled view of Nordigen bank connections
// up to date, for embedding in long-running integrations.
//
// A Manager runs the reconciliation engine over a fixed set of intents,
// either on demand with Update or periodically with AutoUpdatesOn, and
// reports what changed between runs through hooks.
package nordigenha

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dogmatic69/nordigen-ha-lib/internal/nordigen"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

// Manager keeps the latest reconciliation snapshot with automatic updates
// and event hooks.
type Manager interface {
	// Snapshot returns the result of the last update.
	Snapshot() reconcile.Snapshot

	// Update runs one reconciliation pass and fires hooks for the changes.
	Update(ctx context.Context) error

	AutoUpdater

	// OnAccountAdded registers a callback for accounts that appear.
	OnAccountAdded(AccountHook)

	// OnAccountUpdated registers a callback for accounts whose data changed.
	OnAccountUpdated(AccountUpdatedHook)

	// OnAccountRemoved registers a callback for accounts that disappear.
	OnAccountRemoved(AccountHook)

	// OnRequisitionPending registers a callback for requisitions that need
	// the end user to authenticate, including ones whose link changed.
	OnRequisitionPending(RequisitionHook)
}

var _ Manager = (*manager)(nil)

type manager struct {
	mu       sync.RWMutex
	snapshot reconcile.Snapshot
	options  *options
	engine   *reconcile.Engine
	logger   *zerolog.Logger

	*hooks

	updateMu     sync.Mutex
	updateTicker *time.Ticker
	updateCancel context.CancelFunc
	stopCh       chan struct{}
}

// New creates a Manager. Without WithClient a Nordigen client is built
// from WithCredentials.
func New(opts ...Option) (Manager, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	client, institutions := o.client, o.institutions
	if client == nil {
		c, err := nordigen.NewClient(o.secretID, o.secretKey,
			nordigen.WithBaseURL(o.baseURL),
			nordigen.WithLogger(o.logger),
		)
		if err != nil {
			return nil, err
		}
		client, institutions = c, c
	}

	engine, err := reconcile.NewEngine(client, institutions,
		reconcile.WithLogger(o.logger),
		reconcile.WithRedirect(o.redirect),
	)
	if err != nil {
		return nil, errors.WrapResource("create", "engine", "", err)
	}

	m := &manager{
		snapshot: reconcile.Snapshot{Requisitions: []reconcile.Reconciled{}, Accounts: []reconcile.Account{}},
		options:  o,
		engine:   engine,
		logger:   o.logger,
		hooks:    newHooks(),
		stopCh:   make(chan struct{}),
	}

	if o.autoUpdatesEnabled {
		if err := m.AutoUpdatesOn(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Snapshot returns the result of the last update.
func (m *manager) Snapshot() reconcile.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Update runs one reconciliation pass. Upstream failures do not fail the
// update; they show up as missing accounts. Only a done ctx is returned.
func (m *manager) Update(ctx context.Context) error {
	snap := m.engine.Run(ctx, m.options.intents)
	if err := ctx.Err(); err != nil {
		return err
	}
	m.setSnapshot(snap)
	return nil
}

// setSnapshot stores snap and triggers hooks for the differences.
func (m *manager) setSnapshot(snap reconcile.Snapshot) {
	m.mu.Lock()
	old := m.snapshot
	m.snapshot = snap
	m.mu.Unlock()

	m.hooks.triggerSnapshotUpdate(old, snap)
}
