package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
)

// Engine runs one full reconciliation pass over all configured intents.
type Engine struct {
	client     Client
	reconciler *Reconciler
	accounts   *AccountFetcher
	logger     *zerolog.Logger
	runID      func() string
}

// NewEngine wires a Reconciler and an AccountFetcher around client.
func NewEngine(client Client, institutions InstitutionLookup, opts ...Option) (*Engine, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	reconciler, err := NewReconciler(client, institutions, opts...)
	if err != nil {
		return nil, err
	}
	accounts, err := NewAccountFetcher(client, opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{
		client:     client,
		reconciler: reconciler,
		accounts:   accounts,
		logger:     o.logger,
		runID:      o.runID,
	}, nil
}

// Run lists remote requisitions once, reconciles every intent in order and
// collects accounts of linked requisitions. Failures are logged, never
// returned: a failed listing yields an empty snapshot, and a failure for
// one intent does not affect the others.
func (e *Engine) Run(ctx context.Context, intents []Intent) Snapshot {
	ctx = logging.WithLogger(ctx, logging.FromContextOr(ctx, e.logger))
	ctx = logging.WithRunID(ctx, e.runID())
	logger := logging.FromContext(ctx)

	snapshot := Snapshot{
		Requisitions: []Reconciled{},
		Accounts:     []Account{},
	}

	remote, err := e.client.ListRequisitions(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to fetch Nordigen requisitions")
		return snapshot
	}
	logger.Debug().Int("count", len(remote)).Int("intents", len(intents)).Msg("Listed requisitions")

	for _, intent := range intents {
		req, err := e.reconciler.GetOrCreate(ctx, intent, remote)
		ictx := logging.WithReference(ctx, intent.Reference())
		if err != nil {
			logging.FromContext(ictx).Error().
				Err(errors.NewSyncError(intent.Reference(), nil, err)).
				Msg("Unable to reconcile requisition")
			continue
		}

		if !req.Status.IsLinked() {
			snapshot.Requisitions = append(snapshot.Requisitions, req)
			continue
		}

		for _, id := range req.Accounts {
			if account, ok := e.accounts.Account(ictx, id, req); ok {
				snapshot.Accounts = append(snapshot.Accounts, account)
			}
		}
	}

	logger.Info().
		Int("accounts", len(snapshot.Accounts)).
		Int("awaiting_auth", len(snapshot.Requisitions)).
		Msg("Reconciliation complete")
	return snapshot
}

// Reconciler exposes the engine's reconciler.
func (e *Engine) Reconciler() *Reconciler { return e.reconciler }

// Accounts exposes the engine's account fetcher.
func (e *Engine) Accounts() *AccountFetcher { return e.accounts }
