package app

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/balances"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/coordinator"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

// NewWatchCommand creates the watch command.
func (a *App) NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		GroupID: "core",
		Short:   "Poll balances and pending requisitions until interrupted",
		Long: `Watch reconciles once, then polls every account's balances at its
connection's refresh_rate (minutes) and every requisition awaiting
authentication every 2 minutes. When a pending requisition becomes linked
the connections are reconciled again so its accounts are picked up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.watch(cmd.Context())
		},
	}
}

func (a *App) watch(ctx context.Context) error {
	for {
		snap, err := a.sync(ctx)
		if err != nil {
			return err
		}

		linked := make(chan string, 1)
		if err := a.startCoordinators(ctx, snap, linked); err != nil {
			a.stopCoordinators()
			return err
		}

		select {
		case <-ctx.Done():
			a.stopCoordinators()
			return nil
		case ref := <-linked:
			a.logger.Info().Str("reference", ref).Msg("Requisition linked, reconciling again")
			a.stopCoordinators()
		}
	}
}

func (a *App) stopCoordinators() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Coordinators did not stop in time")
	}
}

// startCoordinators starts one balance coordinator per account and one
// requisition coordinator per awaiting requisition. The reference of a
// requisition that becomes linked is sent on linked.
func (a *App) startCoordinators(ctx context.Context, snap reconcile.Snapshot, linked chan<- string) error {
	pool := a.Pool()

	for _, acc := range snap.Accounts {
		fetch, err := a.BalanceFetcher(acc.Currency)
		if err != nil {
			return err
		}
		types, err := balances.ParseTypes(acc.Intent.BalanceTypes)
		if err != nil {
			return err
		}

		interval := time.Duration(max(acc.Intent.RefreshRate, constants.MinRefreshRate)) * time.Minute
		c, err := coordinator.New(coordinator.BalanceName(acc.UniqueRef), interval,
			coordinator.BalanceUpdate(a.logger, pool, fetch, acc.ID),
			coordinator.WithLogger(a.logger),
		)
		if err != nil {
			return err
		}
		c.OnUpdate(a.balanceListener(acc, types))

		if err := c.Start(ctx); err != nil {
			return err
		}
		a.onShutdown(c.Stop)
	}

	if len(snap.Requisitions) == 0 {
		return nil
	}
	backend, err := a.Backend()
	if err != nil {
		return err
	}
	for _, req := range snap.Requisitions {
		if req.ID == "" {
			continue
		}
		reference := req.Reference
		c, err := coordinator.New(coordinator.RequisitionName(reference), constants.RequisitionPollInterval,
			coordinator.RequisitionUpdate(a.logger, pool, backend.Requisition, req.ID),
			coordinator.WithLogger(a.logger),
		)
		if err != nil {
			return err
		}
		c.OnUpdate(func(_ string, data reconcile.Requisition, available bool) {
			if !available || !data.Status.IsLinked() {
				return
			}
			select {
			case linked <- reference:
			default:
			}
		})

		if err := c.Start(ctx); err != nil {
			return err
		}
		a.onShutdown(c.Stop)
		a.logger.Info().
			Str("reference", reference).
			Str("status", req.Status.String()).
			Str("link", req.Link).
			Msg("Waiting for authentication")
	}
	return nil
}

func (a *App) balanceListener(acc reconcile.Account, types []balances.Type) coordinator.Listener[balances.Balances] {
	return func(name string, data balances.Balances, available bool) {
		if !available {
			a.logger.Warn().Str("coordinator", name).Msg("Balances unavailable")
			return
		}

		event := a.logger.Info().
			Str("coordinator", name).
			Str("unique_ref", acc.UniqueRef).
			Str("currency", acc.Currency)
		for _, t := range data.Filter(types).Known() {
			v, _ := data.Get(t)
			event = event.Str(string(t), v.StringFixed(2))
		}
		event.Msg("Balances updated")
	}
}
