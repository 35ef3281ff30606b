package app

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dogmatic69/nordigen-ha-lib/internal/cmd/output"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/balances"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/coordinator"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

// NewSyncCommand creates the sync command.
func (a *App) NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Reconcile configured connections and list accounts",
		Long: `Sync lists the remote requisitions once and reconciles every configured
connection against them. Requisitions that still need the end user to
authenticate are printed with their link; linked ones are expanded into
their accounts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.sync(cmd.Context())
			if err != nil {
				return err
			}
			return output.Write(a.out, a.format(), snap, func(wide bool) []output.Data {
				return output.SnapshotTables(snap, wide)
			})
		},
	}
}

// sync runs the engine once over the configured intents.
func (a *App) sync(ctx context.Context) (reconcile.Snapshot, error) {
	engine, err := a.Engine()
	if err != nil {
		return reconcile.Snapshot{}, err
	}
	settings, err := a.Settings()
	if err != nil {
		return reconcile.Snapshot{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RunTimeout)
	defer cancel()

	snap := engine.Run(ctx, settings.Intents())
	a.logger.Info().
		Int("accounts", len(snap.Accounts)).
		Int("awaiting", len(snap.Requisitions)).
		Msg("Reconciled requisitions")
	return snap, nil
}

// NewBalancesCommand creates the balances command.
func (a *App) NewBalancesCommand() *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:     "balances [account-id...]",
		GroupID: "core",
		Short:   "Fetch account balances",
		Long: `Balances runs one balance update per account. Without arguments the
accounts of all linked connections are used, filtered by each connection's
balance_types. With --debug no request is made for balances.`,
		Example: `  nordigen balances
  nordigen balances 3fa85f64-5717-4562-b3fc-2c963f66afa6 --types Available,Booked`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := balances.ParseTypes(types)
			if err != nil {
				return err
			}

			targets, err := a.balanceTargets(cmd.Context(), args)
			if err != nil {
				return err
			}

			rows := a.fetchBalances(cmd.Context(), targets, selected)
			return output.Write(a.out, a.format(), rows, func(wide bool) []output.Data {
				return []output.Data{output.BalancesTable(rows, wide)}
			})
		},
	}

	cmd.Flags().StringSliceVar(&types, "types", nil, "balance types to show (Available, Booked or bucket names)")
	return cmd
}

// balanceTarget is an account whose balances are fetched.
type balanceTarget struct {
	id      string
	account reconcile.Account
	types   []balances.Type
}

func (a *App) balanceTargets(ctx context.Context, ids []string) ([]balanceTarget, error) {
	if len(ids) > 0 {
		targets := make([]balanceTarget, 0, len(ids))
		for _, id := range ids {
			targets = append(targets, balanceTarget{id: id, account: reconcile.Account{ID: id, UniqueRef: id}})
		}
		return targets, nil
	}

	snap, err := a.sync(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range snap.Requisitions {
		a.logger.Warn().
			Str("reference", r.Reference).
			Str("link", r.Link).
			Msg("Requisition awaiting authentication, no balances available")
	}

	targets := make([]balanceTarget, 0, len(snap.Accounts))
	for _, acc := range snap.Accounts {
		types, err := balances.ParseTypes(acc.Intent.BalanceTypes)
		if err != nil {
			return nil, err
		}
		targets = append(targets, balanceTarget{id: acc.ID, account: acc, types: types})
	}
	return targets, nil
}

// fetchBalances runs one BalanceUpdate per target on the shared pool.
// Failures are reported per row.
func (a *App) fetchBalances(ctx context.Context, targets []balanceTarget, selected []balances.Type) []output.BalanceRow {
	rows := make([]output.BalanceRow, len(targets))
	pool := a.Pool()

	var g errgroup.Group
	for i, target := range targets {
		g.Go(func() error {
			row := output.BalanceRow{
				Account:  target.account.UniqueRef,
				Name:     target.account.Name,
				Currency: target.account.Currency,
			}

			fetch, err := a.BalanceFetcher(target.account.Currency)
			if err != nil {
				row.Error = err.Error()
				rows[i] = row
				return nil
			}

			update := coordinator.BalanceUpdate(a.logger, pool, fetch, target.id)
			got, err := update(ctx)
			if err != nil {
				row.Error = err.Error()
				rows[i] = row
				return nil
			}

			types := selected
			if len(types) == 0 {
				types = target.types
			}
			row.Balances = got.Filter(types)
			rows[i] = row
			return nil
		})
	}
	_ = g.Wait()

	return rows
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for nordigen CLI.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			info := versionInfo{
				Version:   a.version,
				Commit:    a.commit,
				Built:     a.date,
				BuiltBy:   a.builtBy,
				GoVersion: runtime.Version(),
				Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
			}
			if a.config.Format == "" {
				_, err := fmt.Fprintf(a.out, "nordigen version %s\ncommit: %s\nbuilt: %s\nbuilt by: %s\ngo version: %s\nplatform: %s\n",
					info.Version, info.Commit, info.Built, info.BuiltBy, info.GoVersion, info.Platform)
				return err
			}
			return output.NewFormatter(a.format()).Format(a.out, info)
		},
	}
}

type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Built     string `json:"built" yaml:"built"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}
