package coordinator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/balances"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

// Executor runs a blocking call somewhere other than the caller's loop,
// typically a workerpool.Pool.
type Executor interface {
	Do(ctx context.Context, fn func(context.Context) error) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, fn func(context.Context) error) error

// Do implements Executor.
func (f ExecutorFunc) Do(ctx context.Context, fn func(context.Context) error) error {
	return f(ctx, fn)
}

// Inline runs the call on the caller's goroutine.
var Inline Executor = ExecutorFunc(func(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
})

// UpdateFunc produces fresh data for one tick. Errors it returns are
// *errors.UpdateFailedError.
type UpdateFunc[T any] func(ctx context.Context) (T, error)

// BalanceFetchFunc fetches the raw balances of one account.
type BalanceFetchFunc func(ctx context.Context, accountID string) (balances.Response, error)

// RequisitionFetchFunc fetches one requisition by id.
type RequisitionFetchFunc func(ctx context.Context, id string) (reconcile.Requisition, error)

// BalanceUpdate returns an UpdateFunc that fetches accountID's balances on
// exec and normalizes them into the known buckets.
func BalanceUpdate(logger *zerolog.Logger, exec Executor, fetch BalanceFetchFunc, accountID string) UpdateFunc[balances.Balances] {
	name := "balance " + accountID
	return func(ctx context.Context) (balances.Balances, error) {
		var resp balances.Response
		err := exec.Do(ctx, func(ctx context.Context) (err error) {
			defer recoverInto(&err)
			resp, err = fetch(ctx, accountID)
			return err
		})
		if err != nil {
			logger.Error().Err(err).Str("account_id", accountID).Msg("Unable to fetch balances")
			return nil, errors.WrapUpdate(name, err)
		}
		return balances.Normalize(resp), nil
	}
}

// RequisitionUpdate returns an UpdateFunc that re-reads one requisition,
// so an awaiting-authentication entry notices when it becomes linked.
func RequisitionUpdate(logger *zerolog.Logger, exec Executor, fetch RequisitionFetchFunc, requisitionID string) UpdateFunc[reconcile.Requisition] {
	name := "requisition " + requisitionID
	return func(ctx context.Context) (reconcile.Requisition, error) {
		var req reconcile.Requisition
		err := exec.Do(ctx, func(ctx context.Context) (err error) {
			defer recoverInto(&err)
			req, err = fetch(ctx, requisitionID)
			return err
		})
		if err != nil {
			logger.Error().Err(err).Str("requisition_id", requisitionID).Msg("Unable to fetch requisition")
			return reconcile.Requisition{}, errors.WrapUpdate(name, err)
		}
		return req, nil
	}
}

// recoverInto turns a panicking fetch into an error so a tick fails
// instead of the caller's goroutine.
func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("fetch panicked: %v", r)
	}
}
