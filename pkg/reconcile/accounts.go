package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
)

// AccountFetcher turns account ids of a linked requisition into Accounts.
type AccountFetcher struct {
	client Client
	logger *zerolog.Logger
}

// NewAccountFetcher creates an AccountFetcher.
func NewAccountFetcher(client Client, opts ...Option) (*AccountFetcher, error) {
	if client == nil {
		return nil, &errors.ValidationError{Field: "client", Message: "cannot be nil"}
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &AccountFetcher{client: client, logger: o.logger}, nil
}

// Account fetches and normalizes one account. It returns false, and no
// error, when the account cannot or should not be reported.
func (f *AccountFetcher) Account(ctx context.Context, accountID string, req Reconciled) (Account, bool) {
	ctx = logging.WithLogger(ctx, logging.FromContextOr(ctx, f.logger))
	ctx = logging.WithRequisition(ctx, req.ID)
	logger := logging.FromContext(ctx)

	if accountID == "" {
		logger.Warn().Msg("Requisition lists an empty account id, skipping it")
		return Account{}, false
	}
	ctx = logging.WithAccount(ctx, accountID)
	logger = logging.FromContext(ctx)

	details, err := f.client.AccountDetails(ctx, accountID)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to fetch account details")
		return Account{}, false
	}

	ref := UniqueRef(accountID, details)
	if req.Intent.Ignores(ref) {
		logger.Info().Str("unique_ref", ref).Msg("Account ignored due to configuration")
		return Account{}, false
	}

	if !details.HasIdentifier() {
		logger.Warn().Interface("details", details).Msg("Account has no iban, bban or resourceId")
	}

	return Account{
		ID:         accountID,
		IBAN:       details.IBAN,
		BBAN:       details.BBAN,
		ResourceID: details.ResourceID,
		BIC:        details.BIC,
		Currency:   details.Currency,
		Name:       details.Name,
		Owner:      details.OwnerName,
		Product:    details.Product,
		Status:     details.Status,
		UniqueRef:  ref,
		Requisition: RequisitionRef{
			ID:        req.ID,
			Reference: req.Reference,
			Status:    req.Status,
			EndUserID: req.EndUserID,
			Redirect:  req.Redirect,
		},
		Intent:      req.Intent,
		Institution: req.Details,
	}, true
}
