package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
)

// Reconciler decides, per intent, whether to reuse, recreate or initiate a
// requisition.
type Reconciler struct {
	client       Client
	institutions InstitutionLookup
	redirect     string
	logger       *zerolog.Logger
}

// NewReconciler creates a Reconciler. institutions may be nil, in which
// case results only carry the institution id.
func NewReconciler(client Client, institutions InstitutionLookup, opts ...Option) (*Reconciler, error) {
	if client == nil {
		return nil, &errors.ValidationError{Field: "client", Message: "cannot be nil"}
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Reconciler{
		client:       client,
		institutions: institutions,
		redirect:     o.redirect,
		logger:       o.logger,
	}, nil
}

// GetOrCreate reconciles intent against the remote listing.
//
//   - no match: create a new requisition
//   - EXPIRED: remove it, then create
//   - LINKED: return it unchanged
//   - anything else: keep it and make sure it carries an auth link
//
// The only error returned is a failed creation, which leaves the intent
// without a requisition until the next run.
func (r *Reconciler) GetOrCreate(ctx context.Context, intent Intent, remote []Requisition) (Reconciled, error) {
	reference := intent.Reference()
	ctx = logging.WithLogger(ctx, logging.FromContextOr(ctx, r.logger))
	ctx = logging.WithReference(ctx, reference)
	ctx = logging.WithInstitution(ctx, intent.InstitutionID)

	matched, found := MatchRequisition(reference, remote)
	if found && matched.Status.IsExpired() {
		rctx := logging.WithRequisition(ctx, matched.ID)
		logger := logging.FromContext(rctx)
		logger.Info().Msg("Requisition expired, replacing it")
		if err := r.client.RemoveRequisition(rctx, matched.ID); err != nil {
			logger.Warn().Err(err).Msg("Unable to remove expired requisition")
		}
		found = false
	}

	result := Reconciled{Intent: intent}
	switch {
	case !found:
		created, err := r.create(ctx, intent)
		if err != nil {
			return Reconciled{}, err
		}
		result.Requisition = created
		result.RequiresAuth = true
	case matched.Status.IsLinked():
		result.Requisition = matched
	default:
		result.Requisition = matched
		result.RequiresAuth = true
		if matched.Link == "" {
			result.Link = r.initiate(logging.WithRequisition(ctx, matched.ID), matched.ID, intent.InstitutionID)
		}
	}

	result.Details = r.institution(ctx, intent.InstitutionID)
	return result, nil
}

func (r *Reconciler) create(ctx context.Context, intent Intent) (Requisition, error) {
	reference := intent.Reference()
	created, err := r.client.CreateRequisition(ctx, r.redirect, reference, intent.InstitutionID)
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("Unable to create requisition")
		return Requisition{}, errors.WrapResource("create", "requisition", reference, err)
	}
	ctx = logging.WithRequisition(ctx, created.ID)
	logging.FromContext(ctx).Info().Msg("Created requisition")

	if created.Link == "" {
		created.Link = r.initiate(ctx, created.ID, intent.InstitutionID)
	}
	return created, nil
}

// initiate returns the authentication link, or "" when the call fails.
// ctx's logger is expected to carry the requisition id.
func (r *Reconciler) initiate(ctx context.Context, id, institutionID string) string {
	logger := logging.FromContext(ctx)
	link, err := r.client.InitiateRequisition(ctx, id, institutionID)
	if err != nil {
		logger.Warn().Err(err).Msg("Unable to initiate requisition")
		return ""
	}
	logger.Info().Str("link", link).Msg("Requisition needs authentication")
	return link
}

func (r *Reconciler) institution(ctx context.Context, id string) Institution {
	if r.institutions == nil {
		return Institution{ID: id}
	}
	details, err := r.institutions.Institution(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Unable to fetch institution details")
		return Institution{ID: id}
	}
	return details
}
