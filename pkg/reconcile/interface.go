package reconcile

import "context"

// Client is the subset of the aggregator API the engine needs.
//
//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=interface.go Client,InstitutionLookup
type Client interface {
	ListRequisitions(ctx context.Context) ([]Requisition, error)
	CreateRequisition(ctx context.Context, redirect, reference, institutionID string) (Requisition, error)
	RemoveRequisition(ctx context.Context, id string) error
	// InitiateRequisition (re)obtains the authentication link.
	InitiateRequisition(ctx context.Context, id, institutionID string) (string, error)
	AccountDetails(ctx context.Context, id string) (AccountDetails, error)
}

// InstitutionLookup resolves static institution metadata.
type InstitutionLookup interface {
	Institution(ctx context.Context, id string) (Institution, error)
}
