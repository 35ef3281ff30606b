package reconcile_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile/mocks"
)

func linkedRequisition(ignore ...string) reconcile.Reconciled {
	return reconcile.Reconciled{
		Requisition: reconcile.Requisition{
			ID:        "req-123",
			Reference: "user-aspsp",
			Status:    reconcile.ParseStatus("LN"),
			Accounts:  []string{"acc-1"},
		},
		Intent:  reconcile.Intent{InstitutionID: "aspsp", EndUserID: "user", Ignore: ignore},
		Details: n26,
	}
}

func newFetcher(t *testing.T) (*reconcile.AccountFetcher, *mocks.MockClient, *logging.TestLogger) {
	t.Helper()
	client := mocks.NewMockClient(gomock.NewController(t))
	tl := logging.NewTestLogger(t)
	f, err := reconcile.NewAccountFetcher(client, reconcile.WithLogger(tl.Logger))
	require.NoError(t, err)
	return f, client, tl
}

func TestAccountFetcher_FetchError(t *testing.T) {
	f, client, tl := newFetcher(t)

	client.EXPECT().AccountDetails(gomock.Any(), "acc-1").
		Return(reconcile.AccountDetails{}, pkgerrors.NewAPIError("nordigen", 500, "boom"))

	got, ok := f.Account(context.Background(), "acc-1", linkedRequisition())
	assert.False(t, ok)
	assert.Equal(t, reconcile.Account{}, got)

	e := tl.AssertEntry(t, zerolog.ErrorLevel, "Unable to fetch account details")
	assert.Equal(t, "acc-1", e.Str("account_id"))
	assert.Equal(t, "req-123", e.Str("requisition_id"))
}

func TestAccountFetcher_EmptyAccountIDSkipped(t *testing.T) {
	f, _, tl := newFetcher(t)

	// No AccountDetails expectation: the client must not be called.
	got, ok := f.Account(context.Background(), "", linkedRequisition())
	assert.False(t, ok)
	assert.Equal(t, reconcile.Account{}, got)

	e := tl.AssertEntry(t, zerolog.WarnLevel, "empty account id")
	assert.Equal(t, "req-123", e.Str("requisition_id"))
}

func TestAccountFetcher_Ignored(t *testing.T) {
	f, client, tl := newFetcher(t)

	client.EXPECT().AccountDetails(gomock.Any(), "acc-1").
		Return(reconcile.AccountDetails{ResourceID: "resourceId-123"}, nil)

	_, ok := f.Account(context.Background(), "acc-1", linkedRequisition("resourceId-123"))
	assert.False(t, ok)

	e := tl.AssertEntry(t, zerolog.InfoLevel, "Account ignored due to configuration")
	assert.Equal(t, "resourceId-123", e.Str("unique_ref"))
}

func TestAccountFetcher_NoIdentifierWarnsButBuilds(t *testing.T) {
	f, client, tl := newFetcher(t)

	client.EXPECT().AccountDetails(gomock.Any(), "acc-1").
		Return(reconcile.AccountDetails{Name: "Savings"}, nil)

	got, ok := f.Account(context.Background(), "acc-1", linkedRequisition())
	require.True(t, ok)
	assert.Equal(t, "acc-1", got.UniqueRef)
	assert.Equal(t, "Savings", got.Name)
	tl.AssertEntry(t, zerolog.WarnLevel, "Account has no iban, bban or resourceId")
}

func TestAccountFetcher_Normal(t *testing.T) {
	f, client, tl := newFetcher(t)

	client.EXPECT().AccountDetails(gomock.Any(), "acc-1").Return(reconcile.AccountDetails{
		IBAN:      "DE89370400440532013000",
		BIC:       "NTSBDEB1",
		Currency:  "EUR",
		Name:      "Main",
		OwnerName: "Jane Doe",
		Product:   "Girokonto",
		Status:    "enabled",
	}, nil)

	req := linkedRequisition()
	got, ok := f.Account(context.Background(), "acc-1", req)
	require.True(t, ok)

	assert.Equal(t, reconcile.Account{
		ID:        "acc-1",
		IBAN:      "DE89370400440532013000",
		BIC:       "NTSBDEB1",
		Currency:  "EUR",
		Name:      "Main",
		Owner:     "Jane Doe",
		Product:   "Girokonto",
		Status:    "enabled",
		UniqueRef: "DE89370400440532013000",
		Requisition: reconcile.RequisitionRef{
			ID:        "req-123",
			Reference: "user-aspsp",
			Status:    reconcile.ParseStatus("LN"),
		},
		Intent:      req.Intent,
		Institution: n26,
	}, got)
	assert.Equal(t, 0, tl.CountLevel(zerolog.WarnLevel))
}
