package reconcile_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile/mocks"
)

var (
	intentA = reconcile.Intent{InstitutionID: "aspsp_123", EndUserID: "user_123", Ignore: []string{"resourceId-123"}}
	intentB = reconcile.Intent{InstitutionID: "aspsp_321", EndUserID: "user_321", Ignore: []string{}}

	linkedA = reconcile.Requisition{
		ID:        "req-123",
		Status:    reconcile.ParseStatus("LN"),
		Reference: "user_123-aspsp_123",
		Accounts:  []string{"account-1", "account-2", "account-3"},
	}
	linkedB = reconcile.Requisition{
		ID:        "req-321",
		Status:    reconcile.ParseStatus("LN"),
		Reference: "user_321-aspsp_321",
		Accounts:  []string{"account-a"},
	}
)

type engineFixture struct {
	engine       *reconcile.Engine
	client       *mocks.MockClient
	institutions *mocks.MockInstitutionLookup
	log          *logging.TestLogger
}

func newEngine(t *testing.T) *engineFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &engineFixture{
		client:       mocks.NewMockClient(ctrl),
		institutions: mocks.NewMockInstitutionLookup(ctrl),
		log:          logging.NewTestLogger(t),
	}
	e, err := reconcile.NewEngine(f.client, f.institutions,
		reconcile.WithLogger(f.log.Logger),
		reconcile.WithRunIDs(func() string { return "run-1" }),
	)
	require.NoError(t, err)
	f.engine = e
	return f
}

func (f *engineFixture) institution(id string) reconcile.Institution {
	return reconcile.Institution{ID: id, Name: id + " bank"}
}

func (f *engineFixture) expectInstitutions(ids ...string) {
	for _, id := range ids {
		f.institutions.EXPECT().Institution(gomock.Any(), id).Return(f.institution(id), nil)
	}
}

func account(id string, details reconcile.AccountDetails, req reconcile.Requisition, intent reconcile.Intent, inst reconcile.Institution) reconcile.Account {
	return reconcile.Account{
		ID:         id,
		IBAN:       details.IBAN,
		BBAN:       details.BBAN,
		ResourceID: details.ResourceID,
		UniqueRef:  reconcile.UniqueRef(id, details),
		Requisition: reconcile.RequisitionRef{
			ID:        req.ID,
			Reference: req.Reference,
			Status:    req.Status,
		},
		Intent:      intent,
		Institution: inst,
	}
}

func TestEngine_ExistingInstall(t *testing.T) {
	f := newEngine(t)

	f.client.EXPECT().ListRequisitions(gomock.Any()).Return([]reconcile.Requisition{linkedA, linkedB}, nil).Times(1)
	f.expectInstitutions("aspsp_123", "aspsp_321")
	gomock.InOrder(
		f.client.EXPECT().AccountDetails(gomock.Any(), "account-1").Return(reconcile.AccountDetails{IBAN: "iban-123"}, nil),
		f.client.EXPECT().AccountDetails(gomock.Any(), "account-2").Return(reconcile.AccountDetails{BBAN: "bban-123"}, nil),
		f.client.EXPECT().AccountDetails(gomock.Any(), "account-3").Return(reconcile.AccountDetails{ResourceID: "resourceId-123"}, nil),
		f.client.EXPECT().AccountDetails(gomock.Any(), "account-a").Return(reconcile.AccountDetails{IBAN: "yee-haa"}, nil),
	)

	got := f.engine.Run(context.Background(), []reconcile.Intent{intentA, intentB})

	instA, instB := f.institution("aspsp_123"), f.institution("aspsp_321")
	want := reconcile.Snapshot{
		Requisitions: []reconcile.Reconciled{},
		Accounts: []reconcile.Account{
			account("account-1", reconcile.AccountDetails{IBAN: "iban-123"}, linkedA, intentA, instA),
			account("account-2", reconcile.AccountDetails{BBAN: "bban-123"}, linkedA, intentA, instA),
			account("account-a", reconcile.AccountDetails{IBAN: "yee-haa"}, linkedB, intentB, instB),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	e := f.log.AssertEntry(t, zerolog.InfoLevel, "Account ignored due to configuration")
	assert.Equal(t, "run-1", e.Str("run_id"))
	assert.Equal(t, "user_123-aspsp_123", e.Str("reference"))
}

// Two intents, the first with one ignored account of three and the second
// whose only account fails to fetch: only the first intent's two remaining
// accounts are emitted.
func TestEngine_IgnoredAndFailedAccountsAreSkipped(t *testing.T) {
	f := newEngine(t)

	f.client.EXPECT().ListRequisitions(gomock.Any()).Return([]reconcile.Requisition{linkedA, linkedB}, nil)
	f.expectInstitutions("aspsp_123", "aspsp_321")
	gomock.InOrder(
		f.client.EXPECT().AccountDetails(gomock.Any(), "account-1").Return(reconcile.AccountDetails{IBAN: "iban-123"}, nil),
		f.client.EXPECT().AccountDetails(gomock.Any(), "account-2").Return(reconcile.AccountDetails{BBAN: "bban-123"}, nil),
		f.client.EXPECT().AccountDetails(gomock.Any(), "account-3").Return(reconcile.AccountDetails{ResourceID: "resourceId-123"}, nil),
		f.client.EXPECT().AccountDetails(gomock.Any(), "account-a").Return(reconcile.AccountDetails{}, pkgerrors.NewAPIError("nordigen", 500, "boom")),
	)

	got := f.engine.Run(context.Background(), []reconcile.Intent{intentA, intentB})

	require.Len(t, got.Accounts, 2)
	assert.Equal(t, "iban-123", got.Accounts[0].UniqueRef)
	assert.Equal(t, "bban-123", got.Accounts[1].UniqueRef)
	f.log.AssertEntry(t, zerolog.ErrorLevel, "Unable to fetch account details")
}

func TestEngine_NewInstall(t *testing.T) {
	f := newEngine(t)
	intent := reconcile.Intent{InstitutionID: "aspsp_123", EndUserID: "user_123", Ignore: []string{}}

	f.client.EXPECT().ListRequisitions(gomock.Any()).Return([]reconcile.Requisition{}, nil).Times(1)
	gomock.InOrder(
		f.client.EXPECT().
			CreateRequisition(gomock.Any(), "https://127.0.0.1/", "user_123-aspsp_123", "aspsp_123").
			Return(reconcile.Requisition{ID: "req-123", Status: reconcile.ParseStatus("CR")}, nil).
			Times(1),
		f.client.EXPECT().
			InitiateRequisition(gomock.Any(), "req-123", "aspsp_123").
			Return("https://example.com/whoohooo", nil).
			Times(1),
	)
	f.expectInstitutions("aspsp_123")

	got := f.engine.Run(context.Background(), []reconcile.Intent{intent})

	assert.Empty(t, got.Accounts)
	require.Len(t, got.Requisitions, 1)
	assert.Equal(t, "req-123", got.Requisitions[0].ID)
	assert.Equal(t, "https://example.com/whoohooo", got.Requisitions[0].Link)
	assert.True(t, got.Requisitions[0].RequiresAuth)
}

func TestEngine_ListingFailureYieldsEmptySnapshot(t *testing.T) {
	f := newEngine(t)

	f.client.EXPECT().ListRequisitions(gomock.Any()).Return(nil, pkgerrors.NewAPIError("nordigen", 503, "down"))

	got := f.engine.Run(context.Background(), []reconcile.Intent{intentA, intentB})

	assert.True(t, got.Empty())
	assert.NotNil(t, got.Accounts)
	assert.NotNil(t, got.Requisitions)
	f.log.AssertEntry(t, zerolog.ErrorLevel, "Unable to fetch Nordigen requisitions")
}

func TestEngine_IntentFailureIsIsolated(t *testing.T) {
	f := newEngine(t)

	f.client.EXPECT().ListRequisitions(gomock.Any()).Return([]reconcile.Requisition{linkedB}, nil)
	f.client.EXPECT().
		CreateRequisition(gomock.Any(), gomock.Any(), "user_123-aspsp_123", "aspsp_123").
		Return(reconcile.Requisition{}, pkgerrors.NewAPIError("nordigen", 400, "bad institution"))
	f.expectInstitutions("aspsp_321")
	f.client.EXPECT().AccountDetails(gomock.Any(), "account-a").Return(reconcile.AccountDetails{IBAN: "yee-haa"}, nil)

	got := f.engine.Run(context.Background(), []reconcile.Intent{intentA, intentB})

	require.Len(t, got.Accounts, 1)
	assert.Equal(t, "yee-haa", got.Accounts[0].UniqueRef)
	assert.Empty(t, got.Requisitions)

	e := f.log.AssertEntry(t, zerolog.ErrorLevel, "Unable to reconcile requisition")
	assert.Contains(t, e.Str("error"), "user_123-aspsp_123")
}

func TestEngine_MixedLinkedAndAwaiting(t *testing.T) {
	f := newEngine(t)

	awaiting := reconcile.Requisition{
		ID:        "req-321",
		Status:    reconcile.ParseStatus("GA"),
		Reference: "user_321-aspsp_321",
		Link:      "https://ob.nordigen.com/psd2/start/req-321",
	}

	f.client.EXPECT().ListRequisitions(gomock.Any()).Return([]reconcile.Requisition{awaiting, linkedA}, nil)
	f.expectInstitutions("aspsp_123", "aspsp_321")
	f.client.EXPECT().AccountDetails(gomock.Any(), gomock.Any()).Return(reconcile.AccountDetails{IBAN: "x"}, nil).Times(3)

	got := f.engine.Run(context.Background(), []reconcile.Intent{intentA, intentB})

	assert.Len(t, got.Accounts, 3)
	want := []reconcile.Reconciled{{
		Requisition:  awaiting,
		Intent:       intentB,
		Details:      f.institution("aspsp_321"),
		RequiresAuth: true,
	}}
	if diff := cmp.Diff(want, got.Requisitions, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("awaiting requisitions mismatch (-want +got):\n%s", diff)
	}
}

func TestNewEngine_RequiresClient(t *testing.T) {
	_, err := reconcile.NewEngine(nil, nil)
	assert.True(t, pkgerrors.IsValidationError(err))
}
