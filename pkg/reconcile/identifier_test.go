package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

func TestUniqueRef(t *testing.T) {
	tests := []struct {
		name    string
		details reconcile.AccountDetails
		want    string
	}{
		{"iban wins", reconcile.AccountDetails{IBAN: "iban-1", BBAN: "bban-1", ResourceID: "res-1"}, "iban-1"},
		{"bban over resourceId", reconcile.AccountDetails{BBAN: "bban-1", ResourceID: "res-1"}, "bban-1"},
		{"resourceId only", reconcile.AccountDetails{ResourceID: "res-1"}, "res-1"},
		{"no identifiers", reconcile.AccountDetails{Name: "Main"}, "fallback-id"},
		{"empty iban is absent", reconcile.AccountDetails{IBAN: "", BBAN: "bban-1"}, "bban-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconcile.UniqueRef("fallback-id", tt.details))
		})
	}
}

func TestReference(t *testing.T) {
	assert.Equal(t, "user1-aspsp1", reconcile.Reference("user1", "aspsp1"))

	intent := reconcile.Intent{EndUserID: "user1", InstitutionID: "aspsp1", Ignore: []string{"DE89"}}
	assert.Equal(t, "user1-aspsp1", intent.Reference())
	assert.True(t, intent.Ignores("DE89"))
	assert.False(t, intent.Ignores("DE90"))
}

func TestMatchRequisition(t *testing.T) {
	t.Run("empty listing", func(t *testing.T) {
		_, ok := reconcile.MatchRequisition("ref", nil)
		assert.False(t, ok)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := reconcile.MatchRequisition("ref", []reconcile.Requisition{{Reference: "other"}})
		assert.False(t, ok)
	})

	t.Run("first match wins", func(t *testing.T) {
		remote := []reconcile.Requisition{
			{ID: "a", Reference: "foo"},
			{ID: "b", Reference: "ref"},
			{ID: "c", Reference: "ref"},
		}
		got, ok := reconcile.MatchRequisition("ref", remote)
		assert.True(t, ok)
		assert.Equal(t, "b", got.ID)
	})
}
