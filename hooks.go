package nordigenha

import (
	"sync"

	"github.com/google/go-cmp/cmp"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

// Hook function types for snapshot events
type (
	// AccountHook is called with an account that was added or removed.
	AccountHook func(account reconcile.Account)

	// AccountUpdatedHook is called when an account's data changed.
	AccountUpdatedHook func(old, new reconcile.Account)

	// RequisitionHook is called with a requisition awaiting authentication.
	RequisitionHook func(req reconcile.Reconciled)
)

// hooks manages event callbacks for snapshot changes
type hooks struct {
	mu                   sync.RWMutex
	onAccountAdded       []AccountHook
	onAccountUpdated     []AccountUpdatedHook
	onAccountRemoved     []AccountHook
	onRequisitionPending []RequisitionHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnAccountAdded registers a callback for accounts that appear.
func (h *hooks) OnAccountAdded(fn AccountHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onAccountAdded = append(h.onAccountAdded, fn)
}

// OnAccountUpdated registers a callback for accounts whose data changed.
func (h *hooks) OnAccountUpdated(fn AccountUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onAccountUpdated = append(h.onAccountUpdated, fn)
}

// OnAccountRemoved registers a callback for accounts that disappear.
func (h *hooks) OnAccountRemoved(fn AccountHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onAccountRemoved = append(h.onAccountRemoved, fn)
}

// OnRequisitionPending registers a callback for requisitions awaiting
// authentication.
func (h *hooks) OnRequisitionPending(fn RequisitionHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRequisitionPending = append(h.onRequisitionPending, fn)
}

// triggerSnapshotUpdate compares two snapshots and triggers hooks.
// Accounts are keyed by unique ref, requisitions by reference; a pending
// requisition fires again only when its link changes.
func (h *hooks) triggerSnapshotUpdate(old, new reconcile.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	oldAccounts := make(map[string]reconcile.Account, len(old.Accounts))
	for _, a := range old.Accounts {
		oldAccounts[a.UniqueRef] = a
	}
	newAccounts := make(map[string]struct{}, len(new.Accounts))

	for _, a := range new.Accounts {
		newAccounts[a.UniqueRef] = struct{}{}
		prev, exists := oldAccounts[a.UniqueRef]
		switch {
		case !exists:
			for _, hook := range h.onAccountAdded {
				hook(a)
			}
		case !cmp.Equal(prev, a):
			for _, hook := range h.onAccountUpdated {
				hook(prev, a)
			}
		}
	}

	for _, a := range old.Accounts {
		if _, exists := newAccounts[a.UniqueRef]; !exists {
			for _, hook := range h.onAccountRemoved {
				hook(a)
			}
		}
	}

	oldLinks := make(map[string]string, len(old.Requisitions))
	for _, r := range old.Requisitions {
		oldLinks[r.Reference] = r.Link
	}
	for _, r := range new.Requisitions {
		if link, seen := oldLinks[r.Reference]; seen && link == r.Link {
			continue
		}
		for _, hook := range h.onRequisitionPending {
			hook(r)
		}
	}
}
