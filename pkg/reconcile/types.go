package reconcile

import (
	"slices"

	"github.com/agentstation/utc"
)

// Intent is one configured bank connection: link EndUserID to InstitutionID.
type Intent struct {
	InstitutionID string   `json:"institution_id" yaml:"institution_id"`
	EndUserID     string   `json:"enduser_id" yaml:"enduser_id"`
	Ignore        []string `json:"ignore" yaml:"ignore"`
	// RefreshRate is the balance poll interval in minutes.
	RefreshRate  int      `json:"refresh_rate,omitempty" yaml:"refresh_rate,omitempty"`
	BalanceTypes []string `json:"balance_types,omitempty" yaml:"balance_types,omitempty"`
}

// Reference returns the join key between this intent and a remote requisition.
func (i Intent) Reference() string {
	return Reference(i.EndUserID, i.InstitutionID)
}

// Ignores reports whether ref was opted out of by the user.
func (i Intent) Ignores(ref string) bool {
	return slices.Contains(i.Ignore, ref)
}

// Reference builds "{enduser_id}-{institution_id}".
func Reference(endUserID, institutionID string) string {
	return endUserID + "-" + institutionID
}

// Requisition is the aggregator-side linkage resource.
type Requisition struct {
	ID            string    `json:"id" yaml:"id"`
	Status        Status    `json:"status" yaml:"status"`
	Reference     string    `json:"reference" yaml:"reference"`
	Accounts      []string  `json:"accounts" yaml:"accounts"`
	Link          string    `json:"link,omitempty" yaml:"link,omitempty"`
	Redirect      string    `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	InstitutionID string    `json:"institution_id,omitempty" yaml:"institution_id,omitempty"`
	EndUserID     string    `json:"enduser_id,omitempty" yaml:"enduser_id,omitempty"`
	Created       *utc.Time `json:"created,omitempty" yaml:"created,omitempty"`
}

// Institution is static display metadata for a bank.
type Institution struct {
	ID                   string `json:"id" yaml:"id"`
	Name                 string `json:"name,omitempty" yaml:"name,omitempty"`
	BIC                  string `json:"bic,omitempty" yaml:"bic,omitempty"`
	TransactionTotalDays string `json:"transaction_total_days,omitempty" yaml:"transaction_total_days,omitempty"`
	Logo                 string `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// Reconciled is a requisition after reconciliation, joined with the intent
// that produced it and its institution details.
type Reconciled struct {
	Requisition  `yaml:",inline"`
	Intent       Intent      `json:"config" yaml:"config"`
	Details      Institution `json:"details" yaml:"details"`
	RequiresAuth bool        `json:"requires_auth" yaml:"requires_auth"`
}

// AccountDetails are the raw fields returned by the account details call.
// Empty strings mean the upstream omitted the field.
type AccountDetails struct {
	IBAN       string `json:"iban,omitempty"`
	BBAN       string `json:"bban,omitempty"`
	ResourceID string `json:"resourceId,omitempty"`
	BIC        string `json:"bic,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Name       string `json:"name,omitempty"`
	OwnerName  string `json:"ownerName,omitempty"`
	Product    string `json:"product,omitempty"`
	Status     string `json:"status,omitempty"`
}

// HasIdentifier reports whether any of iban, bban or resourceId is set.
func (d AccountDetails) HasIdentifier() bool {
	return d.IBAN != "" || d.BBAN != "" || d.ResourceID != ""
}

// RequisitionRef is the copy of the owning requisition kept on an account.
type RequisitionRef struct {
	ID        string `json:"id" yaml:"id"`
	Reference string `json:"reference" yaml:"reference"`
	Status    Status `json:"status" yaml:"status"`
	EndUserID string `json:"enduser_id,omitempty" yaml:"enduser_id,omitempty"`
	Redirect  string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
}

// Account is the normalized view of one remote account.
type Account struct {
	ID          string         `json:"id" yaml:"id"`
	IBAN        string         `json:"iban,omitempty" yaml:"iban,omitempty"`
	BBAN        string         `json:"bban,omitempty" yaml:"bban,omitempty"`
	ResourceID  string         `json:"resource_id,omitempty" yaml:"resource_id,omitempty"`
	BIC         string         `json:"bic,omitempty" yaml:"bic,omitempty"`
	Currency    string         `json:"currency,omitempty" yaml:"currency,omitempty"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Owner       string         `json:"owner,omitempty" yaml:"owner,omitempty"`
	Product     string         `json:"product,omitempty" yaml:"product,omitempty"`
	Status      string         `json:"status,omitempty" yaml:"status,omitempty"`
	UniqueRef   string         `json:"unique_ref" yaml:"unique_ref"`
	Requisition RequisitionRef `json:"requisition" yaml:"requisition"`
	Intent      Intent         `json:"config" yaml:"config"`
	Institution Institution    `json:"institution" yaml:"institution"`
}

// Snapshot is the output of one reconciliation run.
type Snapshot struct {
	// Requisitions awaiting end-user authentication.
	Requisitions []Reconciled `json:"requisitions" yaml:"requisitions"`
	// Accounts of linked requisitions, in intent then API order.
	Accounts []Account `json:"accounts" yaml:"accounts"`
}

// Empty reports whether the run produced nothing.
func (s Snapshot) Empty() bool {
	return len(s.Requisitions) == 0 && len(s.Accounts) == 0
}
