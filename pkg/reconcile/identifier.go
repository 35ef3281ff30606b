package reconcile

// UniqueRef picks the stable key for an account: iban, then bban, then
// resourceId, then accountID. It is empty only when accountID is, which
// AccountFetcher never passes.
func UniqueRef(accountID string, details AccountDetails) string {
	for _, v := range []string{details.IBAN, details.BBAN, details.ResourceID} {
		if v != "" {
			return v
		}
	}
	return accountID
}
