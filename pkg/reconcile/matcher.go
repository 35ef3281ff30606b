package reconcile

// MatchRequisition returns the first requisition whose reference equals
// reference. The listing API returns newest first, so the earliest match
// is the most recent one.
func MatchRequisition(reference string, remote []Requisition) (Requisition, bool) {
	for _, r := range remote {
		if r.Reference == reference {
			return r, true
		}
	}
	return Requisition{}, false
}
