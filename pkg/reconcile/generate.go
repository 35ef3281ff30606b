//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/dogmatic69/nordigen-ha-lib --repository.default-branch main --repository.path /pkg/reconcile

// Package reconcile matches configured bank connections against the
// aggregator's requisitions, creates or repairs them as needed, and
// produces a normalized, uniquely keyed view of the linked accounts.
package reconcile
