// Package constants provides shared constants used throughout the codebase.
// This includes timeouts, intervals, file permissions, and the fixed values
// the aggregator integration relies on.
package constants

import "time"

// Aggregator API values
const (
	// DefaultBaseURL is the Bank Account Data v2 API root
	DefaultBaseURL = "https://bankaccountdata.gocardless.com/api/v2/"

	// DefaultRedirectURI is sent as the redirect when creating requisitions.
	// The end user never returns to it; status is polled instead.
	DefaultRedirectURI = "https://127.0.0.1/"

	// ServiceName identifies the aggregator in errors and logs
	ServiceName = "nordigen"

	// DefaultUserAgent is sent with every request
	DefaultUserAgent = "nordigen-ha-lib"
)

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the aggregator
	DefaultHTTPTimeout = 30 * time.Second

	// UpdateTimeout bounds a single scheduled update
	UpdateTimeout = 1 * time.Minute

	// RunTimeout bounds a whole reconciliation run
	RunTimeout = 5 * time.Minute

	// ShutdownTimeout is how long watch waits for coordinators to stop
	ShutdownTimeout = 10 * time.Second
)

// Poll intervals
const (
	// RequisitionPollInterval is how often an awaiting requisition is re-read
	RequisitionPollInterval = 2 * time.Minute

	// DefaultRefreshRate is the default balance poll interval in minutes
	DefaultRefreshRate = 240

	// MinRefreshRate is the lowest accepted balance poll interval in minutes
	MinRefreshRate = 1
)

// Token and cache constants
const (
	// TokenExpiryMargin is subtracted from the token lifetime before caching
	TokenExpiryMargin = 30 * time.Second

	// InstitutionCacheTTL is how long institution details are cached
	InstitutionCacheTTL = 24 * time.Hour

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// Limit constants
const (
	// MaxConcurrentRequests is the default worker pool size
	MaxConcurrentRequests = 4
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for files holding secrets (rw-------)
	SecureFilePermissions = 0600
)

// Path constants
const (
	// DefaultConfigName is the config file name searched in $HOME and the working directory
	DefaultConfigName = ".nordigen"

	// EnvPrefix is the prefix for environment overrides
	EnvPrefix = "NORDIGEN"
)
