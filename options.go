package nordigenha

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

// Option is a function that configures a Manager.
type Option func(*options) error

type options struct {
	secretID  string
	secretKey string
	baseURL   string
	redirect  string

	client       reconcile.Client
	institutions reconcile.InstitutionLookup

	intents []reconcile.Intent
	logger  *zerolog.Logger

	autoUpdatesEnabled bool
	autoUpdateInterval time.Duration
}

func newOptions(opts ...Option) (*options, error) {
	o := &options{
		baseURL:            constants.DefaultBaseURL,
		redirect:           constants.DefaultRedirectURI,
		logger:             logging.Default(),
		autoUpdateInterval: time.Duration(constants.DefaultRefreshRate) * time.Minute,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithCredentials sets the secret pair used to obtain access tokens.
func WithCredentials(secretID, secretKey string) Option {
	return func(o *options) error {
		o.secretID = secretID
		o.secretKey = secretKey
		return nil
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(o *options) error {
		o.baseURL = baseURL
		return nil
	}
}

// WithRedirect overrides the redirect URI sent when creating requisitions.
func WithRedirect(redirect string) Option {
	return func(o *options) error {
		o.redirect = redirect
		return nil
	}
}

// WithClient uses client and institutions instead of a Nordigen client.
func WithClient(client reconcile.Client, institutions reconcile.InstitutionLookup) Option {
	return func(o *options) error {
		if client == nil || institutions == nil {
			return &errors.ValidationError{Field: "client", Message: "cannot be nil"}
		}
		o.client = client
		o.institutions = institutions
		return nil
	}
}

// WithIntents adds connections to reconcile, in order. Each reference may
// appear only once across all WithIntents calls.
func WithIntents(intents ...reconcile.Intent) Option {
	return func(o *options) error {
		seen := make(map[string]bool, len(o.intents)+len(intents))
		for _, intent := range o.intents {
			seen[intent.Reference()] = true
		}
		for _, intent := range intents {
			ref := intent.Reference()
			if seen[ref] {
				return errors.NewValidationError("intents", ref, "reference is configured more than once")
			}
			seen[ref] = true
		}
		o.intents = append(o.intents, intents...)
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		o.logger = logger
		return nil
	}
}

// WithAutoUpdates configures whether automatic updates start with New.
func WithAutoUpdates(enabled bool) Option {
	return func(o *options) error {
		o.autoUpdatesEnabled = enabled
		return nil
	}
}

// WithAutoUpdateInterval configures how often to reconcile automatically.
func WithAutoUpdateInterval(interval time.Duration) Option {
	return func(o *options) error {
		o.autoUpdateInterval = interval
		return nil
	}
}
