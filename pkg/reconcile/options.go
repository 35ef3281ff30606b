package reconcile

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
)

type options struct {
	logger   *zerolog.Logger
	redirect string
	runID    func() string
}

func defaultOptions() *options {
	return &options{
		logger:   logging.Default(),
		redirect: constants.DefaultRedirectURI,
		runID:    uuid.NewString,
	}
}

// Option configures the engine and its components.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		o.logger = logger
		return nil
	}
}

// WithRedirect overrides the redirect URI sent when creating requisitions.
func WithRedirect(redirect string) Option {
	return func(o *options) error {
		u, err := url.Parse(redirect)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.NewValidationError("redirect", redirect, "must be an absolute URL")
		}
		o.redirect = redirect
		return nil
	}
}

// WithRunIDs replaces the run id generator.
func WithRunIDs(fn func() string) Option {
	return func(o *options) error {
		if fn == nil {
			return &errors.ValidationError{Field: "run_id", Message: "generator cannot be nil"}
		}
		o.runID = fn
		return nil
	}
}
