// Package app provides the application context and dependency management
// for the nordigen CLI. It centralizes configuration, the aggregator
// client and lifecycle management.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dogmatic69/nordigen-ha-lib/internal/config"
	"github.com/dogmatic69/nordigen-ha-lib/internal/nordigen"
	"github.com/dogmatic69/nordigen-ha-lib/internal/workerpool"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/balances"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/coordinator"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

// Backend is everything the commands need from the aggregator.
type Backend interface {
	reconcile.Client
	reconcile.InstitutionLookup
	Balances(ctx context.Context, accountID string) (balances.Response, error)
	Requisition(ctx context.Context, id string) (reconcile.Requisition, error)
}

var _ Backend = (*nordigen.Client)(nil)

// App represents the nordigen application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config       *Config
	logger       *zerolog.Logger
	customLogger bool
	out          io.Writer

	// Lazy-initialized, singletons
	mu       sync.Mutex
	settings *config.Config
	backend  Backend
	pool     *workerpool.Pool
	stoppers []func()
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		out:     os.Stdout,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Settings returns the validated aggregator configuration, loading it on
// first use.
func (a *App) Settings() (*config.Config, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settingsLocked()
}

func (a *App) settingsLocked() (*config.Config, error) {
	if a.settings != nil {
		return a.settings, nil
	}

	settings, err := config.Load(a.config.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if settings.ConfigFile != "" {
		a.logger.Debug().Str("file", settings.ConfigFile).Msg("Loaded configuration")
	}

	a.settings = settings
	return settings, nil
}

// Backend returns the aggregator client, creating it lazily if needed.
func (a *App) Backend() (Backend, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.backend != nil {
		return a.backend, nil
	}

	settings, err := a.settingsLocked()
	if err != nil {
		return nil, err
	}

	client, err := nordigen.NewClient(settings.SecretID, settings.SecretKey,
		nordigen.WithBaseURL(settings.BaseURL),
		nordigen.WithLogger(a.logger),
	)
	if err != nil {
		return nil, errors.WrapResource("create", "client", constants.ServiceName, err)
	}

	a.backend = client
	return client, nil
}

// Pool returns the shared executor for blocking aggregator calls.
func (a *App) Pool() *workerpool.Pool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pool == nil {
		a.pool = workerpool.New(constants.MaxConcurrentRequests,
			workerpool.WithLogger(a.logger),
			workerpool.WithTimeout(constants.UpdateTimeout),
		)
	}
	return a.pool
}

// Engine builds a reconciliation engine over the backend.
func (a *App) Engine() (*reconcile.Engine, error) {
	backend, err := a.Backend()
	if err != nil {
		return nil, err
	}
	settings, err := a.Settings()
	if err != nil {
		return nil, err
	}
	return reconcile.NewEngine(backend, backend,
		reconcile.WithLogger(a.logger),
		reconcile.WithRedirect(settings.RedirectURL),
	)
}

// Debug reports whether balances are generated instead of fetched.
func (a *App) Debug() bool {
	if a.config.Debug {
		return true
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings != nil && a.settings.Debug
}

// BalanceFetcher returns the balance source for an account in currency.
// In debug mode no request is made and random balances are returned.
func (a *App) BalanceFetcher(currency string) (coordinator.BalanceFetchFunc, error) {
	if a.Debug() {
		a.logger.Warn().Msg("Debug mode: balances are randomly generated")
		return func(context.Context, string) (balances.Response, error) {
			return balances.Random(currency), nil
		}, nil
	}

	backend, err := a.Backend()
	if err != nil {
		return nil, err
	}
	return backend.Balances, nil
}

// onShutdown registers a function run by Shutdown.
func (a *App) onShutdown(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stoppers = append(a.stoppers, fn)
}

// Shutdown performs graceful shutdown of the application.
// It stops any running coordinators.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	stoppers := a.stoppers
	a.stoppers = nil
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, stop := range stoppers {
			stop()
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		a.logger.Warn().Int("coordinators", len(stoppers)).Msg("Shutdown timed out")
		return errors.ErrTimeout
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		a.logger = logger
		a.customLogger = true
		return nil
	}
}

// WithSettings sets the aggregator configuration instead of loading it.
func WithSettings(settings *config.Config) Option {
	return func(a *App) error {
		a.settings = settings
		return nil
	}
}

// WithBackend sets a custom backend (useful for testing).
func WithBackend(backend Backend) Option {
	return func(a *App) error {
		a.backend = backend
		return nil
	}
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
