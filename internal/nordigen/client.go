// Package nordigen is the HTTP client for the Bank Account Data v2 API.
//
// It implements reconcile.Client and reconcile.InstitutionLookup and
// exposes the balance and single requisition reads the coordinators poll.
// Access tokens and institution details are cached in memory.
package nordigen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dogmatic69/nordigen-ha-lib/internal/cache"
	"github.com/dogmatic69/nordigen-ha-lib/internal/transport"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/balances"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

const tokenKey = "access"

// Client talks to the aggregator.
type Client struct {
	baseURL   string
	secretID  string
	secretKey string

	api  *transport.Client
	anon *transport.Client

	tokenMu      sync.Mutex
	tokens       *cache.Cache[string]
	institutions *cache.Cache[reconcile.Institution]

	logger *zerolog.Logger
}

var (
	_ reconcile.Client            = (*Client)(nil)
	_ reconcile.InstitutionLookup = (*Client)(nil)
)

// Option configures a Client.
type Option func(*settings)

type settings struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger
}

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.httpClient = hc }
}

// WithLogger sets the client's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewClient creates a client authenticating with secretID and secretKey.
func NewClient(secretID, secretKey string, opts ...Option) (*Client, error) {
	if secretID == "" {
		return nil, errors.WrapValidation("secret_id", errors.ErrCredentialsRequired)
	}
	if secretKey == "" {
		return nil, errors.WrapValidation("secret_key", errors.ErrCredentialsRequired)
	}

	s := &settings{baseURL: constants.DefaultBaseURL, logger: logging.Default()}
	for _, opt := range opts {
		opt(s)
	}

	base, err := url.Parse(s.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &errors.ValidationError{Field: "base_url", Value: s.baseURL, Message: "must be an absolute URL"}
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(s.baseURL, "/") + "/",
		secretID:     secretID,
		secretKey:    secretKey,
		tokens:       cache.New[string](time.Hour, constants.CacheCleanupInterval),
		institutions: cache.New[reconcile.Institution](constants.InstitutionCacheTTL, constants.CacheCleanupInterval),
		logger:       s.logger,
	}

	common := []transport.Option{
		transport.WithHTTPClient(s.httpClient),
		transport.WithService(constants.ServiceName),
		transport.WithLogger(s.logger),
	}
	c.anon = transport.New(&transport.NoAuth{}, common...)
	c.api = transport.New(&transport.BearerAuth{},
		append(common, transport.WithTokenSource(transport.TokenSourceFunc(c.Token)))...)

	return c, nil
}

func (c *Client) endpoint(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return c.baseURL + fmt.Sprintf(format, args...)
}

// ListRequisitions returns the first page of requisitions.
func (c *Client) ListRequisitions(ctx context.Context) ([]reconcile.Requisition, error) {
	var page requisitionPage
	if err := c.api.Call(ctx, http.MethodGet, c.endpoint("requisitions/"), nil, &page); err != nil {
		return nil, err
	}
	if page.Next != nil && *page.Next != "" {
		logging.FromContextOr(ctx, c.logger).Debug().
			Int("count", page.Count).
			Int("read", len(page.Results)).
			Msg("More requisitions available, only the first page is read")
	}
	if page.Results == nil {
		page.Results = []reconcile.Requisition{}
	}
	return page.Results, nil
}

// Requisition reads a single requisition.
func (c *Client) Requisition(ctx context.Context, id string) (reconcile.Requisition, error) {
	var req reconcile.Requisition
	if err := c.api.Call(ctx, http.MethodGet, c.endpoint("requisitions/%s/", id), nil, &req); err != nil {
		return reconcile.Requisition{}, err
	}
	return req, nil
}

// CreateRequisition creates a requisition for reference at institutionID.
func (c *Client) CreateRequisition(ctx context.Context, redirect, reference, institutionID string) (reconcile.Requisition, error) {
	body := createRequisitionRequest{
		Redirect:      redirect,
		Reference:     reference,
		InstitutionID: institutionID,
	}
	var req reconcile.Requisition
	if err := c.api.Call(ctx, http.MethodPost, c.endpoint("requisitions/"), body, &req); err != nil {
		return reconcile.Requisition{}, err
	}
	return req, nil
}

// RemoveRequisition deletes a requisition.
func (c *Client) RemoveRequisition(ctx context.Context, id string) error {
	return c.api.Call(ctx, http.MethodDelete, c.endpoint("requisitions/%s/", id), nil, nil)
}

// InitiateRequisition returns the link the end user follows to authenticate.
func (c *Client) InitiateRequisition(ctx context.Context, id, institutionID string) (string, error) {
	var resp initiateResponse
	body := initiateRequest{InstitutionID: institutionID}
	if err := c.api.Call(ctx, http.MethodPost, c.endpoint("requisitions/%s/links/", id), body, &resp); err != nil {
		return "", err
	}
	if resp.Initiate == "" {
		return "", &errors.APIError{
			Service:    constants.ServiceName,
			StatusCode: http.StatusOK,
			Message:    "response carries no initiate link",
			Endpoint:   "requisitions/" + id + "/links/",
		}
	}
	return resp.Initiate, nil
}

// AccountDetails reads the details of one account.
func (c *Client) AccountDetails(ctx context.Context, id string) (reconcile.AccountDetails, error) {
	var resp accountDetailsResponse
	if err := c.api.Call(ctx, http.MethodGet, c.endpoint("accounts/%s/details/", id), nil, &resp); err != nil {
		return reconcile.AccountDetails{}, err
	}
	return resp.Account, nil
}

// Balances reads the raw balances of one account.
func (c *Client) Balances(ctx context.Context, id string) (balances.Response, error) {
	var resp balances.Response
	if err := c.api.Call(ctx, http.MethodGet, c.endpoint("accounts/%s/balances/", id), nil, &resp); err != nil {
		return balances.Response{}, err
	}
	return resp, nil
}

// Institution returns institution details, served from cache when possible.
func (c *Client) Institution(ctx context.Context, id string) (reconcile.Institution, error) {
	if inst, ok := c.institutions.Get(id); ok {
		return inst, nil
	}

	var inst reconcile.Institution
	if err := c.api.Call(ctx, http.MethodGet, c.endpoint("institutions/%s/", id), nil, &inst); err != nil {
		return reconcile.Institution{}, err
	}
	if inst.ID == "" {
		inst.ID = id
	}
	c.institutions.Set(id, inst)
	return inst, nil
}
