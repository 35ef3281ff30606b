package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
)

// TestNoAuth tests that NoAuth applies no authentication.
func TestNoAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	(&NoAuth{}).Apply(req, "token")
	assert.Empty(t, req.Header)
}

// TestBearerAuth tests Bearer token authentication.
func TestBearerAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	(&BearerAuth{}).Apply(req, "token")
	assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
}

func TestClient_AppliesTokenAndHeaders(t *testing.T) {
	var got *http.Request
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		_, _ = w.Write([]byte(`{"id":"req-1"}`))
	}))
	defer srv.Close()

	c := New(&BearerAuth{},
		WithTokenSource(TokenSourceFunc(func(context.Context) (string, error) { return "abc", nil })),
		WithLogger(logging.NewNopLogger()),
	)

	var out struct {
		ID string `json:"id"`
	}
	err := c.Call(context.Background(), http.MethodPost, srv.URL+"/requisitions/", map[string]string{"reference": "ref"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "req-1", out.ID)
	assert.Equal(t, "Bearer abc", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"reference":"ref"}`, body)
}

func TestClient_TokenError(t *testing.T) {
	tokenErr := pkgerrors.NewAuthenticationError("nordigen", "bad secret", nil)
	c := New(&BearerAuth{}, WithTokenSource(TokenSourceFunc(func(context.Context) (string, error) {
		return "", tokenErr
	})))

	_, err := c.Get(context.Background(), "http://127.0.0.1:0/never")
	assert.ErrorIs(t, err, tokenErr)
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(nil, WithService("nordigen"))
	_, err := c.Get(context.Background(), url+"/x/")

	apiErr, ok := pkgerrors.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "nordigen", apiErr.Service)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "/x/", "message names the failed request")
	assert.Error(t, errors.Unwrap(err))
	assert.False(t, pkgerrors.IsUpstreamUnavailable(err))
}

func TestDecodeResponse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		target  error
	}{
		{"summary and detail", 401, `{"summary":"Authentication failed","detail":"No active account found","status_code":401}`, "Authentication failed: No active account found", pkgerrors.ErrUnauthorized},
		{"not found", 404, `{"detail":"Not found."}`, "Not found.", pkgerrors.ErrNotFound},
		{"rate limited plain body", 429, "Too many requests", "Too many requests", pkgerrors.ErrRateLimited},
		{"server error empty body", 502, "", "empty response body", pkgerrors.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(nil)
			err := c.Call(context.Background(), http.MethodGet, srv.URL+"/api/v2/accounts/x/", nil, nil)

			apiErr, ok := pkgerrors.IsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, "/api/v2/accounts/x/", apiErr.Endpoint)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestDecodeResponse_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	var out map[string]any
	err := New(nil).Call(context.Background(), http.MethodGet, srv.URL, nil, &out)

	var parseErr *pkgerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "json", parseErr.Format)
}

func TestDecodeResponse_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var out map[string]any
	assert.NoError(t, New(nil).Call(context.Background(), http.MethodDelete, srv.URL, nil, &out))
	assert.Nil(t, out)
	assert.True(t, strings.HasPrefix(srv.URL, "http://"))
}
