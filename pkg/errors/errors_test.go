package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "secret_id",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field secret_id: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("wrap helper", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapValidation("refresh_rate", nil))
		err := pkgerrors.WrapValidation("refresh_rate", errors.New("must be positive"))
		assert.True(t, pkgerrors.IsValidationError(err))
		assert.Contains(t, err.Error(), "refresh_rate")
	})
}

func TestAPIError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &pkgerrors.APIError{
			Service:    "nordigen",
			StatusCode: 429,
			Message:    "rate limit exceeded",
			Endpoint:   "https://bankaccountdata.gocardless.com/api/v2/requisitions/",
		}
		assert.Contains(t, err.Error(), "nordigen")
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "rate limit exceeded")
	})

	t.Run("with wrapped error", func(t *testing.T) {
		baseErr := errors.New("connection timeout")
		err := &pkgerrors.APIError{
			Service: "nordigen",
			Message: "request failed",
			Err:     baseErr,
		}
		assert.Equal(t, "API error from nordigen: request failed", err.Error())
		assert.Equal(t, baseErr, err.Unwrap())
	})

	tests := []struct {
		status int
		target error
	}{
		{401, pkgerrors.ErrUnauthorized},
		{403, pkgerrors.ErrUnauthorized},
		{404, pkgerrors.ErrNotFound},
		{429, pkgerrors.ErrRateLimited},
		{500, pkgerrors.ErrUpstreamUnavailable},
		{503, pkgerrors.ErrUpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := fmt.Errorf("listing: %w", pkgerrors.NewAPIError("nordigen", tt.status, "boom"))
			assert.ErrorIs(t, err, tt.target)

			apiErr, ok := pkgerrors.IsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}

	t.Run("bad request matches no sentinel", func(t *testing.T) {
		err := pkgerrors.NewAPIError("nordigen", 400, "bad")
		assert.False(t, pkgerrors.IsNotFound(err))
		assert.False(t, pkgerrors.IsRateLimited(err))
		assert.False(t, pkgerrors.IsUpstreamUnavailable(err))
	})
}

func TestUpdateFailedError(t *testing.T) {
	base := pkgerrors.NewAPIError("nordigen", 503, "maintenance")
	err := pkgerrors.WrapUpdate("nordigen-balance-DE89", base)

	assert.True(t, pkgerrors.IsUpdateFailed(err))
	assert.True(t, pkgerrors.IsUpstreamUnavailable(err), "cause must stay reachable")
	assert.Contains(t, err.Error(), "nordigen-balance-DE89")

	var ufe *pkgerrors.UpdateFailedError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "nordigen-balance-DE89", ufe.Name)

	assert.Nil(t, pkgerrors.WrapUpdate("x", nil))
	assert.False(t, pkgerrors.IsUpdateFailed(errors.New("plain")))
}

func TestSyncError(t *testing.T) {
	t.Run("with accounts", func(t *testing.T) {
		err := pkgerrors.NewSyncError("user1-aspsp1", []string{"acc-1", "acc-2"}, errors.New("API unavailable"))
		assert.Contains(t, err.Error(), "user1-aspsp1")
		assert.Contains(t, err.Error(), "acc-1")
		assert.Contains(t, err.Error(), "API unavailable")
	})

	t.Run("without accounts", func(t *testing.T) {
		err := pkgerrors.NewSyncError("user1-aspsp1", nil, errors.New("authentication failed"))
		assert.NotContains(t, err.Error(), "affected accounts")
	})
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("create", "requisition", "user1-aspsp1", pkgerrors.ErrAlreadyExists)
	resErr, ok := err.(*pkgerrors.ResourceError)
	require.True(t, ok)
	assert.Equal(t, "create", resErr.Operation)
	assert.Equal(t, "failed to create requisition user1-aspsp1: already exists", err.Error())
	assert.ErrorIs(t, err, pkgerrors.ErrAlreadyExists)

	assert.Nil(t, pkgerrors.WrapResource("create", "requisition", "", nil))
}

func TestParseError(t *testing.T) {
	t.Run("with file", func(t *testing.T) {
		err := pkgerrors.NewParseError("yaml", "nordigen.yaml", "invalid indentation", nil)
		assert.Equal(t, "parse error in yaml file nordigen.yaml: invalid indentation", err.Error())
	})

	t.Run("format only", func(t *testing.T) {
		baseErr := errors.New("can't convert abc to decimal")
		err := pkgerrors.WrapParse("decimal", "", baseErr)
		assert.Contains(t, err.Error(), "decimal parse error")
		assert.ErrorIs(t, err, baseErr)
	})
}

func TestAuthenticationError(t *testing.T) {
	baseErr := errors.New("token expired")
	err := pkgerrors.NewAuthenticationError("nordigen", "token request rejected", baseErr)
	assert.Contains(t, err.Error(), "token request rejected")
	assert.True(t, pkgerrors.IsUnauthorized(err))
	assert.Equal(t, baseErr, err.Unwrap())
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("config", "unable to read file", errors.New("permission denied"))
	assert.Contains(t, err.Error(), "configuration error in config")
	assert.Contains(t, err.Error(), "unable to read file")
	assert.EqualError(t, err.Unwrap(), "permission denied")
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, pkgerrors.IsTimeout(pkgerrors.ErrTimeout))
	assert.True(t, pkgerrors.IsTimeout(pkgerrors.WrapUpdate("balance acc-1", context.DeadlineExceeded)))
	assert.False(t, pkgerrors.IsTimeout(context.Canceled))
	assert.False(t, pkgerrors.IsTimeout(nil))
}

func TestWrapAPI(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapAPI("nordigen", 0, nil))

	base := errors.New("dial tcp: connection refused")
	err := pkgerrors.WrapAPI("nordigen", 0, base)
	apiErr, ok := pkgerrors.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "API error from nordigen: dial tcp: connection refused", err.Error())
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.ErrorIs(t, err, base)

	assert.True(t, pkgerrors.IsUpstreamUnavailable(pkgerrors.WrapAPI("nordigen", 503, base)))
}
