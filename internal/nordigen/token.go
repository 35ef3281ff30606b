package nordigen

import (
	"context"
	"net/http"
	"time"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
)

// Token returns a valid access token, exchanging the secrets for a new one
// when the cached token is missing or about to expire.
func (c *Client) Token(ctx context.Context) (string, error) {
	if token, ok := c.tokens.Get(tokenKey); ok {
		return token, nil
	}

	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if token, ok := c.tokens.Get(tokenKey); ok {
		return token, nil
	}

	body := tokenRequest{SecretID: c.secretID, SecretKey: c.secretKey}
	var resp tokenResponse
	if err := c.anon.Call(ctx, http.MethodPost, c.endpoint("token/new/"), body, &resp); err != nil {
		if errors.IsUnauthorized(err) {
			return "", errors.NewAuthenticationError(constants.ServiceName, "secret_id or secret_key rejected", err)
		}
		return "", err
	}
	if resp.Access == "" {
		return "", errors.NewAuthenticationError(constants.ServiceName, "token response carries no access token", nil)
	}

	ttl := time.Duration(resp.AccessExpires)*time.Second - constants.TokenExpiryMargin
	c.tokens.SetWithTTL(tokenKey, resp.Access, ttl)

	logging.FromContextOr(ctx, c.logger).Debug().Dur("ttl", ttl).Msg("Obtained access token")
	return resp.Access, nil
}

// ResetToken drops the cached access token.
func (c *Client) ResetToken() {
	c.tokens.Delete(tokenKey)
}
