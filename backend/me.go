package backend

import (
	"context"
	"fmt"
	"net/http"
)

// Me fetches the backend's user record for the current session through the
// authorized transport.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/user/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// IdentityClient exchanges a freshly issued access token for the backend's
// own user record. It deliberately bypasses AuthTransport: resolution runs
// before a token is accepted into the session, with the candidate token
// attached explicitly.
type IdentityClient struct {
	client *Client
}

// NewIdentityClient builds a resolver for the API rooted at baseURL.
func NewIdentityClient(baseURL string, options ...Option) *IdentityClient {
	return &IdentityClient{client: NewClient(baseURL, options...)}
}

// ResolveIdentity performs GET /user/me with the given bearer token.
func (ic *IdentityClient) ResolveIdentity(ctx context.Context, accessToken string) (*User, error) {
	endpoint := ic.client.baseURL + "/user/me"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("[IdentityClient.ResolveIdentity] build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var user User
	if err := ic.client.doRequest(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
