package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pricepoint/go-admin-console/credentials"
)

// authenticationExceptionName is the backend's discriminator for an expired
// authorization on a 403 response.
const authenticationExceptionName = "AuthenticationException"

// maxErrorBodySize bounds how much of an error body is buffered while
// looking for the discriminator.
const maxErrorBodySize = 64 << 10

// TokenSource supplies the current bearer token and can mint a new one.
// session.Controller satisfies it.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}

// AuthTransport attaches the session's bearer token to outbound requests
// and recovers from authorization-expired responses: a 403 carrying
// AuthenticationException triggers a token refresh and, when enabled, a
// single retry of the original request with the new token. Every other
// response passes through untouched.
type AuthTransport struct {
	// Base is the underlying transport; http.DefaultTransport when nil.
	Base http.RoundTripper

	// Tokens is the live session. Optional; without it requests go out
	// with the Fallback token only and no recovery happens.
	Tokens TokenSource

	// Fallback is read when the session has no token yet, covering call
	// sites that fire before hydration finishes.
	Fallback credentials.Store

	// RetryAfterRefresh re-issues the failed request once after a
	// successful refresh.
	RetryAfterRefresh bool
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(t.authorize(req))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusForbidden || !isAuthenticationException(resp) {
		return resp, nil
	}
	if t.Tokens == nil {
		return resp, nil
	}

	if refreshErr := t.Tokens.Refresh(req.Context()); refreshErr != nil {
		// silent recovery failed; the caller sees the original 403
		return resp, nil
	}
	if !t.RetryAfterRefresh {
		return resp, nil
	}

	retry, ok := rewindRequest(req)
	if !ok {
		return resp, nil
	}
	resp.Body.Close()
	return t.base().RoundTrip(t.authorize(retry))
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// authorize clones the request with the current bearer token attached.
func (t *AuthTransport) authorize(req *http.Request) *http.Request {
	authed := req.Clone(req.Context())
	if token := t.token(); token != "" {
		authed.Header.Set("Authorization", "Bearer "+token)
	}
	return authed
}

func (t *AuthTransport) token() string {
	if t.Tokens != nil {
		if token := t.Tokens.AccessToken(); token != "" {
			return token
		}
	}
	if t.Fallback != nil {
		if token, ok := t.Fallback.Read(credentials.SlotAccessToken); ok {
			return token
		}
	}
	return ""
}

// isAuthenticationException inspects the response body for the expired
// authorization discriminator and restores the body for the caller.
func isAuthenticationException(resp *http.Response) bool {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return false
	}

	var payload struct {
		Error struct {
			Name string `json:"name"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Error.Name == authenticationExceptionName
}

// rewindRequest prepares a second send of req. Requests whose body cannot
// be replayed are not retried.
func rewindRequest(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	if req.Body == nil {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}
