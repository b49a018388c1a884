package backend_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pricepoint/go-admin-console/backend"
	"github.com/pricepoint/go-admin-console/credentials"
)

type fakeTokenSource struct {
	lock         sync.Mutex
	token        string
	nextToken    string
	refreshCalls int
}

func (f *fakeTokenSource) AccessToken() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.token
}

func (f *fakeTokenSource) Refresh(context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.refreshCalls++
	f.token = f.nextToken
	return nil
}

func authClient(t *testing.T, transport *backend.AuthTransport) *http.Client {
	t.Helper()
	return &http.Client{Transport: transport}
}

func TestTransportAttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	tokens := &fakeTokenSource{token: "token-1"}
	client := authClient(t, &backend.AuthTransport{Tokens: tokens, RetryAfterRefresh: true})

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "Bearer token-1", gotAuth)
}

func TestTransportRefreshesAndRetriesOnAuthenticationException(t *testing.T) {
	var authHeaders []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		if len(authHeaders) == 1 {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"name":"AuthenticationException","message":"token expired"}}`))
			return
		}
		w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer server.Close()

	tokens := &fakeTokenSource{token: "stale-token", nextToken: "fresh-token"}
	client := authClient(t, &backend.AuthTransport{Tokens: tokens, RetryAfterRefresh: true})

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, tokens.refreshCalls)
	require.Equal(t, []string{"Bearer stale-token", "Bearer fresh-token"}, authHeaders)
}

func TestTransportLeavesOtherForbiddenAlone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"name":"ForbiddenException","message":"not yours"}}`))
	}))
	defer server.Close()

	tokens := &fakeTokenSource{token: "token-1"}
	client := authClient(t, &backend.AuthTransport{Tokens: tokens, RetryAfterRefresh: true})

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, 0, tokens.refreshCalls)

	// the body is restored for the caller after being inspected
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "ForbiddenException")
}

func TestTransportLeavesServerErrorsAlone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tokens := &fakeTokenSource{token: "token-1"}
	client := authClient(t, &backend.AuthTransport{Tokens: tokens, RetryAfterRefresh: true})

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, 0, tokens.refreshCalls)
}

func TestTransportWithoutRetryKeepsOriginalResponse(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"name":"AuthenticationException"}}`))
	}))
	defer server.Close()

	tokens := &fakeTokenSource{token: "stale-token", nextToken: "fresh-token"}
	client := authClient(t, &backend.AuthTransport{Tokens: tokens, RetryAfterRefresh: false})

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	// the refresh still fires, but the original 403 passes through untouched
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, 1, tokens.refreshCalls)
	require.Equal(t, 1, requests)
}

func TestTransportFallsBackToStoredToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	store := credentials.NewInMemoryStore()
	require.NoError(t, store.Write(credentials.SlotAccessToken, "stored-token"))

	// session not hydrated yet: no live token, only the stored shadow
	client := authClient(t, &backend.AuthTransport{
		Tokens:   &fakeTokenSource{},
		Fallback: store,
	})

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "Bearer stored-token", gotAuth)
}
