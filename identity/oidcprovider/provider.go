// Package oidcprovider implements identity.Provider against a hosted OIDC
// identity service using the resource-owner password grant for sign-in and
// the refresh grant for token rotation.
package oidcprovider

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/pricepoint/go-admin-console/identity"
)

var _ identity.Provider = (*Provider)(nil)

// Config carries the settings needed to reach the identity service.
type Config struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Provider talks to a hosted OIDC identity service.
type Provider struct {
	identity.Broadcaster

	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	logger      zerolog.Logger
}

// New discovers the issuer's endpoints and builds the provider.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Provider, error) {
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, fmt.Errorf("[oidcprovider.New] issuer is required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("[oidcprovider.New] client ID is required")
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("[oidcprovider.New] oidc.NewProvider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email", "offline_access"}
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       scopes,
		},
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		logger:   logger.With().Str("component", "oidcprovider").Logger(),
	}, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Credential, error) {
	token, err := p.oauthConfig.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("[Provider.SignIn] password grant: %w", err)
	}

	cred, err := p.credentialFromToken(ctx, token)
	if err != nil {
		return nil, err
	}

	p.logger.Debug().Str("uid", cred.User.UID).Msg("signed in")
	p.Publish(identity.Event{Kind: identity.EventSignedIn, Credential: cred})
	return cred, nil
}

// SignOut is local-only: the password grant keeps no provider-side browser
// session to end, and the refresh token dies when the session shadow is
// cleared by the caller.
func (p *Provider) SignOut(context.Context) error {
	p.Publish(identity.Event{Kind: identity.EventSignedOut})
	return nil
}

func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*identity.Credential, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("[Provider.Refresh] refresh token is required")
	}

	source := p.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("[Provider.Refresh] refresh grant: %w", err)
	}

	cred, err := p.credentialFromToken(ctx, token)
	if err != nil {
		return nil, err
	}

	p.Publish(identity.Event{Kind: identity.EventTokenRotated, AccessToken: cred.AccessToken})
	return cred, nil
}

// credentialFromToken verifies the ID token, when present, and extracts the
// identity claims. Refresh responses without an ID token yield a credential
// with an empty user; the session keeps its current identity in that case.
func (p *Provider) credentialFromToken(ctx context.Context, token *oauth2.Token) (*identity.Credential, error) {
	cred := &identity.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return cred, nil
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("[Provider.credentialFromToken] ID token verification: %w", err)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("[Provider.credentialFromToken] extract claims: %w", err)
	}

	cred.User = identity.User{
		UID:         claims.Sub,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}
	return cred, nil
}
