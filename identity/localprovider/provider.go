// Package localprovider is an embedded identity provider used for local
// development and tests, standing in for the hosted identity service. It
// keeps a bcrypt-hashed user table in memory, mints HS256 access tokens,
// and rotates opaque refresh tokens on every refresh.
package localprovider

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/pricepoint/go-admin-console/internal/errors"
	"github.com/pricepoint/go-admin-console/identity"
)

const (
	issuer             = "local-idp"
	refreshTokenLength = 32 // bytes, 256 bits
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var _ identity.Provider = (*Provider)(nil)

type account struct {
	uid          string
	email        string
	displayName  string
	passwordHash string
}

// Provider implements identity.Provider against an in-process user table.
type Provider struct {
	identity.Broadcaster

	lock              sync.Mutex
	accounts          map[string]*account // keyed by email
	refreshTokens     map[string]string   // refresh token -> email
	signedInEmail     string
	secret            []byte
	accessTokenExpiry time.Duration
}

// Option modifies the Provider instance.
type Option func(*Provider)

// WithAccessTokenExpiry sets the lifetime of minted access tokens.
func WithAccessTokenExpiry(expiry time.Duration) Option {
	return func(p *Provider) {
		p.accessTokenExpiry = expiry
	}
}

// New creates a Provider signing tokens with the given secret.
func New(secret string, options ...Option) *Provider {
	p := &Provider{
		accounts:          make(map[string]*account),
		refreshTokens:     make(map[string]string),
		secret:            []byte(secret),
		accessTokenExpiry: time.Hour,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// RegisterUser adds an account to the provider's user table.
func (p *Provider) RegisterUser(email, password, displayName string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("[Provider.RegisterUser] bcrypt.GenerateFromPassword: %w", err)
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	p.accounts[email] = &account{
		uid:          uuid.New().String(),
		email:        email,
		displayName:  displayName,
		passwordHash: string(hash),
	}
	return nil
}

func (p *Provider) SignIn(_ context.Context, email, password string) (*identity.Credential, error) {
	p.lock.Lock()
	acct, ok := p.accounts[email]
	if !ok {
		p.lock.Unlock()
		return nil, apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.passwordHash), []byte(password)) != nil {
		p.lock.Unlock()
		return nil, apperrors.ErrInvalidCredentials
	}

	cred, err := p.issueLocked(acct)
	if err != nil {
		p.lock.Unlock()
		return nil, err
	}
	p.signedInEmail = acct.email
	p.lock.Unlock()

	p.Publish(identity.Event{Kind: identity.EventSignedIn, Credential: cred})
	return cred, nil
}

func (p *Provider) SignOut(context.Context) error {
	p.lock.Lock()
	if p.signedInEmail == "" {
		p.lock.Unlock()
		return nil
	}
	p.revokeRefreshTokensLocked(p.signedInEmail)
	p.signedInEmail = ""
	p.lock.Unlock()

	p.Publish(identity.Event{Kind: identity.EventSignedOut})
	return nil
}

func (p *Provider) Refresh(_ context.Context, refreshToken string) (*identity.Credential, error) {
	p.lock.Lock()
	email, ok := p.refreshTokens[refreshToken]
	if !ok {
		p.lock.Unlock()
		return nil, apperrors.ErrInvalidRefreshToken
	}
	acct, ok := p.accounts[email]
	if !ok {
		p.lock.Unlock()
		return nil, apperrors.ErrUserNotFound
	}

	// Rotation: the presented token dies with the mint of its successor.
	delete(p.refreshTokens, refreshToken)
	cred, err := p.issueLocked(acct)
	if err != nil {
		p.lock.Unlock()
		return nil, err
	}
	p.lock.Unlock()

	p.Publish(identity.Event{Kind: identity.EventTokenRotated, AccessToken: cred.AccessToken})
	return cred, nil
}

// issueLocked mints an access token and a fresh refresh token for the
// account. A single refresh token is kept per user.
func (p *Provider) issueLocked(acct *account) (*identity.Credential, error) {
	p.revokeRefreshTokensLocked(acct.email)

	expiresAt := NowTimeFunc().Add(p.accessTokenExpiry)
	claims := jwtlib.MapClaims{
		"iss":   issuer,
		"sub":   acct.uid,
		"email": acct.email,
		"name":  acct.displayName,
		"iat":   NowTimeFunc().Unix(),
		"exp":   expiresAt.Unix(),
		"jti":   uuid.New().String(),
	}
	accessToken, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("[Provider.issueLocked] sign access token: %w", err)
	}

	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("[Provider.issueLocked] rand.Read: %w", err)
	}
	refreshToken := hex.EncodeToString(tokenBytes)
	p.refreshTokens[refreshToken] = acct.email

	return &identity.Credential{
		User: identity.User{
			UID:         acct.uid,
			Email:       acct.email,
			DisplayName: acct.displayName,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (p *Provider) revokeRefreshTokensLocked(email string) {
	for token, owner := range p.refreshTokens {
		if owner == email {
			delete(p.refreshTokens, token)
		}
	}
}
