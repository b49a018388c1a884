package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/pricepoint/go-admin-console/credentials"
	"github.com/pricepoint/go-admin-console/identity"
	apperrors "github.com/pricepoint/go-admin-console/internal/errors"
)

// Controller is the single source of truth for who is signed in and with
// what token. It is the only component that calls the identity provider's
// mutating operations and the only writer of the credential store.
type Controller struct {
	store    credentials.Store
	provider identity.Provider
	resolver IdentityResolver

	adminRole       string
	refreshInterval time.Duration
	logger          zerolog.Logger
	nowTime         func() time.Time

	lock  sync.Mutex
	state State
	user  *User

	// settledToken/settledErr record the outcome of the last backend
	// identity resolution, keyed by access-token value, so a sign-in
	// observed through both the provider event and the Login call resolves
	// exactly once.
	settledToken string
	settledErr   error

	group singleflight.Group

	subLock     sync.RWMutex
	subscribers map[string]func(Snapshot)

	unsubscribeProvider func()
}

// Option modifies the Controller instance.
type Option func(*Controller)

// WithAdminRole sets the backend role required to hold a session.
func WithAdminRole(role string) Option {
	return func(c *Controller) {
		c.adminRole = role
	}
}

// WithRefreshInterval sets the periodic pre-emptive refresh cadence.
func WithRefreshInterval(interval time.Duration) Option {
	return func(c *Controller) {
		c.refreshInterval = interval
	}
}

// WithLogger sets the controller's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger.With().Str("component", "session").Logger()
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

// NewController initializes a Controller with required dependencies and
// subscribes to the provider's auth-state changes. Call Close on teardown.
func NewController(store credentials.Store, provider identity.Provider, resolver IdentityResolver, options ...Option) (*Controller, error) {
	if store == nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "[NewController] credential store is required")
	}
	if provider == nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "[NewController] identity provider is required")
	}
	if resolver == nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "[NewController] identity resolver is required")
	}

	c := &Controller{
		store:           store,
		provider:        provider,
		resolver:        resolver,
		adminRole:       "ADMIN",
		refreshInterval: 45 * time.Minute,
		logger:          zerolog.Nop(),
		nowTime:         time.Now,
		subscribers:     make(map[string]func(Snapshot)),
	}
	for _, opt := range options {
		opt(c)
	}

	c.unsubscribeProvider = provider.Subscribe(c.handleEvent)
	return c, nil
}

// Close detaches the controller from the provider's event stream.
func (c *Controller) Close() {
	if c.unsubscribeProvider != nil {
		c.unsubscribeProvider()
	}
}

// Login signs in against the identity provider, resolves the backend
// identity, and returns only once the session has fully settled into
// Authenticated or Unauthenticated. Callers can read the backend user id
// from the returned user immediately.
func (c *Controller) Login(ctx context.Context, email, password string) (*User, error) {
	cred, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		// credential errors surface verbatim
		return nil, err
	}
	return c.completeSignIn(ctx, cred)
}

// Logout clears the credential store before the remote sign-out so a slow
// or failed remote call never leaves stale tokens visible. A second call is
// a no-op.
func (c *Controller) Logout(ctx context.Context) error {
	c.lock.Lock()
	hadUser := c.user != nil
	if err := c.store.ClearAll(); err != nil {
		c.lock.Unlock()
		return apperrors.Wrapf(err, "[Controller.Logout] clear credential store")
	}
	c.user = nil
	c.state = StateUnauthenticated
	c.settledToken = ""
	c.settledErr = nil
	c.lock.Unlock()

	if !hadUser {
		return nil
	}
	c.notify()

	if err := c.provider.SignOut(ctx); err != nil {
		return apperrors.Wrapf(err, "[Controller.Logout] provider sign-out")
	}
	return nil
}

// Refresh mints a new access token for the current user and swaps it in
// place, leaving the identity untouched. Concurrent callers (the periodic
// timer and the authorization interceptor) share a single in-flight mint.
// Without a current user it is a no-op.
func (c *Controller) Refresh(ctx context.Context) error {
	c.lock.Lock()
	user := c.user.clone()
	c.lock.Unlock()
	if user == nil {
		return nil
	}

	_, err, _ := c.group.Do("refresh", func() (any, error) {
		cred, err := c.provider.Refresh(ctx, user.RefreshToken)
		if err != nil {
			return nil, apperrors.Wrapf(err, "[Controller.Refresh] provider refresh")
		}

		c.lock.Lock()
		if c.user == nil {
			// signed out while the mint was in flight
			c.lock.Unlock()
			return nil, nil
		}
		c.user.AccessToken = cred.AccessToken
		if cred.RefreshToken != "" {
			c.user.RefreshToken = cred.RefreshToken
		}
		c.settledToken = cred.AccessToken
		persistErr := c.persistLocked()
		c.lock.Unlock()

		if persistErr != nil {
			return nil, persistErr
		}
		c.notify()
		return nil, nil
	})
	return err
}

// Hydrate restores the session from the credential store. A complete shadow
// hydrates optimistically into Authenticated pending the next refresh
// cycle's re-validation; a partial one is discarded.
func (c *Controller) Hydrate() {
	userJSON, okUser := c.store.Read(credentials.SlotUser)
	accessToken, okAccess := c.store.Read(credentials.SlotAccessToken)
	refreshToken, okRefresh := c.store.Read(credentials.SlotRefreshToken)

	if !okUser || !okAccess || !okRefresh || userJSON == "" || accessToken == "" || refreshToken == "" {
		c.clearSession()
		return
	}

	var user User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		c.logger.Warn().Err(err).Msg("discarding unreadable stored credentials")
		c.clearSession()
		return
	}
	user.AccessToken = accessToken
	user.RefreshToken = refreshToken

	c.lock.Lock()
	c.user = &user
	c.state = StateAuthenticated
	c.settledToken = accessToken
	c.lock.Unlock()

	c.logTokenExpiry(accessToken)
	c.notify()
}

// RunPeriodicRefresh re-invokes Refresh on the configured interval to
// pre-empt token expiry, until ctx is cancelled. Overlap with a reactive
// refresh is safe: both run through the same singleflight group.
func (c *Controller) RunPeriodicRefresh(ctx context.Context) {
	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.IsAuthenticated() {
				continue
			}
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn().Err(err).Msg("periodic token refresh failed")
			}
		}
	}
}

// Snapshot returns a read-only copy of the current session.
func (c *Controller) Snapshot() Snapshot {
	c.lock.Lock()
	defer c.lock.Unlock()
	return Snapshot{State: c.state, User: c.user.clone()}
}

// IsAuthenticated reports whether the session holds a verified identity.
func (c *Controller) IsAuthenticated() bool {
	return c.Snapshot().IsAuthenticated()
}

// AccessToken returns the current bearer token, or "" without a session.
func (c *Controller) AccessToken() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.user == nil {
		return ""
	}
	return c.user.AccessToken
}

// Subscribe registers a read-only observer of session transitions. The
// returned function removes the observer.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.subLock.Lock()
	defer c.subLock.Unlock()

	id := uuid.New().String()
	c.subscribers[id] = fn

	return func() {
		c.subLock.Lock()
		defer c.subLock.Unlock()
		delete(c.subscribers, id)
	}
}

// completeSignIn runs backend identity resolution for a fresh credential
// and settles the session. The outcome is cached per access-token value so
// the provider event and the Login caller share one resolution.
func (c *Controller) completeSignIn(ctx context.Context, cred *identity.Credential) (*User, error) {
	if cred == nil || cred.AccessToken == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	c.lock.Lock()
	if cred.AccessToken == c.settledToken {
		user, err := c.user.clone(), c.settledErr
		c.lock.Unlock()
		if err != nil {
			return nil, err
		}
		return user, nil
	}
	c.state = StatePendingRoleCheck
	c.lock.Unlock()
	c.notify()

	resolved, err, _ := c.group.Do("resolve:"+cred.AccessToken, func() (any, error) {
		return c.resolver.ResolveIdentity(ctx, cred.AccessToken)
	})
	if err != nil {
		return nil, c.rejectSignIn(ctx, cred.AccessToken, apperrors.Wrapf(err, "[Controller.completeSignIn] identity resolution"))
	}

	ident := resolved.(*BackendIdentity)
	if ident.Role != c.adminRole {
		c.logger.Warn().Str("role", ident.Role).Msg("sign-in rejected: missing administrative role")
		return nil, c.rejectSignIn(ctx, cred.AccessToken, apperrors.ErrNotAdministrator)
	}

	user := &User{
		ID:           ident.ID,
		UID:          cred.User.UID,
		Name:         ident.Name,
		Email:        ident.Email,
		Role:         ident.Role,
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
	}
	if user.Name == "" {
		user.Name = cred.User.DisplayName
	}
	if user.Email == "" {
		user.Email = cred.User.Email
	}

	c.lock.Lock()
	c.user = user
	c.state = StateAuthenticated
	c.settledToken = cred.AccessToken
	c.settledErr = nil
	persistErr := c.persistLocked()
	returned := c.user.clone()
	c.lock.Unlock()

	if persistErr != nil {
		c.logger.Error().Err(persistErr).Msg("failed to persist session shadow")
	}
	c.notify()
	return returned, nil
}

// rejectSignIn records a failed resolution, tears the session down, and
// signs out of the provider. The failure is fatal to the session: no
// partial access is granted.
func (c *Controller) rejectSignIn(ctx context.Context, accessToken string, cause error) error {
	c.lock.Lock()
	c.settledToken = accessToken
	c.settledErr = cause
	_ = c.store.ClearAll()
	c.user = nil
	c.state = StateUnauthenticated
	c.lock.Unlock()
	c.notify()

	if err := c.provider.SignOut(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("provider sign-out after rejected sign-in failed")
	}
	return cause
}

func (c *Controller) handleEvent(event identity.Event) {
	switch event.Kind {
	case identity.EventSignedIn:
		if event.Credential == nil {
			return
		}
		if _, err := c.completeSignIn(context.Background(), event.Credential); err != nil {
			c.logger.Warn().Err(err).Msg("provider sign-in rejected")
		}
	case identity.EventSignedOut:
		c.clearSession()
	case identity.EventTokenRotated:
		c.rotateToken(event.AccessToken)
	}
}

// clearSession wipes the store and the in-memory session. It leaves the
// settled-resolution cache alone so a rejected sign-in stays rejected.
func (c *Controller) clearSession() {
	c.lock.Lock()
	_ = c.store.ClearAll()
	changed := c.user != nil || c.state != StateUnauthenticated
	c.user = nil
	c.state = StateUnauthenticated
	c.lock.Unlock()

	if changed {
		c.notify()
	}
}

// rotateToken swaps the access token in place on a provider-initiated
// rotation. Identity and refresh token are untouched.
func (c *Controller) rotateToken(accessToken string) {
	c.lock.Lock()
	if c.user == nil || accessToken == "" || c.user.AccessToken == accessToken {
		c.lock.Unlock()
		return
	}
	c.user.AccessToken = accessToken
	c.settledToken = accessToken
	persistErr := c.persistLocked()
	c.lock.Unlock()

	if persistErr != nil {
		c.logger.Error().Err(persistErr).Msg("failed to persist rotated token")
	}
	c.notify()
}

// persistLocked writes all three credential slots together. Callers hold
// c.lock with a non-nil user.
func (c *Controller) persistLocked() error {
	data, err := json.Marshal(c.user)
	if err != nil {
		return apperrors.Wrapf(err, "[Controller.persistLocked] marshal user")
	}
	if err := c.store.Write(credentials.SlotUser, string(data)); err != nil {
		return apperrors.Wrapf(err, "[Controller.persistLocked] write user slot")
	}
	if err := c.store.Write(credentials.SlotAccessToken, c.user.AccessToken); err != nil {
		return apperrors.Wrapf(err, "[Controller.persistLocked] write access token slot")
	}
	if err := c.store.Write(credentials.SlotRefreshToken, c.user.RefreshToken); err != nil {
		return apperrors.Wrapf(err, "[Controller.persistLocked] write refresh token slot")
	}
	return nil
}

func (c *Controller) notify() {
	snapshot := c.Snapshot()

	c.subLock.RLock()
	listeners := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		listeners = append(listeners, fn)
	}
	c.subLock.RUnlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// logTokenExpiry peeks at the stored token's exp claim, unverified, purely
// to flag an already-expired shadow in the logs.
func (c *Controller) logTokenExpiry(accessToken string) {
	token, _, err := jwtlib.NewParser().ParseUnverified(accessToken, jwtlib.MapClaims{})
	if err != nil {
		return
	}
	expiry, err := token.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return
	}
	if expiry.Before(c.nowTime()) {
		c.logger.Debug().Time("expiredAt", expiry.Time).Msg("stored access token already expired; next refresh will re-validate")
	}
}
