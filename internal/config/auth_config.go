package config

import (
	"strconv"
	"time"
)

const (
	// ProviderModeOIDC authenticates against a hosted OIDC identity service.
	ProviderModeOIDC = "oidc"
	// ProviderModeLocal uses the embedded development identity provider.
	ProviderModeLocal = "local"
)

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetProviderMode() string {
	return GetEnv("IDP_MODE", ProviderModeLocal)
}

func (Auth) GetIdentityIssuer() string {
	return GetEnv("IDP_ISSUER", "")
}

func (Auth) GetIdentityClientID() string {
	return GetEnv("IDP_CLIENT_ID", "")
}

func (Auth) GetIdentityClientSecret() string {
	return GetEnv("IDP_CLIENT_SECRET", "")
}

func (Auth) GetLocalProviderSecret() string {
	return GetEnv("IDP_LOCAL_SECRET", "local-development-secret")
}

func (Auth) GetAdminRole() string {
	return GetEnv("ADMIN_ROLE", "ADMIN")
}

// GetRefreshInterval is how often the session pre-emptively refreshes its
// access token while a user is signed in.
func (Auth) GetRefreshInterval() time.Duration {
	minutes, err := strconv.Atoi(GetEnv("REFRESH_INTERVAL_MINUTES", "45"))
	if err != nil || minutes <= 0 {
		minutes = 45
	}
	return time.Duration(minutes) * time.Minute
}
