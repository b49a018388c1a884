package config

import "time"

type Config interface {
	EnvConfig
	AuthConfig
	BackendConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type AuthConfig interface {
	GetProviderMode() string
	GetIdentityIssuer() string
	GetIdentityClientID() string
	GetIdentityClientSecret() string
	GetLocalProviderSecret() string
	GetAdminRole() string
	GetRefreshInterval() time.Duration
}

type BackendConfig interface {
	GetBackendURL() string
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Auth
	Backend
}

func New() Config {
	return mainConfig{}
}
