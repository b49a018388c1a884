package config

import (
	"strconv"
	"time"
)

type Backend struct{}

var _ BackendConfig = Backend{}

func (Backend) GetBackendURL() string {
	return GetEnv("BACKEND_URL", "http://localhost:3000/api")
}

func (Backend) GetHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("HTTP_TIMEOUT_SECONDS", "30"))
	if err != nil || seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}
