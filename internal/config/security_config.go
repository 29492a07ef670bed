package config

import (
	"errors"
	"math"
	"strconv"
	"time"
)

const (
	jwtSecretEnvVar     = "JWT_SECRET"
	jwtExpirationEnvVar = "JWT_EXPIRATION_MS"

	defaultJwtExpirationMs = 86400000 // 24 hours
	maxJwtExpirationMs     = math.MaxInt64 / int64(time.Millisecond)
)

type SecurityConfig interface {
	GetJwtSecret() string
	GetJwtExpiry() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetJwtSecret() string {
	return GetEnv(jwtSecretEnvVar, "")
}

// GetJwtExpiry reads the token lifetime in milliseconds.
func (Security) GetJwtExpiry() time.Duration {
	ms := jwtExpirationMs()
	if ms <= 0 || ms > maxJwtExpirationMs {
		ms = defaultJwtExpirationMs
	}
	return time.Duration(ms) * time.Millisecond
}

func (s Security) Validate() error {
	if s.GetJwtSecret() == "" {
		return errors.New(jwtSecretEnvVar + " must be set")
	}
	if jwtExpirationMs() > maxJwtExpirationMs {
		return errors.New(jwtExpirationEnvVar + " is too large")
	}
	if s.GetJwtExpiry() < time.Second {
		return errors.New(jwtExpirationEnvVar + " must be at least one second")
	}
	return nil
}

// jwtExpirationMs is the raw setting, or the default when unset or unparsable
func jwtExpirationMs() int64 {
	ms, err := strconv.ParseInt(GetEnv(jwtExpirationEnvVar, strconv.Itoa(defaultJwtExpirationMs)), 10, 64)
	if err != nil {
		return defaultJwtExpirationMs
	}
	return ms
}
