package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTIssuer is the iss claim used when JWT_ISSUER is unset.
const DefaultJWTIssuer = "resume-analyzer"

const defaultJWTExpirationHours = 24

// ErrJWTSecretMissing is returned when JWT_SECRET is not set.
// Callers treat it as "authentication disabled".
var ErrJWTSecretMissing = errors.New("JWT_SECRET is required but not set")

// JWTConfig holds the signing settings for API bearer tokens.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// NewJWTConfig reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default 24)
// and JWT_ISSUER (default DefaultJWTIssuer).
func NewJWTConfig() (*JWTConfig, error) {
	c := &JWTConfig{
		Secret:          os.Getenv("JWT_SECRET"),
		ExpirationHours: defaultJWTExpirationHours,
		Issuer:          strings.TrimSpace(os.Getenv("JWT_ISSUER")),
	}

	if raw := strings.TrimSpace(os.Getenv("JWT_EXPIRATION_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS %q: %w", raw, err)
		}
		c.ExpirationHours = hours
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the secret and lifetime and fills in the default issuer.
func (c *JWTConfig) Validate() error {
	if c.Secret == "" {
		return ErrJWTSecretMissing
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	if c.Issuer == "" {
		c.Issuer = DefaultJWTIssuer
	}
	return nil
}

// Expiration is the token lifetime.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}
