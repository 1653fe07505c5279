package jwt

import (
	"errors"
	"time"

	"github.com/yourorg/pdf-combine-kit/pkg/logging"
)

// Config holds JWT configuration
type Config struct {
	SecretKey       string
	TokenExpiryMins int
}

// NewJWTServiceFromConfig creates a new JWT service from configuration
func NewJWTServiceFromConfig(cfg Config, logger logging.Logger) (*JWTService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt secret key is required")
	}

	// Set default expiry time if not configured
	tokenTTL := time.Duration(cfg.TokenExpiryMins) * time.Minute
	if tokenTTL == 0 {
		tokenTTL = 60 * time.Minute // Default 1 hour
	}

	return NewJWTService(cfg.SecretKey, tokenTTL, logger)
}
