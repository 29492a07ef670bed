package token

import (
	"fmt"
	"time"
)

// SecretSource supplies the signing secret and the token lifetime
type SecretSource interface {
	GetJwtSecret() string
	GetJwtExpiry() time.Duration
}

// NewAuthorityFromConfig builds the HS512 signer from the configured secret and wraps it in an Authority
func NewAuthorityFromConfig(cfg SecretSource, options ...AuthorityOption) (*Authority, error) {
	signer, err := NewHMACSigner(cfg.GetJwtSecret())
	if err != nil {
		return nil, fmt.Errorf("[NewAuthorityFromConfig] signer: %w", err)
	}
	authority, err := NewAuthority(signer, cfg.GetJwtExpiry(), options...)
	if err != nil {
		return nil, fmt.Errorf("[NewAuthorityFromConfig] %w", err)
	}
	return authority, nil
}
