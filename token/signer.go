package token

import (
	"crypto/subtle"
	"encoding/base64"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer signs and verifies compact JWTs
type Signer interface {
	// Sign creates a signed JWT token from claims
	Sign(claims jwt.Claims) (string, error)

	// Verify recomputes the signature of signingString ("header.payload") and compares it
	// byte for byte with the presented base64url signature segment
	Verify(signingString, signature string) bool

	// GetSigningMethod returns the JWT signing method used
	GetSigningMethod() jwt.SigningMethod
}

// HMACsigner implements Signer using symmetric HMAC-SHA512
type HMACsigner struct {
	secret []byte
}

var _ Signer = (*HMACsigner)(nil)

// NewHMACSigner creates a new HMAC signer with the given secret
func NewHMACSigner(secret string) (*HMACsigner, error) {
	if secret == "" {
		return nil, errors.New("HMAC signing secret must not be empty")
	}
	return &HMACsigner{
		secret: []byte(secret),
	}, nil
}

func (h *HMACsigner) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signedToken, nil
}

func (h *HMACsigner) Verify(signingString, signature string) bool {
	expected, err := jwt.SigningMethodHS512.Sign(signingString, h.secret)
	if err != nil {
		return false
	}
	encoded := base64.RawURLEncoding.EncodeToString(expected)
	return subtle.ConstantTimeCompare([]byte(encoded), []byte(signature)) == 1
}

func (h *HMACsigner) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodHS512
}
