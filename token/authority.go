package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/users"
)

// Token is an issued bearer credential.
type Token struct {
	Value     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Authority issues and verifies the bearer tokens handed out at login.
// Tokens are stateless: validity depends only on the signature and the embedded expiry.
type Authority struct {
	signer   Signer
	lifetime time.Duration
	nowFunc  func() time.Time
}

type AuthorityOption func(*Authority)

// WithNowFunc sets the clock (primarily for testing)
func WithNowFunc(now func() time.Time) AuthorityOption {
	return func(a *Authority) {
		a.nowFunc = now
	}
}

// NewAuthority creates an Authority. The lifetime is truncated to whole seconds, the
// resolution of the exp claim, and must be at least one second.
func NewAuthority(signer Signer, lifetime time.Duration, options ...AuthorityOption) (*Authority, error) {
	if signer == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewAuthority] signer is required")
	}
	lifetime = lifetime.Truncate(time.Second)
	if lifetime < time.Second {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewAuthority] token lifetime must be at least one second")
	}

	a := &Authority{
		signer:   signer,
		lifetime: lifetime,
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// Lifetime is how long issued tokens stay valid.
func (a *Authority) Lifetime() time.Duration {
	return a.lifetime
}

// Issue builds and signs a token whose subject is the user's login handle.
func (a *Authority) Issue(user *users.User) (*Token, error) {
	if user == nil || user.Email == "" {
		return nil, errors.Wrapf(errors.ErrInternal, "[Authority.Issue] identity has no login handle")
	}

	issuedAt := a.nowFunc().Truncate(time.Second)
	expiresAt := issuedAt.Add(a.lifetime)

	claims := jwt.RegisteredClaims{
		Subject:   user.Email,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	value, err := a.signer.Sign(claims)
	if err != nil {
		return nil, errors.Wrapf(err, "[Authority.Issue] sign")
	}

	return &Token{
		Value:     value,
		Subject:   user.Email,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks a presented token and returns its subject.
// Failures are ErrMalformedToken, ErrInvalidSignature or ErrTokenExpired, in that order of precedence.
func (a *Authority) Verify(rawToken string) (string, error) {
	tok, err := a.Decode(rawToken)
	if err != nil {
		return "", err
	}
	return tok.Subject, nil
}

// Decode is Verify returning the whole decoded token.
func (a *Authority) Decode(rawToken string) (*Token, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil, errors.Wrapf(errors.ErrMalformedToken, "expected 3 segments, got %d", len(parts))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(rawToken, claims)
	// an unknown or absent alg still leaves header and claims decoded
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, errors.Wrapf(errors.ErrMalformedToken, "%v", err)
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, errors.Wrapf(errors.ErrMalformedToken, "missing subject or expiry claim")
	}

	if err != nil || parsed.Method == nil || parsed.Method.Alg() != a.signer.GetSigningMethod().Alg() {
		return nil, errors.Wrapf(errors.ErrInvalidSignature, "unexpected signing method %v", parsed.Header["alg"])
	}
	if !a.signer.Verify(parts[0]+"."+parts[1], parts[2]) {
		return nil, errors.ErrInvalidSignature
	}

	expiresAt := claims.ExpiresAt.Time
	if !a.nowFunc().Before(expiresAt) {
		return nil, errors.Wrapf(errors.ErrTokenExpired, "expired at %s", expiresAt.UTC().Format(time.RFC3339))
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return &Token{
		Value:     rawToken,
		Subject:   claims.Subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
