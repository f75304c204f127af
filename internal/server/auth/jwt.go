// Package auth issues and validates the stateless session tokens handed
// out after a successful login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the registered JWT claims; the user id travels in Subject.
type Claims struct {
	jwt.RegisteredClaims
}

// MinSigningKeySize is the shortest HMAC key NewTokenIssuer accepts.
const MinSigningKeySize = 16

var signingMethods = map[string]jwt.SigningMethod{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// TokenIssuer signs tokens with an HMAC key and validates them.
// Its fields are set once by NewTokenIssuer and never mutated.
type TokenIssuer struct {
	key    []byte
	method jwt.SigningMethod
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// IssuerOption customises a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) { i.now = now }
}

// WithLeeway tolerates clock skew of d when checking expiry.
func WithLeeway(d time.Duration) IssuerOption {
	return func(i *TokenIssuer) { i.leeway = d }
}

// NewTokenIssuer builds an issuer for one of HS256, HS384 or HS512.
// The key is copied.
func NewTokenIssuer(key []byte, algorithm string, ttl time.Duration, opts ...IssuerOption) (*TokenIssuer, error) {
	method, ok := signingMethods[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if len(key) < MinSigningKeySize {
		return nil, fmt.Errorf("signing key must be at least %d bytes", MinSigningKeySize)
	}
	if ttl <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	i := &TokenIssuer{
		key:    append([]byte(nil), key...),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// TTL is the lifetime given to new tokens.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue returns a signed token for userID and its expiry.
func (i *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("empty subject")
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)

	token := jwt.NewWithClaims(i.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt.Truncate(time.Second), nil
}

// Validate checks the signature and then the expiry of tokenString and
// returns the user id it was issued for.
//
// A bad signature, unexpected algorithm or malformed token yields
// common.ErrInvalidToken. A correctly signed token whose expiry has passed
// yields common.ErrTokenExpired.
func (i *TokenIssuer) Validate(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.key, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
		jwt.WithLeeway(i.leeway),
	)
	if err != nil {
		// jwt verifies the signature before any claim, so an expiry error
		// implies the signature was good.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
