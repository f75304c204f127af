// Package services contains server-side business logic. Vault is the single
// entry point used by every transport: it registers and authenticates users
// and stores their credentials encrypted at rest.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// SecretCipher encrypts credential secrets (see cryptox.SecretCipher).
type SecretCipher interface {
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// PasswordHasher hashes and verifies login passwords (see cryptox.PasswordHasher).
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, record string) (bool, error)
}

// TokenIssuer issues and validates session tokens (see auth.TokenIssuer).
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
	Validate(token string) (string, error)
}

// Observer receives outcome counters; *metrics.Metrics satisfies it.
type Observer interface {
	ObserveAuth(outcome string)
	ObserveRegistration(outcome string)
	ObserveCrypto(operation, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveAuth(string)           {}
func (nopObserver) ObserveRegistration(string)   {}
func (nopObserver) ObserveCrypto(string, string) {}

// Vault owns user accounts and their encrypted credentials. Every
// credential operation is scoped to the owner named by the session token.
type Vault struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      SecretCipher
	hasher      PasswordHasher
	tokens      TokenIssuer
	validate    *validator.Validate
	logger      logging.Logger
	observer    Observer
	now         func() time.Time

	// dummyHash is verified against when the email is unknown, so a miss
	// costs as much as a wrong password.
	dummyHash func() (string, error)
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the logger for internal failures. The default discards.
func WithLogger(l logging.Logger) Option {
	return func(v *Vault) { v.logger = l }
}

// WithObserver sends operation outcomes to o, usually metrics.
func WithObserver(o Observer) Option {
	return func(v *Vault) { v.observer = o }
}

// WithClock replaces time.Now for assigned timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) { v.now = now }
}

// NewVault wires the vault to its store and crypto primitives. The key
// material lives inside cipher and tokens and is never touched here.
func NewVault(db *sql.DB, m repomanager.RepositoryManager, cipher SecretCipher, hasher PasswordHasher,
	tokens TokenIssuer, opts ...Option) *Vault {
	v := &Vault{
		db:          db,
		repomanager: m,
		cipher:      cipher,
		hasher:      hasher,
		tokens:      tokens,
		validate:    newValidator(),
		logger:      logging.Nop{},
		observer:    nopObserver{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.dummyHash = sync.OnceValues(func() (string, error) {
		pw, err := common.MakeRandHexString(16)
		if err != nil {
			return "", err
		}
		return v.hasher.Hash(context.Background(), pw)
	})
	return v
}

// authorize validates token and returns the subject. Failures are
// common.ErrorUnauthorized wrapping the precise token error.
func (v *Vault) authorize(ctx context.Context, token string) (string, error) {
	userID, err := v.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			v.logger.Debug(ctx, "expired token presented")
		} else {
			v.logger.Warn(ctx, "invalid token presented", "error", err)
		}
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return userID, nil
}

// internal logs err and hides it behind common.ErrorInternal. Context
// cancellation is passed through unchanged.
func (v *Vault) internal(ctx context.Context, msg string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	v.logger.Error(ctx, msg, "error", err)
	return common.ErrorInternal
}

func (v *Vault) timestamp() time.Time {
	return v.now().UTC()
}
