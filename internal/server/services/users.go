package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/metrics"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/google/uuid"
)

// RegisterInput is the registration form. FirstName and LastName are
// optional profile fields.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	UserID      string
}

// Register creates a user. The returned copy never carries the password hash.
func (v *Vault) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := v.validateInput(in); err != nil {
		return nil, err
	}

	normalized := NormalizeEmail(in.Email)
	repo := v.repomanager.Users(v.db)

	_, err := repo.GetUserByEmail(ctx, normalized)
	switch {
	case err == nil:
		v.observer.ObserveRegistration(metrics.OutcomeFailure)
		return nil, common.ErrDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		return nil, v.internal(ctx, "user lookup failed", err)
	}

	hash, err := v.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, v.internal(ctx, "password hashing failed", err)
	}

	user := &models.User{
		ID:              uuid.NewString(),
		Email:           in.Email,
		EmailNormalized: normalized,
		PasswordHash:    hash,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		CreatedAt:       v.timestamp(),
	}

	// the unique index decides a race with a concurrent registration
	if _, err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			v.observer.ObserveRegistration(metrics.OutcomeFailure)
			return nil, common.ErrDuplicateEmail
		}
		return nil, v.internal(ctx, "user insert failed", err)
	}

	v.observer.ObserveRegistration(metrics.OutcomeSuccess)
	v.logger.Info(ctx, "user registered", "user_id", user.ID)

	return publicUser(user), nil
}

// Authenticate checks email and password and issues a session token.
// Unknown email and wrong password both yield common.ErrorUnauthorized.
func (v *Vault) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := v.repomanager.Users(v.db).GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			v.observer.ObserveAuth(metrics.OutcomeError)
			return nil, v.internal(ctx, "user lookup failed", err)
		}
		if err := v.burnVerify(ctx, password); err != nil {
			return nil, err
		}
		v.observer.ObserveAuth(metrics.OutcomeFailure)
		return nil, common.ErrorUnauthorized
	}

	ok, err := v.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		v.observer.ObserveAuth(metrics.OutcomeError)
		return nil, v.internal(ctx, "stored password hash unusable", err)
	}
	if !ok {
		v.observer.ObserveAuth(metrics.OutcomeFailure)
		return nil, common.ErrorUnauthorized
	}

	token, expiresAt, err := v.tokens.Issue(user.ID)
	if err != nil {
		v.observer.ObserveAuth(metrics.OutcomeError)
		return nil, v.internal(ctx, "token issue failed", err)
	}

	v.observer.ObserveAuth(metrics.OutcomeSuccess)
	return &Session{
		AccessToken: token,
		TokenType:   common.TokenTypeBearer,
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
	}, nil
}

// burnVerify runs a verification against a throwaway record.
func (v *Vault) burnVerify(ctx context.Context, password string) error {
	record, err := v.dummyHash()
	if err != nil {
		return v.internal(ctx, "dummy hash unavailable", err)
	}
	if _, err := v.hasher.Verify(ctx, password, record); err != nil {
		return v.internal(ctx, "dummy verify failed", err)
	}
	return nil
}

// Profile returns the user the token was issued for.
func (v *Vault) Profile(ctx context.Context, token string) (*models.User, error) {
	userID, err := v.authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := v.repomanager.Users(v.db).GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, v.internal(ctx, "user lookup failed", err)
	}
	return publicUser(user), nil
}

func publicUser(u *models.User) *models.User {
	out := *u
	out.PasswordHash = ""
	return &out
}
