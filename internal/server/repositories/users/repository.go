// Package users persists vault owners.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// Repository stores users. Email uniqueness is enforced by the store, so
// Create reports common.ErrDuplicateEmail even when two registrations race.
// Lookups return common.ErrorNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, emailNormalized string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
