// Package credentials persists encrypted vault entries.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// Repository stores credentials. Only ciphertext and nonce are ever written
// for the secret. Update and Delete are scoped by owner and report whether a
// row matched.
type Repository interface {
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)
	// ListByOwner returns metadata only; SecretCiphertext and SecretNonce
	// are left empty.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Credential, error)
	Get(ctx context.Context, id string) (*models.Credential, error)
	Update(ctx context.Context, c *models.Credential) (bool, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}
