package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/metrics"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/google/uuid"
)

// CredentialInput carries a new or replacement credential.
type CredentialInput struct {
	Label  string `json:"label" validate:"required,max=128"`
	Site   string `json:"site" validate:"max=512"`
	Secret string `json:"secret" validate:"required,max=4096"`
}

// DecryptedCredential is a credential together with its plaintext secret.
type DecryptedCredential struct {
	ID        string
	Label     string
	Site      string
	Secret    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddCredential encrypts in.Secret and stores it under the token's subject.
func (v *Vault) AddCredential(ctx context.Context, token string, in CredentialInput) (*models.Credential, error) {
	ownerID, err := v.authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := v.validateInput(in); err != nil {
		return nil, err
	}

	now := v.timestamp()
	c := &models.Credential{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Label:     in.Label,
		Site:      in.Site,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := v.seal(ctx, c, in.Secret); err != nil {
		return nil, err
	}

	if _, err := v.repomanager.Credentials(v.db).Create(ctx, c); err != nil {
		return nil, v.internal(ctx, "credential insert failed", err)
	}

	v.logger.Info(ctx, "credential added", "user_id", ownerID, "credential_id", c.ID)
	return c, nil
}

// ListCredentials returns the metadata of every credential the subject owns.
func (v *Vault) ListCredentials(ctx context.Context, token string) ([]*models.Credential, error) {
	ownerID, err := v.authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	list, err := v.repomanager.Credentials(v.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, v.internal(ctx, "credential list failed", err)
	}
	return list, nil
}

// GetCredential decrypts one credential. Missing ids, malformed ids and ids
// owned by someone else are all common.ErrorNotFound.
func (v *Vault) GetCredential(ctx context.Context, token, id string) (*DecryptedCredential, error) {
	ownerID, err := v.authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	c, err := v.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	plaintext, err := v.cipher.Decrypt(c.SecretCiphertext, c.SecretNonce, credentialAAD(c.OwnerID, c.ID))
	if err != nil {
		v.observer.ObserveCrypto("decrypt", metrics.OutcomeError)
		v.logger.Error(ctx, "credential failed to decrypt", "credential_id", c.ID, "error", err)
		return nil, common.ErrCredentialCorrupted
	}
	defer common.WipeByteArray(plaintext)
	v.observer.ObserveCrypto("decrypt", metrics.OutcomeSuccess)

	return &DecryptedCredential{
		ID:        c.ID,
		Label:     c.Label,
		Site:      c.Site,
		Secret:    string(plaintext),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, nil
}

// UpdateCredential replaces the label, site and secret of an owned credential.
func (v *Vault) UpdateCredential(ctx context.Context, token, id string, in CredentialInput) (*models.Credential, error) {
	ownerID, err := v.authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := v.validateInput(in); err != nil {
		return nil, err
	}

	c, err := v.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	c.Label, c.Site, c.UpdatedAt = in.Label, in.Site, v.timestamp()
	if err := v.seal(ctx, c, in.Secret); err != nil {
		return nil, err
	}

	ok, err := v.repomanager.Credentials(v.db).Update(ctx, c)
	if err != nil {
		return nil, v.internal(ctx, "credential update failed", err)
	}
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

// DeleteCredential removes an owned credential.
func (v *Vault) DeleteCredential(ctx context.Context, token, id string) error {
	ownerID, err := v.authorize(ctx, token)
	if err != nil {
		return err
	}

	canonical, ok := canonicalID(id)
	if !ok {
		return common.ErrorNotFound
	}

	deleted, err := v.repomanager.Credentials(v.db).Delete(ctx, canonical, ownerID)
	if err != nil {
		return v.internal(ctx, "credential delete failed", err)
	}
	if !deleted {
		return common.ErrorNotFound
	}

	v.logger.Info(ctx, "credential deleted", "user_id", ownerID, "credential_id", canonical)
	return nil
}

// owned loads credential id and checks it belongs to ownerID.
func (v *Vault) owned(ctx context.Context, ownerID, id string) (*models.Credential, error) {
	canonical, ok := canonicalID(id)
	if !ok {
		return nil, common.ErrorNotFound
	}

	c, err := v.repomanager.Credentials(v.db).Get(ctx, canonical)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, v.internal(ctx, "credential lookup failed", err)
	}
	if c.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

// seal encrypts secret into c, bound to c's owner and id.
func (v *Vault) seal(ctx context.Context, c *models.Credential, secret string) error {
	ciphertext, nonce, err := v.cipher.Encrypt([]byte(secret), credentialAAD(c.OwnerID, c.ID))
	if err != nil {
		v.observer.ObserveCrypto("encrypt", metrics.OutcomeError)
		return v.internal(ctx, "credential encryption failed", err)
	}
	v.observer.ObserveCrypto("encrypt", metrics.OutcomeSuccess)
	c.SecretCiphertext, c.SecretNonce = ciphertext, nonce
	return nil
}

func credentialAAD(ownerID, credentialID string) []byte {
	return []byte(ownerID + "/" + credentialID)
}

func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
