package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query := `
		INSERT INTO credentials (id, owner_id, label, site, secret_ciphertext, secret_nonce, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.Label, c.Site, c.SecretCiphertext, c.SecretNonce, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Credential, error) {
	query := `
		SELECT id, owner_id, label, site, created_at, updated_at FROM credentials
		WHERE owner_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select credentials: %w", err)
	}
	defer rows.Close()

	result := []*models.Credential{}
	for rows.Next() {
		var item models.Credential
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Label, &item.Site, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.CreatedAt, item.UpdatedAt = item.CreatedAt.UTC(), item.UpdatedAt.UTC()
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Credential, error) {
	query := `
		SELECT id, owner_id, label, site, secret_ciphertext, secret_nonce, created_at, updated_at FROM credentials
		WHERE id = $1
	`
	var c models.Credential
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.Label, &c.Site, &c.SecretCiphertext, &c.SecretNonce, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.CreatedAt, c.UpdatedAt = c.CreatedAt.UTC(), c.UpdatedAt.UTC()
	return &c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Credential) (bool, error) {
	query := `
		UPDATE credentials
		SET label = $1, site = $2, secret_ciphertext = $3, secret_nonce = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7
	`
	res, err := r.db.ExecContext(ctx, query,
		c.Label, c.Site, c.SecretCiphertext, c.SecretNonce, c.UpdatedAt, c.ID, c.OwnerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return dbx.RowsAffectedOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	query := `DELETE FROM credentials WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return dbx.RowsAffectedOne(res)
}
