package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// SQLiteRepository implements Repository on modernc.org/sqlite with
// timestamps kept as unix nanoseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query := `
		INSERT INTO credentials (id, owner_id, label, site, secret_ciphertext, secret_nonce, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.Label, c.Site, c.SecretCiphertext, c.SecretNonce,
		c.CreatedAt.UnixNano(), c.UpdatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Credential, error) {
	query := `
		SELECT id, owner_id, label, site, created_at, updated_at FROM credentials
		WHERE owner_id = ?
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select credentials: %w", err)
	}
	defer rows.Close()

	result := []*models.Credential{}
	for rows.Next() {
		var (
			item                 models.Credential
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Label, &item.Site, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		item.CreatedAt, item.UpdatedAt = fromNanos(createdAt), fromNanos(updatedAt)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Credential, error) {
	query := `
		SELECT id, owner_id, label, site, secret_ciphertext, secret_nonce, created_at, updated_at FROM credentials
		WHERE id = ?
	`
	var (
		c                    models.Credential
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.Label, &c.Site, &c.SecretCiphertext, &c.SecretNonce, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.CreatedAt, c.UpdatedAt = fromNanos(createdAt), fromNanos(updatedAt)
	return &c, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, c *models.Credential) (bool, error) {
	query := `
		UPDATE credentials
		SET label = ?, site = ?, secret_ciphertext = ?, secret_nonce = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		c.Label, c.Site, c.SecretCiphertext, c.SecretNonce, c.UpdatedAt.UnixNano(), c.ID, c.OwnerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return dbx.RowsAffectedOne(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return dbx.RowsAffectedOne(res)
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
