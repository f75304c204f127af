package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository on modernc.org/sqlite. Timestamps
// are stored as unix nanoseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, email, email_normalized, password_hash, first_name, last_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.EmailNormalized, user.PasswordHash, user.FirstName, user.LastName,
		user.CreatedAt.UnixNano())
	if err != nil {
		if isUniqueViolation(err, "users.email_normalized") {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, emailNormalized string) (*models.User, error) {
	query :=
		`SELECT id, email, email_normalized, password_hash, first_name, last_name, created_at FROM users
		 WHERE email_normalized = ?
		 `

	return r.getOne(ctx, query, emailNormalized)
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, email, email_normalized, password_hash, first_name, last_name, created_at FROM users
		 WHERE id = ?
		 `

	return r.getOne(ctx, query, id)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.EmailNormalized, &user.PasswordHash,
		&user.FirstName, &user.LastName, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()

	return user, nil
}

// isUniqueViolation matches a UNIQUE constraint failure on column
// (formatted "table.column" as sqlite reports it).
func isUniqueViolation(err error, column string) bool {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	code := sqlErr.Code()
	if code != sqlite3.SQLITE_CONSTRAINT_UNIQUE && code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return false
	}
	return strings.Contains(sqlErr.Error(), column)
}
