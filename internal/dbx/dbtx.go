// Package dbx holds the small database/sql abstraction shared by the
// repositories.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RowsAffectedOne reports whether res touched exactly one row. Zero rows is
// (false, nil); anything above one is an error.
func RowsAffectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &UnexpectedRowsError{N: n}
	}
}

// UnexpectedRowsError reports a write that touched more rows than its
// primary-key filter allows.
type UnexpectedRowsError struct {
	N int64
}

func (e *UnexpectedRowsError) Error() string {
	return fmt.Sprintf("unexpected rows affected: %d", e.N)
}
