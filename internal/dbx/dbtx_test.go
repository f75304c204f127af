package dbx

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

func TestRowsAffectedOne(t *testing.T) {
	ok, err := RowsAffectedOne(sqlmock.NewResult(0, 1))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = RowsAffectedOne(sqlmock.NewResult(0, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = RowsAffectedOne(sqlmock.NewResult(0, 3))
	var ure *UnexpectedRowsError
	require.ErrorAs(t, err, &ure)
	assert.Equal(t, int64(3), ure.N)
	assert.Equal(t, "unexpected rows affected: 3", err.Error())
}

func TestRowsAffectedOne_ResultError(t *testing.T) {
	boom := errors.New("boom")
	_, err := RowsAffectedOne(sqlmock.NewErrorResult(boom))
	assert.ErrorIs(t, err, boom)
}
