package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/gophvault/internal/server/migrations"
	"github.com/pressly/goose/v3"
)

// gooseUp is a seam for testing the goose provider.
var gooseUp = func(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

func migrate(ctx context.Context, dialect goose.Dialect, dir string, db *sql.DB) error {
	fsys, err := migrations.FS(dir)
	if err != nil {
		return err
	}
	if err := gooseUp(ctx, dialect, db, fsys); err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}
