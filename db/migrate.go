package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// VersionTable is created in whichever schema is first on the connection's
// search_path, so every tenant schema tracks its own version.
const VersionTable = "schema_migrations"

func newProvider(conn *sql.DB, dir string) (*goose.Provider, error) {
	fsys, err := fs.Sub(Migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("open migrations %s: %w", dir, err)
	}
	store, err := database.NewStore(database.DialectPostgres, VersionTable)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider("", conn, fsys, goose.WithStore(store))
}

// Up applies every pending migration in dir and returns the applied count.
func Up(ctx context.Context, conn *sql.DB, dir string) (int, error) {
	p, err := newProvider(conn, dir)
	if err != nil {
		return 0, err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose up %s: %w", dir, err)
	}
	return len(results), nil
}

// Down rolls back the latest migration in dir.
func Down(ctx context.Context, conn *sql.DB, dir string) error {
	p, err := newProvider(conn, dir)
	if err != nil {
		return err
	}
	if _, err := p.Down(ctx); err != nil {
		return fmt.Errorf("goose down %s: %w", dir, err)
	}
	return nil
}
