package tenant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hrm/db"
	"github.com/frahmantamala/hrm/internal/core/tenancy"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// SchemaProvisioner creates tenant schemas and runs the tenant migrations in
// them. Migrations run over a dedicated connection whose search_path is fixed
// by a runtime parameter, so the shared pool is never re-pointed.
type SchemaProvisioner struct {
	db      *sqlx.DB
	connCfg *pgx.ConnConfig
	logger  *slog.Logger
}

func NewSchemaProvisioner(sqlxDB *sqlx.DB, dsn string, logger *slog.Logger) (*SchemaProvisioner, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	return &SchemaProvisioner{db: sqlxDB, connCfg: cfg, logger: logger}, nil
}

func (p *SchemaProvisioner) Provision(ctx context.Context, schema string) error {
	if !tenancy.ValidSchemaName(schema) {
		return fmt.Errorf("invalid schema name %q", schema)
	}
	if _, err := p.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+tenancy.QuoteIdent(schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}
	applied, err := p.Migrate(ctx, schema)
	if err != nil {
		return err
	}
	p.logger.Info("tenant schema provisioned", "schema", schema, "migrations_applied", applied)
	return nil
}

// Migrate applies pending tenant migrations to an existing schema.
func (p *SchemaProvisioner) Migrate(ctx context.Context, schema string) (int, error) {
	conn := p.open(schema)
	defer conn.Close()
	return db.Up(ctx, conn.DB, db.TenantDir)
}

// Rollback reverts the latest tenant migration in schema.
func (p *SchemaProvisioner) Rollback(ctx context.Context, schema string) error {
	conn := p.open(schema)
	defer conn.Close()
	return db.Down(ctx, conn.DB, db.TenantDir)
}

func (p *SchemaProvisioner) open(schema string) *sqlx.DB {
	cfg := p.connCfg.Copy()
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = map[string]string{}
	}
	cfg.RuntimeParams["search_path"] = tenancy.SearchPath(schema)
	return sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")
}
