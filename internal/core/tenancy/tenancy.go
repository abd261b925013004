// Package tenancy binds database work to the tenant schema carried by a
// request context.
//
// Every tenant-scoped unit of work runs in its own transaction whose
// search_path is set with set_config(..., true). The setting is local to the
// transaction, so a pooled connection always returns to the public schema.
package tenancy

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/frahmantamala/hrm/internal"
	"gorm.io/gorm"
)

const PublicSchema = "public"

var ErrNoTenant = errors.New("no tenant bound to context")

var schemaPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,62}$`)

// ValidSchemaName reports whether name can be used as a tenant schema.
func ValidSchemaName(name string) bool {
	return schemaPattern.MatchString(name) && name != PublicSchema && !strings.HasPrefix(name, "pg_")
}

// QuoteIdent quotes a postgres identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SearchPath renders the search_path for schema. Tenant schemas fall back to
// public so shared tables such as users stay reachable.
func SearchPath(schema string) string {
	if schema == "" || schema == PublicSchema {
		return PublicSchema
	}
	return QuoteIdent(schema) + ", " + PublicSchema
}

// Bind sets the search_path for the current transaction.
func Bind(tx *gorm.DB, schema string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT set_config('search_path', ?, true)", SearchPath(schema)).Error
}

// Run executes fn in a transaction bound to the tenant carried by ctx.
func Run(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	ref, ok := internal.TenantFromContext(ctx)
	if !ok {
		return ErrNoTenant
	}
	return RunIn(ctx, db, ref.Schema, fn)
}

// RunIn executes fn in a transaction bound to an explicit schema.
func RunIn(ctx context.Context, db *gorm.DB, schema string, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := Bind(tx, schema); err != nil {
			return err
		}
		return fn(tx)
	})
}
