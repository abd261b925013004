// Package db embeds the goose migrations. Public migrations run once against
// the shared schema; tenant migrations run inside every tenant schema.
package db

import "embed"

//go:embed migrations/public/*.sql migrations/tenant/*.sql
var Migrations embed.FS

const (
	PublicDir = "migrations/public"
	TenantDir = "migrations/tenant"
)
