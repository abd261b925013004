package tenant

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/core/tenancy"
	"github.com/jmoiron/sqlx"
)

// Directory answers the schema router's lookups with plain SQL against the
// public schema. It never touches a tenant schema.
type Directory struct {
	db *sqlx.DB
}

func NewDirectory(db *sqlx.DB) *Directory {
	return &Directory{db: db}
}

type directoryRow struct {
	ID     int64  `db:"id"`
	Schema string `db:"schema_name"`
}

const lookupQuery = `SELECT c.id, c.schema_name
FROM domains d
JOIN clients c ON c.id = d.client_id
WHERE d.client_id = $1 AND c.is_active = TRUE
LIMIT 1`

// Lookup resolves a tenant id through its domain mapping. It returns nil for
// unknown or inactive tenants.
func (d *Directory) Lookup(ctx context.Context, clientID int64) (*internal.TenantRef, error) {
	var row directoryRow
	if err := d.db.GetContext(ctx, &row, lookupQuery, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &internal.TenantRef{
		ID:     row.ID,
		Schema: row.Schema,
		Public: row.Schema == tenancy.PublicSchema,
	}, nil
}

const membershipQuery = `SELECT EXISTS (
	SELECT 1 FROM user_tenants ut
	JOIN users u ON u.id = ut.user_id
	WHERE ut.user_id = $1 AND ut.client_id = $2 AND u.is_active = TRUE
)`

// IsActiveMember reports whether an active user belongs to the tenant.
func (d *Directory) IsActiveMember(ctx context.Context, userID, clientID int64) (bool, error) {
	var ok bool
	if err := d.db.GetContext(ctx, &ok, membershipQuery, userID, clientID); err != nil {
		return false, err
	}
	return ok, nil
}

// TenantSchemas lists every provisioned tenant schema.
func (d *Directory) TenantSchemas(ctx context.Context) ([]string, error) {
	var schemas []string
	err := d.db.SelectContext(ctx, &schemas, `SELECT schema_name FROM clients WHERE schema_name <> $1 ORDER BY id`, tenancy.PublicSchema)
	return schemas, err
}

// Ping is used by readiness checks.
func (d *Directory) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}
