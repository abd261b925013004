package tenant

import (
	"encoding/json"
	"time"
)

type Client struct {
	ID                  int64           `gorm:"primaryKey"`
	SchemaName          string          `gorm:"column:schema_name;uniqueIndex;not null"`
	Name                string          `gorm:"column:name;not null"`
	Description         string          `gorm:"column:description"`
	Slug                string          `gorm:"column:slug;uniqueIndex;not null"`
	OwnerID             *int64          `gorm:"column:owner_id"`
	IsActive            bool            `gorm:"column:is_active;not null"`
	LegalName           string          `gorm:"column:legal_name"`
	TaxNo               string          `gorm:"column:tax_no"`
	TaxOffice           string          `gorm:"column:tax_office"`
	Address             string          `gorm:"column:address"`
	InvoiceAddress      string          `gorm:"column:invoice_address"`
	City                string          `gorm:"column:city"`
	Country             string          `gorm:"column:country"`
	InvoiceEmailAddress string          `gorm:"column:invoice_email_address"`
	ShortName           string          `gorm:"column:short_name"`
	Attributes          json.RawMessage `gorm:"column:attributes;type:jsonb"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Client) TableName() string {
	return "clients"
}

// Domain maps the routable identifier of a tenant. It is renamed when the
// tenant is deactivated so the slug can be reused.
type Domain struct {
	ID        int64     `gorm:"primaryKey"`
	Domain    string    `gorm:"column:domain;uniqueIndex;not null"`
	ClientID  int64     `gorm:"column:client_id;uniqueIndex;not null"`
	IsPrimary bool      `gorm:"column:is_primary;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Domain) TableName() string {
	return "domains"
}
