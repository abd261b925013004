package tenant

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tenantDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/tenant"
)

// Client is a tenant company. Its SchemaName equals its slug.
type Client struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Slug                string    `json:"slug"`
	OwnerID             *int64    `json:"owner"`
	LegalName           string    `json:"legal_name"`
	TaxNo               string    `json:"tax_no"`
	TaxOffice           string    `json:"tax_office"`
	Address             string    `json:"address"`
	InvoiceAddress      string    `json:"invoice_address"`
	City                string    `json:"city"`
	Country             string    `json:"country"`
	InvoiceEmailAddress string    `json:"invoice_email_address"`
	ShortName           string    `json:"short_name"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	SchemaName string `json:"-"`
	Domain     string `json:"-"`
}

func (c *Client) IsOwnedBy(userID int64) bool {
	return c.OwnerID != nil && *c.OwnerID == userID
}

// RetiredDomain is the domain a deactivated tenant is parked under, freeing
// the original for reuse.
func RetiredDomain(at time.Time, ownerID int64, domain string) string {
	return fmt.Sprintf("%d-%d-%s", at.Unix(), ownerID, domain)
}

// RestoredDomain reverses RetiredDomain. Domains that were never retired are
// returned unchanged.
func RestoredDomain(domain string) string {
	parts := strings.SplitN(domain, "-", 3)
	if len(parts) != 3 {
		return domain
	}
	if _, err := strconv.ParseInt(parts[0], 10, 64); err != nil {
		return domain
	}
	if _, err := strconv.ParseInt(parts[1], 10, 64); err != nil {
		return domain
	}
	return parts[2]
}

func ToDataModel(c *Client) *tenantDatamodel.Client {
	return &tenantDatamodel.Client{
		ID:                  c.ID,
		SchemaName:          c.SchemaName,
		Name:                c.Name,
		Description:         c.Description,
		Slug:                c.Slug,
		OwnerID:             c.OwnerID,
		IsActive:            c.IsActive,
		LegalName:           c.LegalName,
		TaxNo:               c.TaxNo,
		TaxOffice:           c.TaxOffice,
		Address:             c.Address,
		InvoiceAddress:      c.InvoiceAddress,
		City:                c.City,
		Country:             c.Country,
		InvoiceEmailAddress: c.InvoiceEmailAddress,
		ShortName:           c.ShortName,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func FromDataModel(c *tenantDatamodel.Client) *Client {
	return &Client{
		ID:                  c.ID,
		Name:                c.Name,
		Description:         c.Description,
		Slug:                c.Slug,
		OwnerID:             c.OwnerID,
		LegalName:           c.LegalName,
		TaxNo:               c.TaxNo,
		TaxOffice:           c.TaxOffice,
		Address:             c.Address,
		InvoiceAddress:      c.InvoiceAddress,
		City:                c.City,
		Country:             c.Country,
		InvoiceEmailAddress: c.InvoiceEmailAddress,
		ShortName:           c.ShortName,
		IsActive:            c.IsActive,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
		SchemaName:          c.SchemaName,
	}
}
