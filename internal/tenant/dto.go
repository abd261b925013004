package tenant

type CreateClientDTO struct {
	Name                string `json:"name" validate:"required,max=255"`
	Description         string `json:"description"`
	Slug                string `json:"slug" validate:"required,max=63,slug"`
	LegalName           string `json:"legal_name" validate:"max=255"`
	TaxNo               string `json:"tax_no" validate:"max=50"`
	TaxOffice           string `json:"tax_office" validate:"max=100"`
	Address             string `json:"address"`
	InvoiceAddress      string `json:"invoice_address"`
	City                string `json:"city" validate:"max=100"`
	Country             string `json:"country" validate:"max=100"`
	InvoiceEmailAddress string `json:"invoice_email_address" validate:"omitempty,email"`
	ShortName           string `json:"short_name" validate:"max=50"`
}

// UpdateClientDTO is a partial update. Name, Slug, Owner and IsActive are
// accepted on the wire but never applied.
type UpdateClientDTO struct {
	Name                *string `json:"name"`
	Slug                *string `json:"slug"`
	Owner               *int64  `json:"owner"`
	IsActive            *bool   `json:"is_active"`
	Description         *string `json:"description"`
	LegalName           *string `json:"legal_name" validate:"omitempty,max=255"`
	TaxNo               *string `json:"tax_no" validate:"omitempty,max=50"`
	TaxOffice           *string `json:"tax_office" validate:"omitempty,max=100"`
	Address             *string `json:"address"`
	InvoiceAddress      *string `json:"invoice_address"`
	City                *string `json:"city" validate:"omitempty,max=100"`
	Country             *string `json:"country" validate:"omitempty,max=100"`
	InvoiceEmailAddress *string `json:"invoice_email_address" validate:"omitempty,email"`
	ShortName           *string `json:"short_name" validate:"omitempty,max=50"`
}

func (d UpdateClientDTO) apply(c *Client) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Description, d.Description)
	set(&c.LegalName, d.LegalName)
	set(&c.TaxNo, d.TaxNo)
	set(&c.TaxOffice, d.TaxOffice)
	set(&c.Address, d.Address)
	set(&c.InvoiceAddress, d.InvoiceAddress)
	set(&c.City, d.City)
	set(&c.Country, d.Country)
	set(&c.InvoiceEmailAddress, d.InvoiceEmailAddress)
	set(&c.ShortName, d.ShortName)
}
