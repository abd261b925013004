package postgres

import (
	"context"
	"errors"

	tenantDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/tenant"
	userDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/user"
	"github.com/frahmantamala/hrm/internal/core/tenancy"
	"github.com/frahmantamala/hrm/internal/tenant"
	"github.com/frahmantamala/hrm/internal/transport"
	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&tenantDatamodel.Client{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *ClientRepository) CountMemberships(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.Membership{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Create inserts the client, its primary domain and the owner membership.
func (r *ClientRepository) Create(ctx context.Context, c *tenant.Client) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dm := tenant.ToDataModel(c)
		if err := tx.Create(dm).Error; err != nil {
			return err
		}
		domain := &tenantDatamodel.Domain{Domain: c.Domain, ClientID: dm.ID, IsPrimary: true}
		if err := tx.Create(domain).Error; err != nil {
			return err
		}
		if c.OwnerID != nil {
			if err := tx.Create(&userDatamodel.Membership{UserID: *c.OwnerID, ClientID: dm.ID}).Error; err != nil {
				return err
			}
		}
		c.ID = dm.ID
		c.CreatedAt = dm.CreatedAt
		c.UpdatedAt = dm.UpdatedAt
		return nil
	})
}

// Remove deletes a client row outright. Domain and memberships cascade.
func (r *ClientRepository) Remove(ctx context.Context, clientID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", clientID).Delete(&userDatamodel.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", clientID).Delete(&tenantDatamodel.Domain{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tenantDatamodel.Client{}, clientID).Error
	})
}

func (r *ClientRepository) GetByID(ctx context.Context, clientID int64) (*tenant.Client, error) {
	var dm tenantDatamodel.Client
	err := r.db.WithContext(ctx).Where("id = ?", clientID).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	c := tenant.FromDataModel(&dm)

	var domain tenantDatamodel.Domain
	err = r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&domain).Error
	switch {
	case err == nil:
		c.Domain = domain.Domain
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return c, nil
}

func (r *ClientRepository) IsMember(ctx context.Context, userID, clientID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.Membership{}).
		Where("user_id = ? AND client_id = ?", userID, clientID).
		Count(&count).Error
	return count > 0, err
}

func (r *ClientRepository) ListForUser(ctx context.Context, userID int64, page transport.PageRequest) ([]*tenant.Client, int64, error) {
	base := r.db.WithContext(ctx).Model(&tenantDatamodel.Client{}).
		Joins("JOIN user_tenants ut ON ut.client_id = clients.id").
		Where("ut.user_id = ? AND clients.schema_name <> ?", userID, tenancy.PublicSchema)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []tenantDatamodel.Client
	err := base.Session(&gorm.Session{}).
		Order("clients.created_at DESC, clients.id DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]*tenant.Client, 0, len(rows))
	for i := range rows {
		out = append(out, tenant.FromDataModel(&rows[i]))
	}
	return out, total, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *tenant.Client) error {
	return r.db.WithContext(ctx).Model(&tenantDatamodel.Client{ID: c.ID}).
		Select("description", "legal_name", "tax_no", "tax_office", "address", "invoice_address",
			"city", "country", "invoice_email_address", "short_name", "updated_at").
		Updates(tenant.ToDataModel(c)).Error
}

// Deactivate parks the domain, flips the client inactive and deactivates all
// of its members, atomically.
func (r *ClientRepository) Deactivate(ctx context.Context, clientID int64, domain string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.setState(tx, clientID, domain, false); err != nil {
			return err
		}
		return tx.Model(&userDatamodel.User{}).
			Where("id IN (?)", memberIDs(tx, clientID)).
			Update("is_active", false).Error
	})
}

func (r *ClientRepository) Reactivate(ctx context.Context, clientID int64, domain string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.setState(tx, clientID, domain, true); err != nil {
			return err
		}
		return tx.Model(&userDatamodel.User{}).
			Where("id IN (?)", memberIDs(tx, clientID)).
			Update("is_active", true).Error
	})
}

func (r *ClientRepository) setState(tx *gorm.DB, clientID int64, domain string, active bool) error {
	if err := tx.Model(&tenantDatamodel.Client{}).Where("id = ?", clientID).Update("is_active", active).Error; err != nil {
		return err
	}
	return tx.Model(&tenantDatamodel.Domain{}).Where("client_id = ?", clientID).Update("domain", domain).Error
}

func memberIDs(tx *gorm.DB, clientID int64) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&userDatamodel.Membership{}).
		Select("user_id").
		Where("client_id = ?", clientID)
}
