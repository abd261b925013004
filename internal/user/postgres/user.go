package postgres

import (
	"context"
	"errors"

	tenantDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/tenant"
	userDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/user"
	"github.com/frahmantamala/hrm/internal/core/tenancy"
	"github.com/frahmantamala/hrm/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

func (r *UserRepository) ListTenants(ctx context.Context, userID int64) ([]user.TenantSummary, error) {
	var clients []tenantDatamodel.Client
	err := r.db.WithContext(ctx).
		Joins("JOIN user_tenants ut ON ut.client_id = clients.id").
		Where("ut.user_id = ? AND clients.schema_name <> ? AND clients.is_active = ?", userID, tenancy.PublicSchema, true).
		Order("ut.created_at DESC").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}

	out := make([]user.TenantSummary, 0, len(clients))
	for _, c := range clients {
		out = append(out, user.TenantSummary{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	return out, nil
}
