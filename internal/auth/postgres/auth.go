package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrm/internal/auth"
	tenantDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/tenant"
	userDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/user"
	"github.com/frahmantamala/hrm/internal/core/tenancy"
	"github.com/frahmantamala/hrm/internal/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	return r.first(ctx, "id = ?", userID)
}

func (r *Repository) first(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

// CreatePending inserts the user and joins it to the public tenant in one
// transaction.
func (r *Repository) CreatePending(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dm := user.ToDataModel(u)
		if err := tx.Create(dm).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return auth.ErrEmailTaken
			}
			return err
		}

		var public tenantDatamodel.Client
		err := tx.Where("schema_name = ?", tenancy.PublicSchema).First(&public).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// no public tenant seeded yet
		case err != nil:
			return err
		default:
			if err := tx.Create(&userDatamodel.Membership{UserID: dm.ID, ClientID: public.ID}).Error; err != nil {
				return err
			}
		}

		u.ID = dm.ID
		u.CreatedAt = dm.CreatedAt
		u.UpdatedAt = dm.UpdatedAt
		return nil
	})
}

func (r *Repository) IssueCode(ctx context.Context, issue auth.CodeIssue) (bool, error) {
	updates := map[string]interface{}{
		"verification_code":            issue.CodeHash,
		"verification_code_expires_at": issue.ExpiresAt,
		"updated_at":                   issue.Now,
	}
	if issue.PasswordHash != "" {
		updates["password_hash"] = issue.PasswordHash
	}

	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ? AND is_verified = ?", issue.UserID, false).
		Where("(verification_code_expires_at IS NULL OR verification_code_expires_at <= ?)", issue.Now).
		UpdateColumns(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkVerified consumes the code only if it is still the stored, unexpired
// one. A single conditional update keeps the verified flag and the cleared
// code consistent.
func (r *Repository) MarkVerified(ctx context.Context, userID int64, codeHash string, now time.Time) (bool, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userDatamodel.User{}).
			Where("id = ? AND is_verified = ? AND verification_code = ?", userID, false, codeHash).
			Where("verification_code_expires_at > ?", now).
			UpdateColumns(map[string]interface{}{
				"is_verified":                   true,
				"is_active":                     true,
				"verification_code_verified_at": now,
				"verification_code":             nil,
				"verification_code_expires_at":  nil,
				"updated_at":                    now,
			})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *Repository) SetPassword(ctx context.Context, userID int64, oldHash, newHash string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ? AND password_hash = ?", userID, oldHash).
		UpdateColumns(map[string]interface{}{
			"password_hash": newHash,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) TouchLastLogin(ctx context.Context, userID int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_login", now).Error
}

// LatestTenantID returns the active tenant the user joined most recently.
func (r *Repository) LatestTenantID(ctx context.Context, userID int64) (*int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Table("user_tenants ut").
		Select("ut.client_id").
		Joins("JOIN clients c ON c.id = ut.client_id").
		Where("ut.user_id = ? AND c.is_active = ?", userID, true).
		Order("ut.created_at DESC, ut.client_id DESC").
		Limit(1).
		Pluck("ut.client_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}
