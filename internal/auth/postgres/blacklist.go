package postgres

import (
	"context"
	"time"

	userDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenBlacklist stores revoked refresh token ids in the public schema. It is
// used when redis is disabled.
type TokenBlacklist struct {
	db *gorm.DB
}

func NewTokenBlacklist(db *gorm.DB) *TokenBlacklist {
	return &TokenBlacklist{db: db}
}

func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) (bool, error) {
	res := b.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userDatamodel.BlacklistedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Purge removes entries whose token would have expired anyway.
func (b *TokenBlacklist) Purge(ctx context.Context, now time.Time) (int64, error) {
	res := b.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&userDatamodel.BlacklistedToken{})
	return res.RowsAffected, res.Error
}
