package postgres

import (
	"context"
	"errors"

	teamDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/team"
	"github.com/frahmantamala/hrm/internal/core/tenancy"
	"github.com/frahmantamala/hrm/internal/team"
	"github.com/frahmantamala/hrm/internal/transport"
	"gorm.io/gorm"
)

// TeamRepository reads and writes the teams table of the tenant bound to the
// request context.
type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context, page transport.PageRequest) ([]*team.Team, int64, error) {
	var (
		rows  []teamDatamodel.Team
		total int64
	)
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Model(&teamDatamodel.Team{}).Count(&total).Error; err != nil {
			return err
		}
		return tx.Order("created_at DESC, id DESC").
			Offset(page.Offset()).
			Limit(page.PageSize).
			Find(&rows).Error
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]*team.Team, 0, len(rows))
	for i := range rows {
		out = append(out, team.FromDataModel(&rows[i]))
	}
	return out, total, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*team.Team, error) {
	var row teamDatamodel.Team
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return team.FromDataModel(&row), nil
}

func (r *TeamRepository) Create(ctx context.Context, t *team.Team) error {
	row := team.ToDataModel(t)
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	if err != nil {
		return translate(err)
	}
	t.ID = row.ID
	t.CreatedAt = row.CreatedAt
	t.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *TeamRepository) Update(ctx context.Context, t *team.Team) error {
	row := team.ToDataModel(t)
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Model(&teamDatamodel.Team{ID: t.ID}).
			Select("parent_id", "name", "description", "attributes", "updated_at").
			Updates(row).Error
	})
	if err != nil {
		return translate(err)
	}
	t.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *TeamRepository) Deactivate(ctx context.Context, id int64) error {
	return tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Model(&teamDatamodel.Team{}).Where("id = ?", id).Update("is_active", false).Error
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return team.ErrNameTaken
	}
	return err
}
