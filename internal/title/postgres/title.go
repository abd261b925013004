package postgres

import (
	"context"
	"errors"

	titleDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/title"
	"github.com/frahmantamala/hrm/internal/core/tenancy"
	"github.com/frahmantamala/hrm/internal/title"
	"github.com/frahmantamala/hrm/internal/transport"
	"gorm.io/gorm"
)

type TitleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

func (r *TitleRepository) List(ctx context.Context, page transport.PageRequest) ([]*title.Title, int64, error) {
	var (
		rows  []titleDatamodel.Title
		total int64
	)
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Model(&titleDatamodel.Title{}).Count(&total).Error; err != nil {
			return err
		}
		return tx.Order("name ASC").Offset(page.Offset()).Limit(page.PageSize).Find(&rows).Error
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]*title.Title, 0, len(rows))
	for i := range rows {
		out = append(out, title.FromDataModel(&rows[i]))
	}
	return out, total, nil
}

func (r *TitleRepository) GetByID(ctx context.Context, id int64) (*title.Title, error) {
	var row titleDatamodel.Title
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).First(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return title.FromDataModel(&row), nil
}

func (r *TitleRepository) Create(ctx context.Context, t *title.Title) error {
	row := title.ToDataModel(t)
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return title.ErrNameTaken
	}
	if err != nil {
		return err
	}
	t.ID = row.ID
	t.CreatedAt = row.CreatedAt
	t.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *TitleRepository) Update(ctx context.Context, t *title.Title) error {
	err := tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Model(&titleDatamodel.Title{ID: t.ID}).
			Select("name", "attributes", "updated_at").
			Updates(title.ToDataModel(t)).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return title.ErrNameTaken
	}
	return err
}

func (r *TitleRepository) Deactivate(ctx context.Context, id int64) error {
	return tenancy.Run(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Model(&titleDatamodel.Title{}).Where("id = ?", id).Update("is_active", false).Error
	})
}
