package team

import (
	"encoding/json"
	"time"
)

type Team struct {
	ID          int64           `gorm:"primaryKey"`
	ParentID    *int64          `gorm:"column:parent_id"`
	Name        string          `gorm:"column:name;size:100;uniqueIndex;not null"`
	Description string          `gorm:"column:description"`
	IsActive    bool            `gorm:"column:is_active;not null"`
	Attributes  json.RawMessage `gorm:"column:attributes;type:jsonb"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Team) TableName() string {
	return "teams"
}
