package title

import (
	"encoding/json"
	"time"
)

type Title struct {
	ID         int64           `gorm:"primaryKey"`
	Name       string          `gorm:"column:name;size:255;uniqueIndex;not null"`
	IsActive   bool            `gorm:"column:is_active;not null"`
	Attributes json.RawMessage `gorm:"column:attributes;type:jsonb"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Title) TableName() string {
	return "titles"
}
