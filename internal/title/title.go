package title

import (
	"encoding/json"
	"errors"
	"time"

	titleDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/title"
)

var ErrNameTaken = errors.New("title name already exists")

// Title is a job title. Names are unique within a tenant.
type Title struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	IsActive   bool            `json:"is_active"`
	Attributes json.RawMessage `json:"attributes"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func NewTitle(name string, attributes json.RawMessage) *Title {
	return &Title{
		Name:       name,
		IsActive:   true,
		Attributes: attributesOrEmpty(attributes),
	}
}

func attributesOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(`{}`)
	}
	return raw
}

func ToDataModel(t *Title) *titleDatamodel.Title {
	return &titleDatamodel.Title{
		ID:         t.ID,
		Name:       t.Name,
		IsActive:   t.IsActive,
		Attributes: t.Attributes,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func FromDataModel(t *titleDatamodel.Title) *Title {
	return &Title{
		ID:         t.ID,
		Name:       t.Name,
		IsActive:   t.IsActive,
		Attributes: attributesOrEmpty(t.Attributes),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
