package team

import (
	"encoding/json"
	"errors"
	"time"

	teamDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/team"
)

// ErrNameTaken is returned by repositories when the unique name is in use.
var ErrNameTaken = errors.New("team name already exists")

type Team struct {
	ID          int64           `json:"id"`
	ParentID    *int64          `json:"parent"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IsActive    bool            `json:"is_active"`
	Attributes  json.RawMessage `json:"attributes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewTeam(name, description string, parentID *int64, attributes json.RawMessage) *Team {
	return &Team{
		Name:        name,
		Description: description,
		ParentID:    parentID,
		IsActive:    true,
		Attributes:  normalizeAttributes(attributes),
	}
}

func normalizeAttributes(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(`{}`)
	}
	return raw
}

func ToDataModel(t *Team) *teamDatamodel.Team {
	return &teamDatamodel.Team{
		ID:          t.ID,
		ParentID:    t.ParentID,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
		Attributes:  t.Attributes,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModel(t *teamDatamodel.Team) *Team {
	return &Team{
		ID:          t.ID,
		ParentID:    t.ParentID,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
		Attributes:  normalizeAttributes(t.Attributes),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
