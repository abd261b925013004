package team

import "encoding/json"

type CreateTeamDTO struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description"`
	Parent      *int64          `json:"parent" validate:"omitempty,gt=0"`
	Attributes  json.RawMessage `json:"attributes"`
}

// UpdateTeamDTO is a partial update. is_active is accepted but ignored; use
// delete to deactivate.
type UpdateTeamDTO struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string         `json:"description"`
	Parent      *int64          `json:"parent" validate:"omitempty,gt=0"`
	IsActive    *bool           `json:"is_active"`
	Attributes  json.RawMessage `json:"attributes"`
}

func (d UpdateTeamDTO) apply(t *Team) {
	if d.Name != nil {
		t.Name = *d.Name
	}
	if d.Description != nil {
		t.Description = *d.Description
	}
	if d.Parent != nil {
		parent := *d.Parent
		t.ParentID = &parent
	}
	if len(d.Attributes) > 0 {
		t.Attributes = normalizeAttributes(d.Attributes)
	}
}
