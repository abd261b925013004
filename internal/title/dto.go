package title

import "encoding/json"

type CreateTitleDTO struct {
	Name       string          `json:"name" validate:"required,max=255"`
	Attributes json.RawMessage `json:"attributes"`
}

type UpdateTitleDTO struct {
	Name       *string         `json:"name" validate:"omitempty,min=1,max=255"`
	IsActive   *bool           `json:"is_active"`
	Attributes json.RawMessage `json:"attributes"`
}
