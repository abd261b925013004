package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/core/common/validation"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/pkg/logger"
)

type RepositoryAPI interface {
	List(ctx context.Context, page transport.PageRequest) ([]*Team, int64, error)
	GetByID(ctx context.Context, id int64) (*Team, error)
	Create(ctx context.Context, t *Team) error
	Update(ctx context.Context, t *Team) error
	Deactivate(ctx context.Context, id int64) error
}

type Service struct {
	repo RepositoryAPI
}

func NewService(repo RepositoryAPI) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) List(ctx context.Context, page transport.PageRequest) ([]*Team, int64, error) {
	teams, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Team, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if t == nil {
		return nil, internal.NewNotFoundError("Team not found", internal.ErrCodeNotFound)
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, dto CreateTeamDTO) (*Team, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, 0, dto.Parent); err != nil {
		return nil, err
	}

	t := NewTeam(dto.Name, dto.Description, dto.Parent, dto.Attributes)
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, mapWriteError(err)
	}

	logger.From(ctx).Info("team created", "team_id", t.ID, "name", t.Name)
	return t, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateTeamDTO) (*Team, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, id, dto.Parent); err != nil {
		return nil, err
	}

	dto.apply(t)
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, mapWriteError(err)
	}
	return t, nil
}

// Delete is a soft delete.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate team: %w", err)
	}
	return nil
}

func (s *Service) checkParent(ctx context.Context, selfID int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if *parentID == selfID {
		return internal.NewValidationFieldError("parent", "a team cannot be its own parent", internal.ErrCodeValidationFailed)
	}
	parent, err := s.repo.GetByID(ctx, *parentID)
	if err != nil {
		return fmt.Errorf("failed to get parent team: %w", err)
	}
	if parent == nil {
		return internal.NewValidationFieldError("parent", "parent team does not exist", internal.ErrCodeValidationFailed)
	}
	return nil
}

func mapWriteError(err error) error {
	if errors.Is(err, ErrNameTaken) {
		return internal.ErrDuplicateName("Team")
	}
	return fmt.Errorf("failed to save team: %w", err)
}
