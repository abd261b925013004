package title

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
	List(ctx context.Context, page transport.PageRequest) ([]*Title, int64, error)
	GetByID(ctx context.Context, id int64) (*Title, error)
	Create(ctx context.Context, t *Title) error
	Update(ctx context.Context, t *Title) error
	Deactivate(ctx context.Context, id int64) error
}

type Service struct {
	repo RepositoryAPI
}

func NewService(repo RepositoryAPI) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, page transport.PageRequest) ([]*Title, int64, error) {
	titles, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list titles: %w", err)
	}
	return titles, total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Title, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get title: %w", err)
	}
	if t == nil {
		return nil, internal.NewNotFoundError("Title not found", internal.ErrCodeNotFound)
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, dto CreateTitleDTO) (*Title, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	t := NewTitle(dto.Name, dto.Attributes)
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, mapWriteError(err)
	}

	logger.From(ctx).Info("title created", "title_id", t.ID, "name", t.Name)
	return t, nil
}

// Update renames a title or replaces its attributes. is_active is ignored.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateTitleDTO) (*Title, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		t.Name = *dto.Name
	}
	if len(dto.Attributes) > 0 {
		t.Attributes = attributesOrEmpty(dto.Attributes)
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, mapWriteError(err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate title: %w", err)
	}
	return nil
}

func mapWriteError(err error) error {
	if errors.Is(err, ErrNameTaken) {
		return internal.ErrDuplicateName("Title")
	}
	return fmt.Errorf("failed to save title: %w", err)
}
