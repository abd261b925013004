package user

import (
	"context"
	"fmt"

	"github.com/frahmantamala/hrm/internal"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	ListTenants(ctx context.Context, userID int64) ([]TenantSummary, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

type Profile struct {
	*User
	Tenants []TenantSummary `json:"tenants"`
}

// GetProfile returns the user together with every non-public tenant they
// belong to.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if u == nil {
		return nil, internal.NewNotFoundError("User not found", internal.ErrCodeNotFound)
	}

	tenants, err := s.repo.ListTenants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user tenants: %w", err)
	}
	if tenants == nil {
		tenants = []TenantSummary{}
	}

	return &Profile{User: u, Tenants: tenants}, nil
}
