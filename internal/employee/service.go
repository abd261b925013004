package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/auth"
	"github.com/frahmantamala/hrm/internal/core/common/validation"
	"github.com/frahmantamala/hrm/internal/core/role"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/internal/user"
	"github.com/frahmantamala/hrm/pkg/logger"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/frahmantamala/hrm/internal/employee")

// RepositoryAPI is scoped to the tenant bound to ctx, except CreateOwner which
// names its schema explicitly.
type RepositoryAPI interface {
	List(ctx context.Context, page transport.PageRequest) ([]*Employee, int64, error)
	GetByID(ctx context.Context, id int64) (*Employee, error)
	GetByUserID(ctx context.Context, userID int64) (*Employee, error)
	Create(ctx context.Context, e *Employee) error
	CreateWithUser(ctx context.Context, e *Employee, u *user.User) error
	CreateOwner(ctx context.Context, schema string, e *Employee) error
	Update(ctx context.Context, e *Employee) error
	Deactivate(ctx context.Context, id, userID int64) error
	ForceDelete(ctx context.Context, id, userID int64) error
	GetPersonalDetail(ctx context.Context, employeeID int64) (*PersonalDetail, error)
	SavePersonalDetail(ctx context.Context, pd *PersonalDetail) error
}

type UserLookup interface {
	GetByID(ctx context.Context, userID int64) (*user.User, error)
}

type Service struct {
	repo    RepositoryAPI
	users   UserLookup
	checker auth.PermissionChecker
}

func NewService(repo RepositoryAPI, users UserLookup, checker auth.PermissionChecker) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		checker: checker,
	}
}

func (s *Service) List(ctx context.Context, page transport.PageRequest) ([]*Employee, int64, error) {
	employees, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if e == nil {
		return nil, internal.NewNotFoundError("Employee not found", internal.ErrCodeNotFound)
	}
	return e, nil
}

// Me returns the caller's own employee record in the bound tenant.
func (s *Service) Me(ctx context.Context, userID int64) (*Employee, error) {
	e, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee by user: %w", err)
	}
	if e == nil {
		return nil, internal.NewNotFoundError("Employee not found", internal.ErrCodeEmployeeNotFound)
	}
	return e, nil
}

// Create adds an employee to the bound tenant. Without a user id a new
// unverified user with an unusable password is registered for the email.
func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	ctx, span := tracer.Start(ctx, "employee.Create")
	defer span.End()

	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if dto.User == nil && dto.Email == "" {
		return nil, internal.NewValidationFieldError("email", "email is required when no user is given", internal.ErrCodeValidationFailed)
	}
	if err := s.checkManager(ctx, 0, dto.Manager); err != nil {
		return nil, err
	}

	e := dto.employee()
	if dto.User != nil {
		u, err := s.users.GetByID(ctx, *dto.User)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if u == nil {
			return nil, internal.NewValidationFieldError("user", "user does not exist", internal.ErrCodeValidationFailed)
		}
		e.UserID = u.ID
		if err := s.repo.Create(ctx, e); err != nil {
			return nil, mapWriteError(err)
		}
	} else {
		u := &user.User{
			Email:        auth.NormalizeEmail(dto.Email),
			PasswordHash: user.UnusablePassword(),
			FirstName:    e.FirstName,
			LastName:     e.LastName,
			Role:         role.Employee.String(),
			IsActive:     true,
			IsVerified:   false,
		}
		if err := s.repo.CreateWithUser(ctx, e, u); err != nil {
			return nil, mapWriteError(err)
		}
	}

	logger.From(ctx).Info("employee created", "employee_id", e.ID, "user_id", e.UserID)
	return e, nil
}

// Update merges fields. The owner's role is fixed and is_active only changes
// through Delete.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.IsOwner() && dto.Role != nil && role.Role(*dto.Role) != role.Owner {
		return nil, internal.NewValidationFieldError("role", "the owner's role cannot be changed", internal.ErrCodeValidationFailed)
	}
	if err := s.checkManager(ctx, id, dto.Manager); err != nil {
		return nil, err
	}

	dto.apply(e)
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, mapWriteError(err)
	}
	return e, nil
}

// Delete deactivates the employee and their user. With force the user is
// removed outright. Owners can never be deleted.
func (s *Service) Delete(ctx context.Context, id int64, force bool) error {
	ctx, span := tracer.Start(ctx, "employee.Delete")
	defer span.End()

	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.IsOwner() {
		return internal.ErrCannotDeleteOwner()
	}

	lg := logger.From(ctx).With("employee_id", e.ID, "user_id", e.UserID)
	if force {
		if err := s.repo.ForceDelete(ctx, e.ID, e.UserID); err != nil {
			return fmt.Errorf("failed to delete employee: %w", err)
		}
		lg.Info("employee and user deleted")
		return nil
	}

	if err := s.repo.Deactivate(ctx, e.ID, e.UserID); err != nil {
		return fmt.Errorf("failed to deactivate employee: %w", err)
	}
	lg.Info("employee deactivated")
	return nil
}

// GetPersonalDetail is visible to the employee and to managers.
func (s *Service) GetPersonalDetail(ctx context.Context, actor *auth.Actor, employeeID int64) (*PersonalDetail, error) {
	if _, err := s.authorizedEmployee(ctx, actor, employeeID); err != nil {
		return nil, err
	}

	pd, err := s.repo.GetPersonalDetail(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get personal detail: %w", err)
	}
	if pd == nil {
		return nil, internal.NewNotFoundError("Personal detail not found", internal.ErrCodeNotFound)
	}
	return pd, nil
}

// SavePersonalDetail creates the record on first use and merges the given
// fields afterwards. created reports whether a new record was written.
func (s *Service) SavePersonalDetail(ctx context.Context, actor *auth.Actor, employeeID int64, dto PersonalDetailDTO) (pd *PersonalDetail, created bool, err error) {
	if err := validation.Struct(dto); err != nil {
		return nil, false, err
	}
	if _, err := s.authorizedEmployee(ctx, actor, employeeID); err != nil {
		return nil, false, err
	}

	pd, err = s.repo.GetPersonalDetail(ctx, employeeID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get personal detail: %w", err)
	}
	if pd == nil {
		pd = &PersonalDetail{EmployeeID: employeeID}
		created = true
	}

	dto.apply(pd)
	if err := s.repo.SavePersonalDetail(ctx, pd); err != nil {
		return nil, false, fmt.Errorf("failed to save personal detail: %w", err)
	}
	return pd, created, nil
}

// ResolveActor maps the caller to their employee record in the bound tenant.
func (s *Service) ResolveActor(ctx context.Context, userID int64) (*auth.Actor, error) {
	e, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	if e == nil {
		return nil, nil
	}
	return &auth.Actor{UserID: userID, EmployeeID: e.ID, Role: e.Role}, nil
}

// EnrollOwner creates the owner's employee record in a new tenant schema.
func (s *Service) EnrollOwner(ctx context.Context, schema string, userID int64) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get owner: %w", err)
	}
	if u == nil {
		return fmt.Errorf("owner %d does not exist", userID)
	}

	first, last := strings.TrimSpace(u.FirstName), strings.TrimSpace(u.LastName)
	if first == "" && last == "" {
		first, last = DefaultFirstName, DefaultLastName
	}

	e := &Employee{
		UserID:       u.ID,
		FirstName:    first,
		LastName:     last,
		Role:         role.Owner,
		ContractType: ContractIndefinite,
		IsActive:     true,
	}
	return s.repo.CreateOwner(ctx, schema, e)
}

func (s *Service) authorizedEmployee(ctx context.Context, actor *auth.Actor, employeeID int64) (*Employee, error) {
	e, err := s.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !s.checker.CanAccessPersonalDetail(actor, employeeID) {
		return nil, internal.ErrForbidden()
	}
	return e, nil
}

func (s *Service) checkManager(ctx context.Context, selfID int64, managerID *int64) error {
	if managerID == nil {
		return nil
	}
	if *managerID == selfID {
		return internal.NewValidationFieldError("manager", "an employee cannot manage themselves", internal.ErrCodeValidationFailed)
	}
	m, err := s.repo.GetByID(ctx, *managerID)
	if err != nil {
		return fmt.Errorf("failed to get manager: %w", err)
	}
	if m == nil {
		return internal.NewValidationFieldError("manager", "manager does not exist", internal.ErrCodeValidationFailed)
	}
	return nil
}

func mapWriteError(err error) error {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return internal.ErrUserAlreadyExists()
	case errors.Is(err, ErrAlreadyEmployed):
		return internal.NewValidationFieldError("user", "this user already has an employee record", internal.ErrCodeValidationFailed)
	}
	return fmt.Errorf("failed to save employee: %w", err)
}
