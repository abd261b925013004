package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/core/common/validation"
	"github.com/frahmantamala/hrm/internal/core/tenancy"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/pkg/logger"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/frahmantamala/hrm/internal/tenant")

type RepositoryAPI interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	CountMemberships(ctx context.Context, userID int64) (int64, error)
	Create(ctx context.Context, c *Client) error
	Remove(ctx context.Context, clientID int64) error
	GetByID(ctx context.Context, clientID int64) (*Client, error)
	IsMember(ctx context.Context, userID, clientID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64, page transport.PageRequest) ([]*Client, int64, error)
	Update(ctx context.Context, c *Client) error
	Deactivate(ctx context.Context, clientID int64, domain string) error
	Reactivate(ctx context.Context, clientID int64, domain string) error
}

// Provisioner creates and migrates a tenant schema.
type Provisioner interface {
	Provision(ctx context.Context, schema string) error
}

// OwnerEnroller creates the owner's employee record inside a freshly
// provisioned schema.
type OwnerEnroller interface {
	EnrollOwner(ctx context.Context, schema string, userID int64) error
}

type Service struct {
	repo        RepositoryAPI
	provisioner Provisioner
	enroller    OwnerEnroller
	now         func() time.Time
}

func NewService(repo RepositoryAPI, provisioner Provisioner, enroller OwnerEnroller) *Service {
	return &Service{
		repo:        repo,
		provisioner: provisioner,
		enroller:    enroller,
		now:         time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create registers a company owned by ownerID, provisions its schema and
// makes the owner its first employee. If provisioning fails the tenant rows
// are removed again.
func (s *Service) Create(ctx context.Context, ownerID int64, dto CreateClientDTO) (*Client, error) {
	ctx, span := tracer.Start(ctx, "tenant.Create")
	defer span.End()

	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if !tenancy.ValidSchemaName(dto.Slug) {
		return nil, internal.NewValidationFieldError("slug", "slug cannot be used as a company identifier", internal.ErrCodeValidationFailed)
	}

	exists, err := s.repo.SlugExists(ctx, dto.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return nil, internal.ErrCompanyAlreadyExists()
	}

	memberships, err := s.repo.CountMemberships(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count memberships: %w", err)
	}
	// every user already belongs to the public tenant
	if memberships > 1 {
		return nil, internal.ErrUserAlreadyHasCompany()
	}

	owner := ownerID
	c := &Client{
		Name:                dto.Name,
		Description:         dto.Description,
		Slug:                dto.Slug,
		SchemaName:          dto.Slug,
		Domain:              dto.Slug,
		OwnerID:             &owner,
		IsActive:            true,
		LegalName:           dto.LegalName,
		TaxNo:               dto.TaxNo,
		TaxOffice:           dto.TaxOffice,
		Address:             dto.Address,
		InvoiceAddress:      dto.InvoiceAddress,
		City:                dto.City,
		Country:             dto.Country,
		InvoiceEmailAddress: dto.InvoiceEmailAddress,
		ShortName:           dto.ShortName,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	lg := logger.From(ctx).With("client_id", c.ID, "schema", c.SchemaName)
	if err := s.provisioner.Provision(ctx, c.SchemaName); err != nil {
		lg.Error("schema provisioning failed", "error", err)
		s.rollback(ctx, c.ID)
		return nil, internal.NewInternalError("Failed to provision company", err)
	}
	if err := s.enroller.EnrollOwner(ctx, c.SchemaName, ownerID); err != nil {
		lg.Error("owner enrollment failed", "error", err)
		s.rollback(ctx, c.ID)
		return nil, internal.NewInternalError("Failed to provision company", err)
	}

	lg.Info("company created", "owner_id", ownerID)
	return c, nil
}

func (s *Service) rollback(ctx context.Context, clientID int64) {
	if err := s.repo.Remove(context.WithoutCancel(ctx), clientID); err != nil {
		logger.From(ctx).Error("failed to remove half-created company", "client_id", clientID, "error", err)
	}
}

// Get returns a tenant the caller belongs to. Non-members see not found.
func (s *Service) Get(ctx context.Context, userID, clientID int64) (*Client, error) {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if c == nil || c.SchemaName == tenancy.PublicSchema {
		return nil, internal.NewNotFoundError("Company not found", internal.ErrCodeNotFound)
	}

	member, err := s.repo.IsMember(ctx, userID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, internal.NewNotFoundError("Company not found", internal.ErrCodeNotFound)
	}
	return c, nil
}

// List returns the caller's tenants, newest first, excluding public.
func (s *Service) List(ctx context.Context, userID int64, page transport.PageRequest) ([]*Client, int64, error) {
	clients, total, err := s.repo.ListForUser(ctx, userID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

// Update merges billing and descriptive fields. Identity, ownership and the
// active flag cannot be changed here.
func (s *Service) Update(ctx context.Context, userID, clientID int64, dto UpdateClientDTO) (*Client, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	c, err := s.ownedClient(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}

	dto.apply(c)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return c, nil
}

// Delete deactivates the tenant, parks its domain and deactivates every
// member, the owner included.
func (s *Service) Delete(ctx context.Context, userID, clientID int64) error {
	ctx, span := tracer.Start(ctx, "tenant.Delete")
	defer span.End()

	c, err := s.ownedClient(ctx, userID, clientID)
	if err != nil {
		return err
	}
	if !c.IsActive {
		return nil
	}

	retired := RetiredDomain(s.now(), *c.OwnerID, c.Domain)
	if err := s.repo.Deactivate(ctx, c.ID, retired); err != nil {
		return fmt.Errorf("failed to deactivate client: %w", err)
	}

	logger.From(ctx).Info("company deactivated", "client_id", c.ID, "domain", retired)
	return nil
}

// Activate restores a deactivated tenant and its members.
func (s *Service) Activate(ctx context.Context, userID, clientID int64) (*Client, error) {
	ctx, span := tracer.Start(ctx, "tenant.Activate")
	defer span.End()

	c, err := s.ownedClient(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}
	if c.IsActive {
		return c, nil
	}

	restored := RestoredDomain(c.Domain)
	if err := s.repo.Reactivate(ctx, c.ID, restored); err != nil {
		return nil, fmt.Errorf("failed to activate client: %w", err)
	}

	c.IsActive = true
	c.Domain = restored
	logger.From(ctx).Info("company activated", "client_id", c.ID)
	return c, nil
}

func (s *Service) ownedClient(ctx context.Context, userID, clientID int64) (*Client, error) {
	c, err := s.Get(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(userID) {
		return nil, internal.ErrForbidden()
	}
	return c, nil
}
