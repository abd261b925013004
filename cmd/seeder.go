package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/frahmantamala/hrm/internal/auth"
	userDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/user"
	"github.com/frahmantamala/hrm/internal/core/role"
	"github.com/frahmantamala/hrm/internal/employee"
	employeePostgres "github.com/frahmantamala/hrm/internal/employee/postgres"
	"github.com/frahmantamala/hrm/internal/tenant"
	tenantPostgres "github.com/frahmantamala/hrm/internal/tenant/postgres"
	userPostgres "github.com/frahmantamala/hrm/internal/user/postgres"
	"github.com/frahmantamala/hrm/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const publicDomain = "localhost"

var (
	seedDemo     bool
	seedEmail    string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the public tenant and optional demo data",
	Long: `Create the public tenant every registration joins. With --demo, also create
a verified owner account and a provisioned demo company.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemo, "demo", true, "also seed a demo owner and company")
	seedCmd.Flags().StringVar(&seedEmail, "email", "owner@demo.local", "demo owner email")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "demo owner password")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	defer db.Close()

	gormDB, err := initGorm(db, cfg.Observability.Logging.Level)
	if err != nil {
		log.Fatalf("failed to init gorm: %v", err)
	}

	clients := tenantPostgres.NewClientRepository(gormDB)
	exists, err := clients.SlugExists(ctx, cfg.Tenancy.PublicSchema)
	if err != nil {
		return err
	}
	if exists {
		lg.Info("public tenant already exists")
	} else {
		// the public tenant bypasses the service: its slug is reserved
		public := &tenant.Client{
			Name:       "Public",
			Slug:       cfg.Tenancy.PublicSchema,
			SchemaName: cfg.Tenancy.PublicSchema,
			Domain:     publicDomain,
			IsActive:   true,
		}
		if err := clients.Create(ctx, public); err != nil {
			return err
		}
		lg.Info("seeded public tenant", "id", public.ID)
	}

	if !seedDemo {
		return nil
	}

	ownerID, err := seedOwner(ctx, gormDB, cfg.Tenancy.PublicSchema, seedEmail, seedPassword, cfg.Security.BCryptCost)
	if err != nil {
		return err
	}

	provisioner, err := tenant.NewSchemaProvisioner(db, cfg.Database.Source, lg)
	if err != nil {
		return err
	}
	employees := employee.NewService(
		employeePostgres.NewEmployeeRepository(gormDB),
		userPostgres.NewUserRepository(gormDB),
		auth.NewPermissionChecker(),
	)
	demo, err := tenant.NewService(clients, provisioner, employees).Create(ctx, ownerID, tenant.CreateClientDTO{
		Name:        "Demo Company",
		Slug:        "demo",
		Description: "Seeded demo tenant",
	})
	if err != nil {
		return err
	}
	lg.Info("seeded demo tenant", "id", demo.ID, "owner", seedEmail)
	return nil
}

// seedOwner creates a verified user in the public tenant, or returns the
// existing one.
func seedOwner(ctx context.Context, db *gorm.DB, publicSchema, email, password string, cost int) (int64, error) {
	var existing userDatamodel.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}

	u := userDatamodel.User{
		Email:        auth.NormalizeEmail(email),
		PasswordHash: hash,
		FirstName:    "Demo",
		LastName:     "Owner",
		Role:         role.Employee.String(),
		IsActive:     true,
		IsVerified:   true,
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		return tx.Exec(
			"INSERT INTO user_tenants (user_id, client_id, created_at) SELECT ?, id, now() FROM clients WHERE schema_name = ?",
			u.ID, publicSchema,
		).Error
	})
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}
