package cmd

import (
	"context"
	"log"

	migrations "github.com/frahmantamala/hrm/db"
	"github.com/frahmantamala/hrm/internal/tenant"
	"github.com/frahmantamala/hrm/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "run the embedded public schema migrations, and optionally every tenant schema",
	}
	migrateRollback bool
	migrateTenants  bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVarP(&migrateTenants, "tenants", "t", false, "also migrate every active tenant schema")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("migrate: failed to open DB: %v\n", err)
	}
	defer db.Close()

	if migrateTenants {
		provisioner, err := tenant.NewSchemaProvisioner(db, cfg.Database.Source, lg)
		if err != nil {
			return err
		}
		schemas, err := tenant.NewDirectory(db).TenantSchemas(ctx)
		if err != nil {
			return err
		}
		for _, schema := range schemas {
			if migrateRollback {
				if err := provisioner.Rollback(ctx, schema); err != nil {
					return err
				}
				lg.Info("tenant schema rolled back", "schema", schema)
				continue
			}
			applied, err := provisioner.Migrate(ctx, schema)
			if err != nil {
				return err
			}
			lg.Info("tenant schema migrated", "schema", schema, "applied", applied)
		}
		return nil
	}

	if migrateRollback {
		if err := migrations.Down(ctx, db.DB, migrations.PublicDir); err != nil {
			log.Fatalf("goose down: %v", err)
		}
		lg.Info("public schema rolled back")
		return nil
	}

	applied, err := migrations.Up(ctx, db.DB, migrations.PublicDir)
	if err != nil {
		log.Fatalf("goose up: %v", err)
	}
	lg.Info("public schema migrated", "applied", applied)
	return nil
}
