package cmd

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/request-routing/db/migrations"
	"github.com/frahmantamala/request-routing/internal"
	chatDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/chat"
	requestDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/request"
	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded db migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Database.Driver == internal.DriverSQLite {
		db, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		return autoMigrate(db)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	return nil
}

// autoMigrate creates the schema on the embedded store, where the postgres
// SQL migrations do not apply.
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userDatamodel.User{},
		&requestDatamodel.Request{},
		&requestDatamodel.Sequence{},
		&chatDatamodel.Message{},
	)
}
