package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	exportPostgres "github.com/frahmantamala/request-routing/internal/export/postgres"
	"github.com/frahmantamala/request-routing/internal/mirror"
	"github.com/frahmantamala/request-routing/pkg/logger"
)

var mirrorPath string

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Spreadsheet mirror commands",
	Long:  `Manage the spreadsheet snapshot kept for readers of the old workbooks.`,
}

var mirrorRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rewrite the snapshot workbook now",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		lg := logger.LoggerWrapper()

		gdb, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		db, err := sqlxFrom(gdb, cfg.Database.Driver)
		if err != nil {
			return err
		}
		defer db.Close()

		path := cfg.Mirror.Path
		if mirrorPath != "" {
			path = mirrorPath
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		m := mirror.New(afero.NewOsFs(), path, cfg.Mirror.Debounce, exportPostgres.NewSource(db), lg)
		if err := m.Rebuild(ctx); err != nil {
			return err
		}
		fmt.Println("mirror written:", path)
		return nil
	},
}

func init() {
	mirrorRebuildCmd.Flags().StringVar(&mirrorPath, "path", "", "output workbook (overrides config)")
	mirrorCmd.AddCommand(mirrorRebuildCmd)
}
