package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/request-routing/internal/auth"
	"github.com/frahmantamala/request-routing/internal/legacy"
	legacyPostgres "github.com/frahmantamala/request-routing/internal/legacy/postgres"
	"github.com/frahmantamala/request-routing/pkg/logger"
)

var (
	importUsersFile    string
	importRequestsFile string
	importChatsFile    string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the legacy spreadsheets",
	Long:  `One-time migration of database.xlsx, requests.xlsx and chats.xlsx into the store. Safe to run again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if importUsersFile == "" && importRequestsFile == "" && importChatsFile == "" {
			return fmt.Errorf("nothing to import: pass --users, --requests or --chats")
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		lg := logger.LoggerWrapper()

		db, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		passwords, err := auth.NewPasswordScheme(cfg.Security.PasswordScheme, cfg.Security.BCryptCost)
		if err != nil {
			return err
		}
		importer := legacy.NewImporter(legacyPostgres.NewStore(db), passwords, time.Local, lg)

		ctx := context.Background()
		// requests before chats: chat rows of unknown requests are skipped
		steps := []struct {
			name string
			path string
			run  func(context.Context, *os.File) (legacy.Counts, error)
		}{
			{"users", importUsersFile, func(ctx context.Context, f *os.File) (legacy.Counts, error) { return importer.ImportUsers(ctx, f) }},
			{"requests", importRequestsFile, func(ctx context.Context, f *os.File) (legacy.Counts, error) { return importer.ImportRequests(ctx, f) }},
			{"chats", importChatsFile, func(ctx context.Context, f *os.File) (legacy.Counts, error) { return importer.ImportChats(ctx, f) }},
		}
		for _, step := range steps {
			if step.path == "" {
				continue
			}
			f, err := os.Open(step.path)
			if err != nil {
				return err
			}
			counts, err := step.run(ctx, f)
			f.Close()
			if err != nil {
				return fmt.Errorf("import %s from %s: %w", step.name, step.path, err)
			}
			fmt.Printf("%s: %s\n", step.name, counts)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importUsersFile, "users", "", "users workbook (database.xlsx)")
	importCmd.Flags().StringVar(&importRequestsFile, "requests", "", "requests workbook (requests.xlsx)")
	importCmd.Flags().StringVar(&importChatsFile, "chats", "", "chat workbook (chats.xlsx)")
}
