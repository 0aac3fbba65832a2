package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/auth"
	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/user"
	userPostgres "github.com/frahmantamala/request-routing/internal/user/postgres"
	"github.com/frahmantamala/request-routing/pkg/logger"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample accounts",
	Long:  `Seed the database with one account per role for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		svc := user.NewService(userPostgres.NewUserRepository(db), passwords, nil, lg)

		accounts := []user.AddUserDTO{
			{Name: "هدى الموارد", Email: "hr@example.com", Role: auth.RoleHR.Label(), Department: "الموارد البشرية"},
			{Name: "عبدالله المدير", Email: "gm@example.com", Role: auth.RoleGeneralManager.Label(), Department: "الإدارة العامة"},
			{Name: "سارة التقنية", Email: "it.manager@example.com", Role: auth.RoleDepartmentManager.Label(), Department: department.IT},
			{Name: "خالد التقنية", Email: "it.staff@example.com", Role: auth.RoleEmployee.Label(), Department: department.IT},
			{Name: "منى المالية", Email: "finance.manager@example.com", Role: auth.RoleDepartmentManager.Label(), Department: department.Finance},
			{Name: "ياسر المالية", Email: "finance.staff@example.com", Role: auth.RoleEmployee.Label(), Department: department.Finance},
		}

		ctx := context.Background()
		for _, a := range accounts {
			a.Password = seedPassword
			if _, err := svc.AddUser(ctx, a); err != nil {
				if errors.Is(err, internal.ErrUserExists) {
					fmt.Println("user already exists:", a.Email)
					continue
				}
				return fmt.Errorf("failed to seed %s: %w", a.Email, err)
			}
			fmt.Println("Seeded user:", a.Email)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "password given to every seeded account")
}
