package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/medtrack/medtrack/internal/config"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Long:  "List all registered users with their medication counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			userRepo := database.NewUserRepository(db)
			medicationRepo := database.NewMedicationRepository(db)
			ctx := context.Background()

			users, err := userRepo.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			if len(users) == 0 {
				fmt.Println("No users registered")
				return nil
			}

			fmt.Println("Registered users:")
			for _, user := range users {
				count, err := medicationRepo.CountByUserID(ctx, user.ID)
				if err != nil {
					count = 0
				}
				fmt.Printf("  - Email: %s\n", user.Email)
				fmt.Printf("    ID: %s\n", user.ID)
				if user.Name != nil {
					fmt.Printf("    Name: %s\n", *user.Name)
				}
				fmt.Printf("    Timezone: %s\n", user.Timezone)
				fmt.Printf("    Medications: %d\n", count)
				fmt.Println()
			}

			return nil
		},
	}

	return cmd
}
