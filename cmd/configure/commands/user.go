package commands

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/config"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/models"
	"github.com/spf13/cobra"
)

// NewUserCmd creates the user provisioning command
func NewUserCmd() *cobra.Command {
	var name, timezone string
	var rotate bool

	cmd := &cobra.Command{
		Use:   "user <email>",
		Short: "Create a user or rotate their API token",
		Long:  "Create a user with a fresh API token. With --rotate, an existing user's token is replaced.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			if email == "" {
				return fmt.Errorf("email cannot be empty")
			}

			if timezone != "" {
				if _, err := time.LoadLocation(timezone); err != nil {
					return fmt.Errorf("invalid timezone %q: %w", timezone, err)
				}
			}

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
			ctx := context.Background()

			token, err := generateToken()
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}

			existing, err := userRepo.GetByEmail(ctx, email)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to look up user: %w", err)
			}

			if existing != nil {
				if !rotate {
					return fmt.Errorf("user %s already exists (use --rotate to replace their token)", email)
				}
				existing.APIToken = token
				if name != "" {
					existing.Name = &name
				}
				if timezone != "" {
					existing.Timezone = timezone
				}
				if err := userRepo.Update(ctx, existing); err != nil {
					return fmt.Errorf("failed to update user: %w", err)
				}
				fmt.Printf("Rotated token for user: %s\n", email)
				fmt.Printf("API token: %s\n", token)
				return nil
			}

			user := &models.User{
				ID:       uuid.New(),
				Email:    email,
				APIToken: token,
				Timezone: timezone,
			}
			if name != "" {
				user.Name = &name
			}
			if user.Timezone == "" {
				user.Timezone = "UTC"
			}

			if err := userRepo.Create(ctx, user); err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Printf("Created user: %s (%s)\n", email, user.ID)
			fmt.Printf("API token: %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (optional)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone, e.g. 'Europe/Madrid' (default UTC)")
	cmd.Flags().BoolVar(&rotate, "rotate", false, "Replace the token of an existing user")

	return cmd
}

// generateToken returns a 64-character hex token from a CSPRNG.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
