package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/medtrack/medtrack/internal/config"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/queue"
	"github.com/spf13/cobra"
)

// NewTestCmd creates the connectivity test command
func NewTestCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity",
		Long:  "Check that the database and job queue are reachable and, optionally, that the API answers health checks",
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

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("database ping failed: %w", err)
			}
			fmt.Println("✓ Database connection successful")

			userRepo := database.NewUserRepository(db)
			users, err := userRepo.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to query users: %w", err)
			}
			fmt.Printf("✓ Found %d registered users\n", len(users))

			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			defer func() {
				if err := jobQueue.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close queue connection: %v\n", err)
				}
			}()
			if err := jobQueue.HealthCheck(ctx); err != nil {
				return fmt.Errorf("queue health check failed: %w", err)
			}
			fmt.Println("✓ RabbitMQ connection successful")

			if apiURL != "" {
				client := &http.Client{Timeout: 10 * time.Second}
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/healthz", nil)
				if err != nil {
					return fmt.Errorf("failed to build health request: %w", err)
				}
				resp, err := client.Do(req)
				if err != nil {
					return fmt.Errorf("API health check failed: %w", err)
				}
				defer func() { _ = resp.Body.Close() }()
				if resp.StatusCode != http.StatusOK {
					return fmt.Errorf("API health check returned %d", resp.StatusCode)
				}
				fmt.Printf("✓ API at %s is healthy\n", apiURL)
			}

			fmt.Println("\nAll connectivity tests passed!")
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL of the API to health-check (optional)")

	return cmd
}
