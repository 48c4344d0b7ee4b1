package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/medtrack/medtrack/internal/config"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/models"
	"github.com/medtrack/medtrack/internal/validation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// importFile is the YAML document accepted by import-yaml.
type importFile struct {
	Medications []importMedication `yaml:"medications"`
}

type importMedication struct {
	Name      string   `yaml:"name"`
	Dosage    string   `yaml:"dosage"`
	Frequency string   `yaml:"frequency"`
	Times     []string `yaml:"times"`
	Notes     string   `yaml:"notes"`
}

// NewImportCmd creates the bulk medication import command
func NewImportCmd() *cobra.Command {
	var email string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import-yaml <file>",
		Short: "Import medications from a YAML file",
		Long:  "Bulk-create medications for a user from a YAML file. Each entry needs a name, dosage and at least one HH:MM time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			var doc importFile
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("failed to parse YAML: %w", err)
			}
			if len(doc.Medications) == 0 {
				return fmt.Errorf("no medications found in %s", args[0])
			}

			for i, m := range doc.Medications {
				if m.Name == "" {
					return fmt.Errorf("medication %d: name is required", i+1)
				}
				if m.Dosage == "" {
					return fmt.Errorf("medication %d (%s): dosage is required", i+1, m.Name)
				}
				if len(m.Times) == 0 {
					return fmt.Errorf("medication %d (%s): at least one time is required", i+1, m.Name)
				}
				if err := validation.ValidateTimes(m.Times); err != nil {
					return fmt.Errorf("medication %d (%s): %w", i+1, m.Name, err)
				}
			}

			if dryRun {
				fmt.Printf("Validated %d medications (dry run, nothing written)\n", len(doc.Medications))
				return nil
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
			medicationRepo := database.NewMedicationRepository(db)
			ctx := context.Background()

			user, err := userRepo.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("failed to find user %s: %w", email, err)
			}

			count, err := medicationRepo.CountByUserID(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to count medications: %w", err)
			}

			for _, m := range doc.Medications {
				med := &models.Medication{
					ID:        uuid.New(),
					UserID:    user.ID,
					Name:      validation.SanitizeText(m.Name),
					Dosage:    validation.SanitizeText(m.Dosage),
					Frequency: validation.SanitizeText(m.Frequency),
					Times:     models.NormalizeTimes(m.Times),
					Color:     models.PaletteColor(count),
				}
				if m.Notes != "" {
					notes := validation.SanitizeText(m.Notes)
					med.Notes = &notes
				}
				if err := medicationRepo.Create(ctx, med); err != nil {
					return fmt.Errorf("failed to create %s: %w", m.Name, err)
				}
				count++
				fmt.Printf("✓ Imported %s (%s)\n", med.Name, med.Dosage)
			}

			fmt.Printf("Imported %d medications for %s\n", len(doc.Medications), email)
			fmt.Println("The next schedule request or dispatcher sweep will pick them up.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email of the user to import for (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without writing anything")

	return cmd
}
