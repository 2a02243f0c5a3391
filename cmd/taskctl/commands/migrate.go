package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/dokbae/voice-todo/internal/config"
	"github.com/dokbae/voice-todo/internal/database"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the schema migration",
		Long:  "Create the tasks schema against DATABASE_URL if it does not exist yet",
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

			if err := db.Migrate(context.Background()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Println("Migration complete")
			return nil
		},
	}

	return cmd
}
