package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/dokbae/voice-todo/internal/config"
	"github.com/dokbae/voice-todo/internal/database"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tasks",
		Long:  "List stored tasks ordered by due date ascending",
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

			taskRepo := database.NewTaskRepository(db)
			tasks, err := taskRepo.List(context.Background(), 0, limit)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			if len(tasks) == 0 {
				fmt.Println("No tasks stored")
				return nil
			}

			for _, task := range tasks {
				status := " "
				if task.IsCompleted {
					status = "x"
				}
				due := "-"
				if task.DueDate != nil {
					due = task.DueDate.Format("2006-01-02 15:04")
				}
				fmt.Printf("[%s] %-16s %s (%s)\n", status, due, task.Title, task.ID)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of tasks to list")

	return cmd
}
