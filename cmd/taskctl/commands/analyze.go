package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dokbae/voice-todo/internal/clock"
	"github.com/dokbae/voice-todo/internal/extract"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command, a debugging aid for the
// lexical extraction policy: it prints how a sentence would resolve
// against the current anchor without touching any external service.
func NewAnalyzeCmd() *cobra.Command {
	var timezone string

	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Run the lexical extractor on a sentence",
		Long:  "Resolve date and title from a Korean sentence against the current anchor time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallClock, err := clock.NewWall(timezone)
			if err != nil {
				return fmt.Errorf("failed to load timezone: %w", err)
			}
			anchor := wallClock.Now()

			text := strings.Join(args, " ")
			result, err := extract.NewLexical().ExtractTask(context.Background(), text, anchor)
			if err != nil {
				return fmt.Errorf("extraction failed: %w", err)
			}

			fmt.Printf("Anchor:  %s\n", anchor.Format("2006-01-02 15:04:05 (Mon)"))
			fmt.Printf("Title:   %s\n", result.Title)
			if result.DueDate != nil {
				fmt.Printf("Due:     %s\n", result.DueDate.Format("2006-01-02 15:04:05 (Mon)"))
				fmt.Printf("Matched: %q\n", result.Matched)
			} else {
				fmt.Println("Due:     none")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", clock.DefaultTimezone, "IANA timezone for the anchor")

	return cmd
}
