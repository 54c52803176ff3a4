// ABOUTME: CLI command to list stored notes
// ABOUTME: Browses the collection newest first without a search query
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

var (
	listLimit int
)

// NewListCmd creates list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored notes",
		Long: `List stored notes, newest first.

Examples:
  voicenotes list
  voicenotes list --limit 50
  voicenotes list --format json`,
		RunE: runList,
	}

	cmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum notes to show")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if err := validatePositiveInt(listLimit, "limit"); err != nil {
		return err
	}

	pipe, _, err := newPipeline()
	if err != nil {
		return err
	}

	results, err := pipe.List(context.Background(), listLimit)
	if err != nil {
		return fmt.Errorf("listing notes: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No notes stored yet")
		}
		return nil
	}

	return printResults(cmd, results, false)
}
