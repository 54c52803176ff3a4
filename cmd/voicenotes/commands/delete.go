// ABOUTME: CLI command to delete a stored note by id
// ABOUTME: Removes the note's point from the vector collection
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

// NewDeleteCmd creates delete command
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Long: `Delete a stored note by its id.

Use 'voicenotes list' to find note ids.

Examples:
  voicenotes delete 6b1f6f0e-8f2a-4c8e-9f4b-2d1a3c5e7f90`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	pipe, _, err := newPipeline()
	if err != nil {
		return err
	}

	id := args[0]
	if err := pipe.Delete(context.Background(), id); err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}

	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted note %s\n", id)
	}
	return nil
}
