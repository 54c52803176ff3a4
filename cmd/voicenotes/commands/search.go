// ABOUTME: CLI command to search notes semantically
// ABOUTME: Embeds the query and ranks stored notes by vector similarity
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/voicenotes/internal/models"
	"github.com/joho/godotenv"
)

var (
	searchLimit int
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search notes by meaning",
		Long: `Search stored notes semantically.

The query is embedded and compared against stored note vectors; results
are ranked by similarity, best match first.

Examples:
  voicenotes search "grocery list"
  voicenotes search --limit 10 "dentist"
  voicenotes search --format json "project ideas"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	query := args[0]

	pipe, _, err := newPipeline()
	if err != nil {
		return err
	}

	results, err := pipe.Retrieve(context.Background(), query, searchLimit, nil)
	if err != nil {
		return fmt.Errorf("searching notes: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No notes found for query: %s\n", query)
		}
		return nil
	}

	return printResults(cmd, results, true)
}

// printResults renders scored notes as a table or JSON, shared with list
func printResults(cmd *cobra.Command, results []models.ScoredNote, withScore bool) error {
	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if withScore {
		fmt.Fprintf(w, "SCORE\tCREATED\tID\tTEXT\n")
		fmt.Fprintf(w, "-----\t-------\t--\t----\n")
	} else {
		fmt.Fprintf(w, "CREATED\tID\tTEXT\n")
		fmt.Fprintf(w, "-------\t--\t----\n")
	}

	for _, r := range results {
		if withScore {
			score := "-"
			if r.Score != nil {
				score = fmt.Sprintf("%.3f", *r.Score)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				score,
				formatTime(r.Note.CreatedAt),
				r.Note.ID,
				truncate(r.Note.Text, 60))
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				formatTime(r.Note.CreatedAt),
				r.Note.ID,
				truncate(r.Note.Text, 60))
		}
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d note(s)\n", len(results))
	}
	return nil
}
