// ABOUTME: CLI command to add a new note from text or an audio recording
// ABOUTME: Audio is transcribed first; either path embeds and stores the note
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/util"
	"github.com/joho/godotenv"
)

var (
	addAudio string
	addTags  []string
)

// NewAddCmd creates add command
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a new note",
		Long: `Add a new note from text, stdin, or an audio recording.

Audio files are transcribed with OpenAI before storing. Either way the
note is embedded and written to the vector collection.

Examples:
  voicenotes add "buy milk and eggs"
  voicenotes add --audio note.mp3
  voicenotes add --tags=errands,shopping "pick up dry cleaning"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().StringVar(&addAudio, "audio", "", "Transcribe and store this audio file")
	cmd.Flags().StringSliceVar(&addTags, "tags", []string{}, "Tags for the note (comma-separated)")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	pipe, cfg, err := newPipeline()
	if err != nil {
		return err
	}

	var metadata map[string]string
	if len(addTags) > 0 {
		metadata = map[string]string{"tags": strings.Join(addTags, ",")}
	}

	var note *models.Note
	if addAudio != "" {
		audio, err := os.ReadFile(addAudio)
		if err != nil {
			return fmt.Errorf("reading audio file: %w", err)
		}
		// Retrying re-runs the whole transcribe+embed+store sequence; the
		// pipeline never retries on its own.
		err = util.RetryTransient(cfg.MaxRetries, cfg.RetryDelay, func() error {
			var ingestErr error
			note, ingestErr = pipe.IngestAudio(context.Background(), audio, metadata)
			return ingestErr
		})
		if err != nil {
			return fmt.Errorf("ingesting audio note: %w", err)
		}
	} else {
		var text string
		if len(args) > 0 {
			text = args[0]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			text = string(data)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			return fmt.Errorf("no text provided")
		}

		err = util.RetryTransient(cfg.MaxRetries, cfg.RetryDelay, func() error {
			var ingestErr error
			note, ingestErr = pipe.IngestText(context.Background(), text, metadata)
			return ingestErr
		})
		if err != nil {
			return fmt.Errorf("ingesting note: %w", err)
		}
	}

	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved note %s\n", note.ID)
		if verbose {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", truncate(note.Text, 80))
		}
	}
	return nil
}
