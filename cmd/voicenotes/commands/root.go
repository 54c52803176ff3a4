// ABOUTME: Root command for the voicenotes CLI with global flags
// ABOUTME: Wires up all subcommands and shared output settings
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██╗   ██╗ ██████╗ ██╗ ██████╗███████╗███╗   ██╗ ██████╗ ████████╗███████╗███████╗
██║   ██║██╔═══██╗██║██╔════╝██╔════╝████╗  ██║██╔═══██╗╚══██╔══╝██╔════╝██╔════╝
██║   ██║██║   ██║██║██║     █████╗  ██╔██╗ ██║██║   ██║   ██║   █████╗  ███████╗
╚██╗ ██╔╝██║   ██║██║██║     ██╔══╝  ██║╚██╗██║██║   ██║   ██║   ██╔══╝  ╚════██║
 ╚████╔╝ ╚██████╔╝██║╚██████╗███████╗██║ ╚████║╚██████╔╝   ██║   ███████╗███████║
  ╚═══╝   ╚═════╝ ╚═╝ ╚═════╝╚══════╝╚═╝  ╚═══╝ ╚═════╝    ╚═╝   ╚══════╝╚══════╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voicenotes",
		Short: "Voice notes with semantic recall",
		Long: banner + `

Capture quick notes from audio transcripts or text, store them in a
Qdrant vector collection, and find them later by meaning rather than
exact keywords. Transcription and embeddings use OpenAI.

Set OPENAI_API_KEY, QDRANT_URL, and QDRANT_API_KEY in the environment
or a .env file.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewAddCmd(),
		NewSearchCmd(),
		NewListCmd(),
		NewDeleteCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
