package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocrstudio",
		Short: "Document OCR web studio with layout parsing and model management",
		Long: `OCR Studio serves a browser interface for running text recognition,
document structure parsing, and vision-language document understanding
on uploaded images and PDFs.

It also manages the on-disk model registry and runs batch jobs over
directories of documents from the command line.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newBatchCmd())

	return cmd
}
