package cmd

import (
	"fmt"

	"github.com/ocrstudio/ocrstudio/internal/config"
	"github.com/ocrstudio/ocrstudio/internal/registry"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage the on-disk model registry",
	}

	cmd.AddCommand(newModelsListCmd())
	cmd.AddCommand(newModelsDownloadCmd())
	cmd.AddCommand(newModelsDeleteCmd())

	return cmd
}

func newModelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known models and their installed state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			reg := registry.New(cfg.ModelDir, cfg.InsecureDownloads)

			models, usage := reg.List()
			for _, m := range models {
				state := " "
				if m.Installed {
					state = "*"
				}
				fmt.Printf("%s %-32s %-12s %-10s %4d MB\n", state, m.ID, m.Type, m.Version, m.SizeMB)
			}
			fmt.Printf("\nDisk usage: %.2f MB in %s\n", float64(usage)/(1024*1024), reg.Dir())
			return nil
		},
	}
}

func newModelsDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <model-id>",
		Short: "Download and install a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			reg := registry.New(cfg.ModelDir, cfg.InsecureDownloads)

			path, err := reg.Download(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Installed %s at %s\n", args[0], path)
			return nil
		},
	}
}

func newModelsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <model-id>",
		Short: "Delete an installed model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			reg := registry.New(cfg.ModelDir, cfg.InsecureDownloads)

			if err := reg.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
