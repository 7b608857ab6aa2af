package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ocrstudio/ocrstudio/internal/batch"
	"github.com/ocrstudio/ocrstudio/internal/config"
	"github.com/ocrstudio/ocrstudio/internal/ocr"
	"github.com/ocrstudio/ocrstudio/internal/structure"
	"github.com/ocrstudio/ocrstudio/internal/vl"
	"github.com/spf13/cobra"
)

var batchExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

func newBatchCmd() *cobra.Command {
	var (
		jobType     string
		lang        string
		version     string
		reportPath  string
		parquetPath string
	)

	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Run inference over every document in a directory",
		Long: `Walks a directory, runs the chosen engine on every supported file,
and writes a YAML report. Structure jobs also accept PDFs.

Results can additionally be written as a parquet file for downstream
analysis tooling.`,
		Example: `  # OCR every image under ./scans
  ocrstudio batch ./scans --type ocr --lang en

  # Structure parsing with a parquet results file
  ocrstudio batch ./docs --type structure --parquet results.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			files, err := collectBatchFiles(args[0], jobType == "structure")
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no supported files under %s", args[0])
			}

			processor := batch.New(ocr.New(cfg), structure.New(cfg), vl.New(cfg))
			opts := batch.Options{Lang: lang, Version: version}
			job, err := processor.Run(cmd.Context(), jobType, files, opts)
			if err != nil {
				return err
			}

			report := batch.BuildReport(job, opts)
			if err := batch.WriteYAML(report, reportPath); err != nil {
				return err
			}
			fmt.Printf("Processed %d files (%d ok, %d failed), report written to %s\n",
				job.Total, len(job.Results), len(job.Errors), reportPath)

			if parquetPath != "" {
				if err := batch.WriteParquet(report, parquetPath); err != nil {
					return err
				}
				fmt.Printf("Parquet results written to %s\n", parquetPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&jobType, "type", "t", "ocr", "Job type: ocr, structure, or vl")
	cmd.Flags().StringVarP(&lang, "lang", "l", "en", "Recognition language code")
	cmd.Flags().StringVar(&version, "version", "", "Recognition pipeline version")
	cmd.Flags().StringVarP(&reportPath, "output", "o", "batch-report.yaml", "YAML report path")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Optional parquet results path")

	return cmd
}

func collectBatchFiles(dir string, allowPDF bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if batchExtensions[ext] || (allowPDF && ext == ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
