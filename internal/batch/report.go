package batch

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/ocrstudio/ocrstudio/internal/ocr"
	"github.com/ocrstudio/ocrstudio/internal/storage"
	"github.com/ocrstudio/ocrstudio/internal/structure"
	"github.com/ocrstudio/ocrstudio/internal/vl"
)

// ReportConfig is the header section of a batch report.
type ReportConfig struct {
	JobType   string `yaml:"jobtype"`
	Lang      string `yaml:"lang,omitempty"`
	Version   string `yaml:"version,omitempty"`
	Files     int    `yaml:"files"`
	Timestamp string `yaml:"timestamp"`
}

// ReportEntry is one file's outcome in a batch report.
type ReportEntry struct {
	File     string `yaml:"file" parquet:"file"`
	Status   string `yaml:"status" parquet:"status"`
	FullText string `yaml:"fulltext,omitempty" parquet:"full_text,optional"`
	Markdown string `yaml:"markdown,omitempty" parquet:"markdown,optional"`
	Error    string `yaml:"error,omitempty" parquet:"error,optional"`
}

// Report is the YAML document written after a CLI batch run.
type Report struct {
	Config  ReportConfig  `yaml:"config"`
	Results []ReportEntry `yaml:"results"`
}

// BuildReport flattens a finished job into report entries.
func BuildReport(job *storage.Job, opts Options) Report {
	report := Report{
		Config: ReportConfig{
			JobType:   job.Type,
			Lang:      opts.Lang,
			Version:   opts.Version,
			Files:     job.Total,
			Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		},
		Results: make([]ReportEntry, 0, len(job.Results)+len(job.Errors)),
	}
	for _, r := range job.Results {
		entry := ReportEntry{File: r.File, Status: "ok"}
		switch data := r.Data.(type) {
		case *ocr.Result:
			entry.FullText = data.FullText
		case *structure.Result:
			entry.Markdown = data.Markdown
		case *vl.Result:
			entry.FullText = data.FullText
			entry.Markdown = data.Markdown
		}
		report.Results = append(report.Results, entry)
	}
	for _, e := range job.Errors {
		report.Results = append(report.Results, ReportEntry{File: e.File, Status: "error", Error: e.Error})
	}
	return report
}

// WriteYAML writes the report as a YAML file.
func WriteYAML(report Report, path string) error {
	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteParquet writes the report entries as a parquet file for downstream
// analysis tooling.
func WriteParquet(report Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	writer := parquet.NewGenericWriter[ReportEntry](f)
	if _, err := writer.Write(report.Results); err != nil {
		f.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}
