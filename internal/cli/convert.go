package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"subpad/internal/archive"
	"subpad/internal/document"
	"subpad/internal/importer"
	"subpad/internal/subtitle"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert subtitle or text files to another format",
	Long: `Import one or more files and export them in the chosen format.

Files that parse as SRT become structured documents; anything else is
carried through as raw text. Inputs sharing a base name are merged into a
single document before export.

Examples:
  subpad convert episode.srt -f vtt
  subpad convert season/*.srt -f lrc -o lyrics/
  subpad convert *.srt --zip`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().
		StringP("format", "f", "srt", "Output format (srt, vtt, txt, lrc, raw)")
	convertCmd.Flags().
		StringP("output", "o", ".", "Output directory (or zip path with --zip)")
	convertCmd.Flags().
		Bool("zip", false, "Bundle all outputs into one zip archive")
}

func runConvert(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	zipped, _ := cmd.Flags().GetBool("zip")

	format := subtitle.Format(formatStr)
	if !subtitle.IsValidFormat(format) {
		return fmt.Errorf(
			"unsupported format %q: use srt, vtt, txt, lrc, or raw",
			formatStr,
		)
	}

	sources := make([]importer.Source, len(args))
	for i, arg := range args {
		sources[i] = importer.FromPath(arg)
	}

	logger.Infow("Importing files", "count", len(sources))

	var collection document.Collection
	collection, summary := importer.ImportFiles(
		context.Background(),
		collection,
		sources,
		nil,
	)

	rows := make([][]string, 0, len(collection.Documents)+summary.Failed)
	for _, doc := range collection.Documents {
		state := "parsed"
		if doc.Dirty {
			state = "raw text"
		}
		rows = append(rows, []string{
			doc.Name,
			strconv.Itoa(len(doc.Entries)),
			state,
		})
	}
	for _, failure := range summary.Errors {
		rows = append(rows, []string{failure.Name, "-", "read failed"})
	}
	fmt.Println(renderTable([]string{"File", "Entries", "Status"}, rows))

	if len(collection.Documents) == 0 {
		return fmt.Errorf("no readable input files")
	}

	if zipped {
		return writeBundle(collection.Documents, format, outputPath)
	}
	return writeFiles(collection.Documents, format, outputPath)
}

func writeFiles(
	docs []document.Document,
	format subtitle.Format,
	outputDir string,
) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, doc := range docs {
		name, content := archive.ExportDocument(doc, format)
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	fmt.Printf("Exported %d file(s) to %s\n", len(docs), outputDir)
	return nil
}

func writeBundle(
	docs []document.Document,
	format subtitle.Format,
	outputPath string,
) error {
	data, err := archive.Bundle(docs, format, func(percent int) {
		logger.Debugw("Compressing", "percent", percent)
	})
	if err != nil {
		return fmt.Errorf("bundle failed: %w", err)
	}

	if info, statErr := os.Stat(outputPath); statErr == nil && info.IsDir() {
		outputPath = filepath.Join(outputPath, archive.BundleName(time.Now()))
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	fmt.Printf("Bundled %d file(s) into %s\n", len(docs), outputPath)
	return nil
}
