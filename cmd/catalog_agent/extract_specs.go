package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stefan/catalog-agent/internal/annotate"
	"github.com/stefan/catalog-agent/internal/llm"
	"github.com/stefan/catalog-agent/internal/schemas"
)

var extractSpecsCmd = &cobra.Command{
	Use:   "extract-specs",
	Short: "Rewrite free-form spec text into per-category JSON",
	Long:  "Run the spec extractor over a categorized catalog CSV, filling each product's category schema. Products whose category has no schema are left untouched.",
	RunE:  runExtractSpecs,
}

var (
	extractSpecsInputFile  string
	extractSpecsOutputFile string
	extractSpecsSchemasDir string
	extractSpecsAPIKey     string
	extractSpecsModel      string
	extractSpecsBatchSize  int
	extractSpecsVerbose    bool
)

func init() {
	extractSpecsCmd.Flags().StringVarP(&extractSpecsInputFile, "in", "i", "", "Path to catalog CSV")
	extractSpecsCmd.Flags().StringVarP(&extractSpecsOutputFile, "out", "o", "", "Path to output CSV (defaults to in-place)")
	extractSpecsCmd.Flags().StringVar(&extractSpecsSchemasDir, "schemas-dir", "schemas", "Directory of per-category schema files")
	extractSpecsCmd.Flags().StringVar(&extractSpecsAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	extractSpecsCmd.Flags().StringVar(&extractSpecsModel, "model", "", "Gemini model name")
	extractSpecsCmd.Flags().IntVar(&extractSpecsBatchSize, "batch-size", annotate.DefaultBatchSize, "Concurrent requests per batch")
	extractSpecsCmd.Flags().BoolVarP(&extractSpecsVerbose, "verbose", "v", false, "Print batch progress")

	rootCmd.AddCommand(extractSpecsCmd)
}

func runExtractSpecs(_ *cobra.Command, _ []string) error {
	return runAnnotation(extractSpecsInputFile, extractSpecsOutputFile, extractSpecsAPIKey, extractSpecsModel,
		extractSpecsBatchSize, extractSpecsVerbose,
		func(client llm.Client) (annotate.Annotator, error) {
			templates, err := schemas.LoadDir(extractSpecsSchemasDir)
			if err != nil {
				return nil, fmt.Errorf("loading schemas: %w", err)
			}
			if len(templates) == 0 {
				return nil, fmt.Errorf("no schema files in %s (run gen-schemas first)", extractSpecsSchemasDir)
			}
			return &annotate.SpecExtractor{Client: client, Schemas: templates}, nil
		})
}
