package main

import (
	"github.com/spf13/cobra"

	"github.com/stefan/catalog-agent/internal/annotate"
	"github.com/stefan/catalog-agent/internal/llm"
)

var extractModelsCmd = &cobra.Command{
	Use:   "extract-models",
	Short: "Extract the core model name from every product title",
	RunE:  runExtractModels,
}

var (
	extractModelsInputFile  string
	extractModelsOutputFile string
	extractModelsAPIKey     string
	extractModelsModel      string
	extractModelsBatchSize  int
	extractModelsVerbose    bool
)

func init() {
	extractModelsCmd.Flags().StringVarP(&extractModelsInputFile, "in", "i", "", "Path to catalog CSV")
	extractModelsCmd.Flags().StringVarP(&extractModelsOutputFile, "out", "o", "", "Path to output CSV (defaults to in-place)")
	extractModelsCmd.Flags().StringVar(&extractModelsAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	extractModelsCmd.Flags().StringVar(&extractModelsModel, "model", "", "Gemini model name")
	extractModelsCmd.Flags().IntVar(&extractModelsBatchSize, "batch-size", annotate.DefaultBatchSize, "Concurrent requests per batch")
	extractModelsCmd.Flags().BoolVarP(&extractModelsVerbose, "verbose", "v", false, "Print batch progress")

	rootCmd.AddCommand(extractModelsCmd)
}

func runExtractModels(_ *cobra.Command, _ []string) error {
	return runAnnotation(extractModelsInputFile, extractModelsOutputFile, extractModelsAPIKey, extractModelsModel,
		extractModelsBatchSize, extractModelsVerbose,
		func(client llm.Client) (annotate.Annotator, error) {
			return &annotate.ModelNameExtractor{Client: client}, nil
		})
}
