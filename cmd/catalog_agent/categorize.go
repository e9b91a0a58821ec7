package main

import (
	"github.com/spf13/cobra"

	"github.com/stefan/catalog-agent/internal/annotate"
	"github.com/stefan/catalog-agent/internal/llm"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Assign a category label to every product via the LLM",
	Long:  "Run the category classifier over a scraped catalog CSV. Progress is checkpointed after every batch, so an interrupted run picks up where it left off.",
	RunE:  runCategorize,
}

var (
	categorizeInputFile  string
	categorizeOutputFile string
	categorizeAPIKey     string
	categorizeModel      string
	categorizeBatchSize  int
	categorizeVerbose    bool
)

func init() {
	categorizeCmd.Flags().StringVarP(&categorizeInputFile, "in", "i", "", "Path to catalog CSV")
	categorizeCmd.Flags().StringVarP(&categorizeOutputFile, "out", "o", "", "Path to output CSV (defaults to in-place)")
	categorizeCmd.Flags().StringVar(&categorizeAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	categorizeCmd.Flags().StringVar(&categorizeModel, "model", "", "Gemini model name")
	categorizeCmd.Flags().IntVar(&categorizeBatchSize, "batch-size", annotate.DefaultBatchSize, "Concurrent requests per batch")
	categorizeCmd.Flags().BoolVarP(&categorizeVerbose, "verbose", "v", false, "Print batch progress")

	rootCmd.AddCommand(categorizeCmd)
}

func runCategorize(_ *cobra.Command, _ []string) error {
	return runAnnotation(categorizeInputFile, categorizeOutputFile, categorizeAPIKey, categorizeModel,
		categorizeBatchSize, categorizeVerbose,
		func(client llm.Client) (annotate.Annotator, error) {
			return &annotate.CategoryClassifier{Client: client}, nil
		})
}
