package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stefan/catalog-agent/internal/catalog"
	"github.com/stefan/catalog-agent/internal/llm"
	"github.com/stefan/catalog-agent/internal/schemas"
)

var genSchemasCmd = &cobra.Command{
	Use:   "gen-schemas",
	Short: "Generate a flat spec schema for every category in a catalog",
	Long:  "Collect the distinct category labels from a categorized catalog CSV and ask the LLM for a flat key schema per category. Existing schema files are kept.",
	RunE:  runGenSchemas,
}

var (
	genSchemasInputFile  string
	genSchemasDir        string
	genSchemasAPIKey     string
	genSchemasModel      string
	genSchemasVerbose    bool
)

func init() {
	genSchemasCmd.Flags().StringVarP(&genSchemasInputFile, "in", "i", "", "Path to categorized catalog CSV")
	genSchemasCmd.Flags().StringVar(&genSchemasDir, "schemas-dir", "schemas", "Directory to write schema files into")
	genSchemasCmd.Flags().StringVar(&genSchemasAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	genSchemasCmd.Flags().StringVar(&genSchemasModel, "model", "", "Gemini model name")
	genSchemasCmd.Flags().BoolVarP(&genSchemasVerbose, "verbose", "v", false, "Print per-category progress")

	rootCmd.AddCommand(genSchemasCmd)
}

func runGenSchemas(_ *cobra.Command, _ []string) error {
	if genSchemasInputFile == "" {
		return fmt.Errorf("--in is required")
	}

	apiKey, err := geminiAPIKey(genSchemasAPIKey)
	if err != nil {
		return err
	}

	records, err := catalog.LoadRecords(genSchemasInputFile, "catalog", catalog.LoadOptions{})
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	// Distinct categories in first-seen order.
	seen := make(map[string]bool)
	var categories []string
	for _, rec := range records {
		if !seen[rec.Category] {
			seen[rec.Category] = true
			categories = append(categories, rec.Category)
		}
	}

	if err := os.MkdirAll(genSchemasDir, 0755); err != nil {
		return fmt.Errorf("creating schema directory: %w", err)
	}

	ctx := context.Background()
	client, err := llm.NewGeminiClient(ctx, apiKey, genSchemasModel)
	if err != nil {
		return fmt.Errorf("creating LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	generator := &schemas.Generator{Client: client, Verbose: genSchemasVerbose}
	generated, err := generator.GenerateForCategories(ctx, categories, genSchemasDir)
	if err != nil {
		return fmt.Errorf("schema generation failed after %d schemas: %w", generated, err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Generated %d schemas in %s\n", generated, genSchemasDir)
	return nil
}
