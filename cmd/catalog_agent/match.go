package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stefan/catalog-agent/internal/catalog"
	"github.com/stefan/catalog-agent/internal/config"
	"github.com/stefan/catalog-agent/internal/matching"
	"github.com/stefan/catalog-agent/internal/observability"
	"github.com/stefan/catalog-agent/internal/similarity"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match products across two catalogs by embedding similarity",
	Long:  "Load two annotated catalog CSVs, embed cleaned titles and flattened specs, and commit greedy 1:1 matches on blended cosine similarity.",
	RunE:  runMatch,
}

var (
	matchConfigFile     string
	matchCatalogA       string
	matchCatalogB       string
	matchOutputFile     string
	matchXLSXFile       string
	matchTopK           int
	matchTitleThreshold float64
	matchSpecThreshold  float64
	matchOpenAIKey      string
	matchEmbeddingModel string
	matchVerbose        bool
)

func init() {
	matchCmd.Flags().StringVar(&matchConfigFile, "config", "", "Path to JSON config file")
	matchCmd.Flags().StringVar(&matchCatalogA, "catalog-a", "", "Store 1 annotated catalog CSV")
	matchCmd.Flags().StringVar(&matchCatalogB, "catalog-b", "", "Store 2 annotated catalog CSV")
	matchCmd.Flags().StringVarP(&matchOutputFile, "out", "o", "matched_products.csv", "Matched-pairs output CSV")
	matchCmd.Flags().StringVar(&matchXLSXFile, "xlsx", "", "Also write an XLSX report to this path")
	matchCmd.Flags().IntVar(&matchTopK, "top-k", matching.DefaultTopK, "Title-similarity candidates per record")
	matchCmd.Flags().Float64Var(&matchTitleThreshold, "title-threshold", matching.DefaultTitleThreshold, "Minimum title similarity")
	matchCmd.Flags().Float64Var(&matchSpecThreshold, "spec-threshold", matching.DefaultSpecThreshold, "Minimum spec similarity")
	matchCmd.Flags().StringVar(&matchOpenAIKey, "openai-api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	matchCmd.Flags().StringVar(&matchEmbeddingModel, "embedding-model", "", "Embedding model name")
	matchCmd.Flags().BoolVarP(&matchVerbose, "verbose", "v", false, "Print catalog and match summaries")

	rootCmd.AddCommand(matchCmd)
}

// applyMatchConfig loads the config file and merges it with CLI flags.
// Flags explicitly set on the command line win over the file; anything
// still unset falls back to the matching defaults.
func applyMatchConfig(cmd *cobra.Command) error {
	if matchConfigFile == "" {
		return nil
	}
	loaded, err := config.Load(matchConfigFile)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg := *loaded

	// Only override if the flag was explicitly set.
	if cmd.Flags().Changed("catalog-a") {
		cfg.CatalogA = matchCatalogA
	}
	if cmd.Flags().Changed("catalog-b") {
		cfg.CatalogB = matchCatalogB
	}
	if cmd.Flags().Changed("out") {
		cfg.Output = matchOutputFile
	}
	if cmd.Flags().Changed("openai-api-key") {
		cfg.OpenAIAPIKey = matchOpenAIKey
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.EmbeddingModel = matchEmbeddingModel
	}
	if cmd.Flags().Changed("top-k") {
		cfg.TopK = matchTopK
	}
	if cmd.Flags().Changed("title-threshold") {
		cfg.TitleThreshold = matchTitleThreshold
	}
	if cmd.Flags().Changed("spec-threshold") {
		cfg.SpecThreshold = matchSpecThreshold
	}

	merged := cfg.MergeWithDefaults(config.Config{
		TopK:           matching.DefaultTopK,
		TitleThreshold: matching.DefaultTitleThreshold,
		SpecThreshold:  matching.DefaultSpecThreshold,
	})
	matchCatalogA = merged.CatalogA
	matchCatalogB = merged.CatalogB
	matchOpenAIKey = merged.OpenAIAPIKey
	matchEmbeddingModel = merged.EmbeddingModel
	matchTopK = merged.TopK
	matchTitleThreshold = merged.TitleThreshold
	matchSpecThreshold = merged.SpecThreshold
	if merged.Output != "" {
		matchOutputFile = merged.Output
	}
	return nil
}

func runMatch(cmd *cobra.Command, _ []string) error {
	if err := applyMatchConfig(cmd); err != nil {
		return err
	}
	if matchCatalogA == "" || matchCatalogB == "" {
		return fmt.Errorf("--catalog-a and --catalog-b are required")
	}

	apiKey := matchOpenAIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("embedding API key is required (set OPENAI_API_KEY environment variable or use --openai-api-key flag)")
	}

	a, err := catalog.Load(matchCatalogA, storeName(matchCatalogA), catalog.LoadOptions{})
	if err != nil {
		return fmt.Errorf("loading catalog A: %w", err)
	}
	b, err := catalog.Load(matchCatalogB, storeName(matchCatalogB), catalog.LoadOptions{})
	if err != nil {
		return fmt.Errorf("loading catalog B: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	if matchVerbose {
		printer.PrintCatalogSummary(a)
		printer.PrintCatalogSummary(b)
	}

	embedder, err := similarity.NewOpenAIEmbedder(apiKey, matchEmbeddingModel)
	if err != nil {
		return err
	}

	matcher := matching.NewGreedyMatcher(embedder)
	matcher.TopK = matchTopK
	matcher.TitleThreshold = matchTitleThreshold
	matcher.SpecThreshold = matchSpecThreshold
	matcher.Verbose = matchVerbose

	matches, err := matcher.Match(context.Background(), a, b)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	if err := catalog.WriteMatchesCSV(matchOutputFile, matches); err != nil {
		return fmt.Errorf("writing matches: %w", err)
	}
	if matchXLSXFile != "" {
		if err := catalog.WriteMatchesXLSX(matchXLSXFile, matches); err != nil {
			return fmt.Errorf("writing XLSX report: %w", err)
		}
	}

	if matchVerbose {
		printer.PrintMatchSummary(matches, a, b)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Matched %d products\n", len(matches))
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", matchOutputFile)
	return nil
}

// storeName derives a catalog name from its file path.
func storeName(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.Index(base, "."); idx >= 0 {
		base = base[:idx]
	}
	return base
}
