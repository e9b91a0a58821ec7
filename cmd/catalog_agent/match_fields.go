package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stefan/catalog-agent/internal/catalog"
	"github.com/stefan/catalog-agent/internal/matching"
	"github.com/stefan/catalog-agent/internal/observability"
)

var matchFieldsCmd = &cobra.Command{
	Use:   "match-fields",
	Short: "Match products across two catalogs by model name and category",
	Long:  "Load two annotated catalog CSVs and match without embeddings: first on exact normalized model name within the same category, then on category plus spec-key overlap above a threshold.",
	RunE:  runMatchFields,
}

var (
	matchFieldsCatalogA      string
	matchFieldsCatalogB      string
	matchFieldsOutputFile    string
	matchFieldsXLSXFile      string
	matchFieldsSpecThreshold float64
	matchFieldsVerbose       bool
)

func init() {
	matchFieldsCmd.Flags().StringVar(&matchFieldsCatalogA, "catalog-a", "", "Store 1 annotated catalog CSV")
	matchFieldsCmd.Flags().StringVar(&matchFieldsCatalogB, "catalog-b", "", "Store 2 annotated catalog CSV")
	matchFieldsCmd.Flags().StringVarP(&matchFieldsOutputFile, "out", "o", "matches.csv", "Matched-pairs output CSV")
	matchFieldsCmd.Flags().StringVar(&matchFieldsXLSXFile, "xlsx", "", "Also write an XLSX report to this path")
	matchFieldsCmd.Flags().Float64Var(&matchFieldsSpecThreshold, "spec-threshold", matching.DefaultOverlapThreshold, "Phase-2 spec overlap threshold")
	matchFieldsCmd.Flags().BoolVarP(&matchFieldsVerbose, "verbose", "v", false, "Print catalog and match summaries")

	rootCmd.AddCommand(matchFieldsCmd)
}

func runMatchFields(_ *cobra.Command, _ []string) error {
	if matchFieldsCatalogA == "" || matchFieldsCatalogB == "" {
		return fmt.Errorf("--catalog-a and --catalog-b are required")
	}

	opts := catalog.LoadOptions{RequireFields: true}
	a, err := catalog.Load(matchFieldsCatalogA, storeName(matchFieldsCatalogA), opts)
	if err != nil {
		return fmt.Errorf("loading catalog A: %w", err)
	}
	b, err := catalog.Load(matchFieldsCatalogB, storeName(matchFieldsCatalogB), opts)
	if err != nil {
		return fmt.Errorf("loading catalog B: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	if matchFieldsVerbose {
		printer.PrintCatalogSummary(a)
		printer.PrintCatalogSummary(b)
	}

	matcher := &matching.TwoPhaseMatcher{SpecThreshold: matchFieldsSpecThreshold}
	matches, err := matcher.Match(context.Background(), a, b)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	if err := catalog.WriteMatchesCSV(matchFieldsOutputFile, matches); err != nil {
		return fmt.Errorf("writing matches: %w", err)
	}
	if matchFieldsXLSXFile != "" {
		if err := catalog.WriteMatchesXLSX(matchFieldsXLSXFile, matches); err != nil {
			return fmt.Errorf("writing XLSX report: %w", err)
		}
	}

	if matchFieldsVerbose {
		printer.PrintMatchSummary(matches, a, b)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Matched %d products\n", len(matches))
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", matchFieldsOutputFile)
	return nil
}
