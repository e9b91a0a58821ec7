package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/stefan/catalog-agent/internal/annotate"
	"github.com/stefan/catalog-agent/internal/catalog"
	"github.com/stefan/catalog-agent/internal/llm"
	"github.com/stefan/catalog-agent/internal/observability"
	"github.com/stefan/catalog-agent/internal/types"
)

// geminiAPIKey resolves the Gemini key from a flag override or the
// environment.
func geminiAPIKey(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
}

// runAnnotation is the shared body of the annotation subcommands: load the
// catalog, run one annotator over it in batches with the output file as the
// checkpoint, and report.
func runAnnotation(inputFile, outputFile, apiKeyFlag, model string, batchSize int, verbose bool,
	buildAnnotator func(client llm.Client) (annotate.Annotator, error)) error {
	if inputFile == "" {
		return fmt.Errorf("--in is required")
	}
	if outputFile == "" {
		// In-place annotation: interrupted runs resume from the same file.
		outputFile = inputFile
	}

	apiKey, err := geminiAPIKey(apiKeyFlag)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := llm.NewGeminiClient(ctx, apiKey, model)
	if err != nil {
		return fmt.Errorf("creating LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	annotator, err := buildAnnotator(client)
	if err != nil {
		return err
	}

	records, err := catalog.LoadRecords(inputFile, "catalog", catalog.LoadOptions{})
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	return annotateRecords(ctx, os.Stdout, records, annotator, outputFile, batchSize, verbose)
}

// annotateRecords runs one annotator over the records in batches with the
// output file as the checkpoint, then reports.
func annotateRecords(ctx context.Context, out io.Writer, records []types.CatalogRecord,
	annotator annotate.Annotator, outputFile string, batchSize int, verbose bool) error {
	runner := annotate.NewRunner()
	if batchSize > 0 {
		runner.BatchSize = batchSize
	}
	runner.Verbose = verbose

	checkpoint := func(records []types.CatalogRecord) error {
		return catalog.WriteRecordsCSV(outputFile, records)
	}

	annotated, err := runner.Run(ctx, records, annotator, checkpoint)
	if err != nil {
		return fmt.Errorf("annotation run failed after %d records: %w", annotated, err)
	}

	// Final write covers the nothing-pending case where no batch ran.
	if err := checkpoint(records); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if verbose {
		observability.NewPrinter(out).PrintAnnotationSummary(annotator.Name(), annotated, len(records))
	}
	_, _ = fmt.Fprintf(out, "Annotated %d of %d records (%s)\n", annotated, len(records), annotator.Name())
	_, _ = fmt.Fprintf(out, "Output: %s\n", outputFile)
	return nil
}
