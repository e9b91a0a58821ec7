// Package annotate drives the LLM annotation stages: product
// categorization, model-name extraction and schema-guided specification
// extraction. The annotators are thin capability wrappers over llm.Client;
// retry and backoff live entirely on this side of the pipeline so the
// matching core never retries anything.
package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stefan/catalog-agent/internal/llm"
	"github.com/stefan/catalog-agent/internal/schemas"
	"github.com/stefan/catalog-agent/internal/types"
)

// Sentinel labels written when annotation cannot produce a real value.
// Downstream stages treat them as "no annotation" rather than failing.
const (
	CategoryUnknown = "Unknown"
	CategoryError   = "Categorization Error"
	NoTitle         = "No Title"
)

// Annotator fills one annotation column of a catalog record.
type Annotator interface {
	// Name identifies the annotator in logs and checkpoint output.
	Name() string
	// Pending reports whether the record still needs this annotation,
	// so an interrupted run resumes where it left off.
	Pending(rec types.CatalogRecord) bool
	// Annotate computes the annotation value for one record.
	Annotate(ctx context.Context, rec types.CatalogRecord) (string, error)
	// Apply writes the annotation value onto the record.
	Apply(rec *types.CatalogRecord, value string)
}

// CategoryClassifier assigns a single category label per product.
type CategoryClassifier struct {
	Client llm.Client
}

func (c *CategoryClassifier) Name() string { return "categorize" }

func (c *CategoryClassifier) Pending(rec types.CatalogRecord) bool {
	return rec.Category == "" || rec.Category == CategoryError
}

func (c *CategoryClassifier) Annotate(ctx context.Context, rec types.CatalogRecord) (string, error) {
	if strings.TrimSpace(rec.Title) == "" || strings.TrimSpace(rec.RawSpecs) == "" {
		return CategoryUnknown, nil
	}

	prompt := fmt.Sprintf(`You are a precise product categorization assistant for tech products.
Your task is to identify the most appropriate category for the given product based on its title and specifications.
Provide only the single, most specific category name in your response (e.g., "Processor", "Motherboard", "Graphics Card", "RAM").

Title: %s
Specifications: %s

Category:`, rec.Title, rec.RawSpecs)

	category, err := llm.WithRetry(ctx, func() (string, error) {
		return c.Client.GenerateContent(ctx, prompt)
	})
	if err != nil {
		// Annotation failures degrade to a sentinel, never abort the batch.
		return CategoryError, nil
	}
	return strings.TrimSpace(category), nil
}

func (c *CategoryClassifier) Apply(rec *types.CatalogRecord, value string) {
	rec.Category = value
}

// ModelNameExtractor pulls the core model name out of a product title.
type ModelNameExtractor struct {
	Client llm.Client
}

func (m *ModelNameExtractor) Name() string { return "extract-models" }

func (m *ModelNameExtractor) Pending(rec types.CatalogRecord) bool {
	return rec.ModelName == ""
}

func (m *ModelNameExtractor) Annotate(ctx context.Context, rec types.CatalogRecord) (string, error) {
	if strings.TrimSpace(rec.Title) == "" {
		return NoTitle, nil
	}

	prompt := fmt.Sprintf(`You are a highly precise product model name extractor. Your task is to extract the core model name from the product title.

RULES:
- Output ONLY the raw text of the model name.
- Do NOT include any prefixes like "The model name is:".
- Do NOT include explanations or quotation marks.

EXAMPLES:
1. Product Title: "Gigabyte GeForce RTX 4070 GAMING OC 12GB GDDR6X"
   Model Name: GeForce RTX 4070 GAMING OC
2. Product Title: "CPU Intel Core i9-14900K 3.2GHz FC-LGA16A"
   Model Name: Core i9-14900K

Product Title: "%s"
Model Name:`, rec.Title)

	name, err := llm.WithRetry(ctx, func() (string, error) {
		return m.Client.GenerateContent(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("extracting model name: %w", err)
	}
	// Strip whitespace before quotes so a trailing newline does not
	// shield a closing quote from the trim.
	return strings.Trim(strings.TrimSpace(name), `"`), nil
}

func (m *ModelNameExtractor) Apply(rec *types.CatalogRecord, value string) {
	rec.ModelName = value
}

// SpecExtractor rewrites free-form specification text into the flat JSON
// shape of the product's per-category schema. Products whose category has
// no schema are skipped.
type SpecExtractor struct {
	Client llm.Client
	// Schemas maps category label to its flat key template (schema_<cat>.json).
	Schemas map[string]schemas.Template
}

func (s *SpecExtractor) Name() string { return "extract-specs" }

func (s *SpecExtractor) Pending(rec types.CatalogRecord) bool {
	// Already-extracted payloads parse as JSON objects.
	var obj map[string]any
	return json.Unmarshal([]byte(rec.RawSpecs), &obj) != nil
}

func (s *SpecExtractor) Annotate(ctx context.Context, rec types.CatalogRecord) (string, error) {
	if strings.TrimSpace(rec.RawSpecs) == "" {
		return "", nil
	}
	schema, ok := s.Schemas[rec.Category]
	if !ok {
		return "", nil
	}

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding schema for category %q: %w", rec.Category, err)
	}

	prompt := fmt.Sprintf(`You are a data extraction assistant. Your task is to extract the specified information from the product's details and format it according to the provided JSON schema.
Ensure the output is only the completed JSON and nothing else and be careful to escape quote characters inside values.
If a value is not found, use null.

Product Title: %s
Product Specifications: %s

JSON Schema to fill:
%s

Extracted Data:`, rec.Title, rec.RawSpecs, schemaJSON)

	raw, err := llm.WithRetry(ctx, func() (string, error) {
		return s.Client.GenerateJSON(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("extracting specs: %w", err)
	}

	// The payload must round-trip as a JSON object or the matching stage
	// will fall back to treating it as opaque text.
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return "", fmt.Errorf("model returned invalid JSON: %w", err)
	}
	if err := schemas.ValidatePayload(rec.Category, schema, raw); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return "", fmt.Errorf("extracted payload does not conform to the %q schema: %w", rec.Category, err)
		}
		// A broken schema document is a setup problem, not this record's;
		// the parseable payload is still usable by the matcher.
	}
	return raw, nil
}

func (s *SpecExtractor) Apply(rec *types.CatalogRecord, value string) {
	if value != "" {
		rec.RawSpecs = value
	}
}
