package schemas

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/stefan/catalog-agent/internal/llm"
)

// interCategoryDelay is the courtesy pause between schema-generation calls.
const interCategoryDelay = time.Second

// skipCategories are annotation sentinels that never get a schema.
var skipCategories = map[string]bool{
	"":                     true,
	"Unknown":              true,
	"Categorization Error": true,
}

// Generator produces one flat key template per product category via the
// LLM.
type Generator struct {
	Client  llm.Client
	Verbose bool
}

// GenerateForCategories writes a schema file into dir for every category
// not already present there. Returns the number of schemas generated.
func (g *Generator) GenerateForCategories(ctx context.Context, categories []string, dir string) (int, error) {
	existing, err := LoadDir(dir)
	if err != nil {
		return 0, err
	}

	generated := 0
	for _, category := range categories {
		if skipCategories[category] {
			continue
		}
		if _, ok := existing[categoryFromFileName(FileName(category))]; ok {
			continue
		}

		tmpl, err := g.generateOne(ctx, category)
		if err != nil {
			return generated, fmt.Errorf("generating schema for %q: %w", category, err)
		}
		if err := Save(dir, category, tmpl); err != nil {
			return generated, err
		}
		generated++
		if g.Verbose {
			log.Printf("[SCHEMAS] generated %s with %d keys", FileName(category), len(tmpl))
		}

		select {
		case <-ctx.Done():
			return generated, ctx.Err()
		case <-time.After(interCategoryDelay):
		}
	}
	return generated, nil
}

func (g *Generator) generateOne(ctx context.Context, category string) (Template, error) {
	prompt := fmt.Sprintf(`You are a data schema generator for tech products. Your task is to generate a simple, flat JSON object that lists the most important and common specifications for the given product category.

**Rules:**
- The output must be only the raw JSON object. No explanations or markdown.
- All keys must be in snake_case.
- The value for each key must be an empty string.

**Example for "Monitor":**
{
    "brand": "",
    "model": "",
    "screen_size": "",
    "resolution": "",
    "panel_type": "",
    "refresh_rate": "",
    "response_time": ""
}

**Category to process:** "%s"

**JSON Output:**`, category)

	raw, err := llm.WithRetry(ctx, func() (string, error) {
		return g.Client.GenerateJSON(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	var tmpl Template
	if err := json.Unmarshal([]byte(raw), &tmpl); err != nil {
		return nil, fmt.Errorf("model returned invalid schema JSON: %w", err)
	}
	if len(tmpl) == 0 {
		return nil, fmt.Errorf("model returned an empty schema")
	}
	return tmpl, nil
}
