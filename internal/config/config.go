// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config is the CLI configuration loadable from a JSON file. All fields are
// optional; missing values use defaults or come from CLI flags.
type Config struct {
	// Paths
	CatalogA   string `json:"catalog_a,omitempty"`   // Store 1 annotated catalog CSV
	CatalogB   string `json:"catalog_b,omitempty"`   // Store 2 annotated catalog CSV
	Output     string `json:"output,omitempty"`      // Matched-pairs output path
	SchemasDir string `json:"schemas_dir,omitempty"` // Per-category schema directory

	// Providers
	GeminiAPIKey   string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey   string `json:"openai_api_key,omitempty"`
	GeminiModel    string `json:"gemini_model,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`

	// Matching parameters
	TopK           int     `json:"top_k,omitempty" validate:"gte=0"`
	TitleThreshold float64 `json:"title_threshold,omitempty" validate:"gte=0,lte=1"`
	SpecThreshold  float64 `json:"spec_threshold,omitempty" validate:"gte=0,lte=1"`

	// Annotation / scraping limits
	BatchSize   int  `json:"batch_size,omitempty" validate:"gte=0"`
	Concurrency int  `json:"concurrency,omitempty" validate:"gte=0"`
	Verbose     bool `json:"verbose,omitempty"`
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks field ranges and that referenced input files exist.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			return fmt.Errorf("config error: field %s fails %q", fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		return fmt.Errorf("config validation: %w", err)
	}

	for _, path := range []string{c.CatalogA, c.CatalogB} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: catalog file not found: %s", path)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. CLI flags always win for booleans.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.CatalogA == "" {
		result.CatalogA = defaults.CatalogA
	}
	if result.CatalogB == "" {
		result.CatalogB = defaults.CatalogB
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.SchemasDir == "" {
		result.SchemasDir = defaults.SchemasDir
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.GeminiModel == "" {
		result.GeminiModel = defaults.GeminiModel
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = defaults.EmbeddingModel
	}
	if result.TopK == 0 {
		result.TopK = defaults.TopK
	}
	if result.TitleThreshold == 0 {
		result.TitleThreshold = defaults.TitleThreshold
	}
	if result.SpecThreshold == 0 {
		result.SpecThreshold = defaults.SpecThreshold
	}
	if result.BatchSize == 0 {
		result.BatchSize = defaults.BatchSize
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	return result
}
