package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stefan/catalog-agent/internal/matching"
	"github.com/stefan/catalog-agent/internal/normalize"
	"github.com/stefan/catalog-agent/internal/types"
)

func TestPrintCatalogSummary(t *testing.T) {
	c := normalize.NormalizeAll("anhoch", []types.CatalogRecord{
		{Title: "CPU", RawSpecs: `{"cores":"24"}`, ModelName: "i9-14900K", Category: "Processor"},
		{Title: "Bare item"},
	})

	var buf bytes.Buffer
	NewPrinter(&buf).PrintCatalogSummary(c)

	out := buf.String()
	assert.Contains(t, out, "LOADED CATALOG")
	assert.Contains(t, out, "anhoch")
	assert.Contains(t, out, "Records:  2")
	assert.Contains(t, out, "Specs:    1")
	assert.Contains(t, out, "Models:   1")
}

func TestPrintCatalogSummary_NilCatalog(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCatalogSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintMatchSummary(t *testing.T) {
	a := normalize.NormalizeAll("s1", []types.CatalogRecord{{Title: "CPU one"}, {Title: "CPU two"}})
	b := normalize.NormalizeAll("s2", []types.CatalogRecord{{Title: "CPU uno"}, {Title: "CPU dos"}})

	matches := []matching.Match{
		{A: &a.Records[0], B: &b.Records[0], Score: 0.91, Type: matching.MatchEmbeddingBlend},
		{A: &a.Records[1], B: &b.Records[1], Score: 0.85, Type: matching.MatchExactModelAndCategory},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintMatchSummary(matches, a, b)

	out := buf.String()
	assert.Contains(t, out, "MATCH RUN SUMMARY")
	assert.Contains(t, out, "Matched 2 of 2 x 2")
	assert.Contains(t, out, "embedding-blend")
	assert.Contains(t, out, "exact-model-and-category")
	assert.Contains(t, out, "0.9100")
	assert.Contains(t, out, "#1  0.9100  CPU one")
}

func TestPrintMatchSummary_NoMatches(t *testing.T) {
	a := normalize.NormalizeAll("s1", []types.CatalogRecord{{Title: "x"}})
	b := normalize.NormalizeAll("s2", []types.CatalogRecord{{Title: "y"}})

	var buf bytes.Buffer
	NewPrinter(&buf).PrintMatchSummary(nil, a, b)
	assert.Contains(t, buf.String(), "Matched 0 of 1 x 1")
}

func TestPrintAnnotationSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintAnnotationSummary("categorize", 17, 40)

	out := buf.String()
	assert.Contains(t, out, "ANNOTATION SUMMARY")
	assert.Contains(t, out, "categorize")
	assert.Contains(t, out, "Annotated: 17")
	assert.Contains(t, out, "Total:     40")
}
