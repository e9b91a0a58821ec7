package annotate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefan/catalog-agent/internal/schemas"
	"github.com/stefan/catalog-agent/internal/types"
)

// fakeClient returns a fixed response for every prompt, recording calls.
type fakeClient struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return f.GenerateContent(ctx, prompt)
}

func (f *fakeClient) Close() error { return nil }

func TestCategoryClassifier_Pending(t *testing.T) {
	c := &CategoryClassifier{}
	assert.True(t, c.Pending(types.CatalogRecord{}))
	assert.True(t, c.Pending(types.CatalogRecord{Category: CategoryError}), "failed records are retried on the next run")
	assert.False(t, c.Pending(types.CatalogRecord{Category: "Monitor"}))
	assert.False(t, c.Pending(types.CatalogRecord{Category: CategoryUnknown}), "unknown is a final label, not a retry")
}

func TestCategoryClassifier_Annotate(t *testing.T) {
	client := &fakeClient{response: "  Graphics Card\n"}
	c := &CategoryClassifier{Client: client}
	rec := types.CatalogRecord{Title: "Gigabyte RTX 4070", RawSpecs: "12GB GDDR6X"}

	got, err := c.Annotate(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "Graphics Card", got)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Gigabyte RTX 4070")
}

func TestCategoryClassifier_BlankInputIsUnknown(t *testing.T) {
	client := &fakeClient{response: "should not be called"}
	c := &CategoryClassifier{Client: client}

	got, err := c.Annotate(context.Background(), types.CatalogRecord{Title: " ", RawSpecs: "specs"})
	require.NoError(t, err)
	assert.Equal(t, CategoryUnknown, got)

	got, err = c.Annotate(context.Background(), types.CatalogRecord{Title: "X", RawSpecs: ""})
	require.NoError(t, err)
	assert.Equal(t, CategoryUnknown, got)

	assert.Zero(t, client.calls)
}

func TestCategoryClassifier_ProviderFailureDegradesToSentinel(t *testing.T) {
	client := &fakeClient{err: errors.New("API key not valid")}
	c := &CategoryClassifier{Client: client}

	got, err := c.Annotate(context.Background(), types.CatalogRecord{Title: "X", RawSpecs: "Y"})
	require.NoError(t, err, "classification failure must not abort the batch")
	assert.Equal(t, CategoryError, got)
}

func TestCategoryClassifier_Apply(t *testing.T) {
	rec := types.CatalogRecord{}
	(&CategoryClassifier{}).Apply(&rec, "Monitor")
	assert.Equal(t, "Monitor", rec.Category)
}

func TestModelNameExtractor_Annotate(t *testing.T) {
	client := &fakeClient{response: `"GeForce RTX 4070 GAMING OC"` + "\n"}
	m := &ModelNameExtractor{Client: client}

	got, err := m.Annotate(context.Background(), types.CatalogRecord{Title: "Gigabyte GeForce RTX 4070 GAMING OC 12GB"})
	require.NoError(t, err)
	assert.Equal(t, "GeForce RTX 4070 GAMING OC", got, "stray quotes from the model are stripped")
}

func TestModelNameExtractor_NoTitle(t *testing.T) {
	client := &fakeClient{}
	m := &ModelNameExtractor{Client: client}

	got, err := m.Annotate(context.Background(), types.CatalogRecord{})
	require.NoError(t, err)
	assert.Equal(t, NoTitle, got)
	assert.Zero(t, client.calls)
}

func TestModelNameExtractor_ProviderFailurePropagates(t *testing.T) {
	m := &ModelNameExtractor{Client: &fakeClient{err: errors.New("API key not valid")}}
	_, err := m.Annotate(context.Background(), types.CatalogRecord{Title: "X"})
	assert.Error(t, err)
}

func TestModelNameExtractor_Pending(t *testing.T) {
	m := &ModelNameExtractor{}
	assert.True(t, m.Pending(types.CatalogRecord{}))
	assert.False(t, m.Pending(types.CatalogRecord{ModelName: "RTX 4070"}))
	assert.False(t, m.Pending(types.CatalogRecord{ModelName: NoTitle}))
}

func TestSpecExtractor_Pending(t *testing.T) {
	s := &SpecExtractor{}
	assert.True(t, s.Pending(types.CatalogRecord{RawSpecs: "free text specs"}))
	assert.True(t, s.Pending(types.CatalogRecord{RawSpecs: ""}))
	assert.False(t, s.Pending(types.CatalogRecord{RawSpecs: `{"brand":"Dell"}`}))
}

func TestSpecExtractor_Annotate(t *testing.T) {
	client := &fakeClient{response: `{"brand":"Dell","screen_size":"27"}`}
	s := &SpecExtractor{
		Client:  client,
		Schemas: map[string]schemas.Template{"Monitor": {"brand": "", "screen_size": ""}},
	}
	rec := types.CatalogRecord{Title: "Dell U2723QE", RawSpecs: "27 inch 4K IPS", Category: "Monitor"}

	got, err := s.Annotate(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, `{"brand":"Dell","screen_size":"27"}`, got)
	require.Len(t, client.prompts, 1)
	assert.True(t, strings.Contains(client.prompts[0], "Dell U2723QE"))
	assert.True(t, strings.Contains(client.prompts[0], `"brand"`), "the category schema is embedded in the prompt")
}

func TestSpecExtractor_SkipsWithoutSchema(t *testing.T) {
	client := &fakeClient{}
	s := &SpecExtractor{Client: client, Schemas: map[string]schemas.Template{}}

	got, err := s.Annotate(context.Background(), types.CatalogRecord{RawSpecs: "text", Category: "Obscure"})
	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Zero(t, client.calls)
}

func TestSpecExtractor_InvalidModelJSON(t *testing.T) {
	client := &fakeClient{response: "not a json object"}
	s := &SpecExtractor{
		Client:  client,
		Schemas: map[string]schemas.Template{"Monitor": {"brand": ""}},
	}
	_, err := s.Annotate(context.Background(), types.CatalogRecord{RawSpecs: "text", Category: "Monitor"})
	assert.Error(t, err)
}

func TestSpecExtractor_NonConformingPayload(t *testing.T) {
	// Parses as an object but violates the schema: screen_size must be a
	// string or null.
	client := &fakeClient{response: `{"screen_size":27}`}
	s := &SpecExtractor{
		Client:  client,
		Schemas: map[string]schemas.Template{"Monitor": {"screen_size": ""}},
	}
	_, err := s.Annotate(context.Background(), types.CatalogRecord{RawSpecs: "text", Category: "Monitor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Monitor")
}

func TestSpecExtractor_ApplyKeepsOldValueWhenEmpty(t *testing.T) {
	rec := types.CatalogRecord{RawSpecs: "original"}
	s := &SpecExtractor{}
	s.Apply(&rec, "")
	assert.Equal(t, "original", rec.RawSpecs)
	s.Apply(&rec, `{"a":"1"}`)
	assert.Equal(t, `{"a":"1"}`, rec.RawSpecs)
}
