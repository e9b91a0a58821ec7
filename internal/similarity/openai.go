package similarity

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel is the embedding model used when none is configured.
const DefaultEmbeddingModel = string(openai.SmallEmbedding3)

// embedBatchSize caps the number of inputs per provider request.
const embedBatchSize = 128

// interBatchDelay is a courtesy pause between provider requests.
const interBatchDelay = 200 * time.Millisecond

// OpenAIEmbedder implements Embedder over the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbedder creates an embedder with the given API key and model.
// An empty model selects DefaultEmbeddingModel.
func NewOpenAIEmbedder(apiKey, model string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
	}, nil
}

// Embed returns one vector per input text, in input order. Requests are
// chunked to embedBatchSize inputs. The provider rejects empty strings, so
// they are substituted with a single space before the call; the resulting
// near-meaningless vector scores low against everything, which is the
// behavior the matchers expect from an empty spec payload.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		batch := make([]string, end-start)
		for i, t := range texts[start:end] {
			if t == "" {
				t = " "
			}
			batch[i] = t
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: e.model,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed (batch %d-%d): %w", start, end, err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(batch))
		}
		for _, d := range resp.Data {
			out = append(out, d.Embedding)
		}

		if end < len(texts) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(interBatchDelay):
			}
		}
	}
	return out, nil
}
