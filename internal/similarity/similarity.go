// Package similarity builds dense cosine-similarity matrices between two
// embedded catalogs. Embeddings come from an injected Embedder so tests can
// substitute fixed vectors for the remote provider.
package similarity

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Embedder maps a batch of canonical strings to fixed-length dense vectors,
// preserving input order. Implementations own their batching and rate
// limiting; the pipeline treats the call as synchronous.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Cosine returns the cosine similarity dot(u,v)/(|u||v|) of two vectors.
// A zero-magnitude vector yields 0 rather than NaN, so records with empty
// spec text degrade to "no signal" instead of poisoning the matrix.
func Cosine(u, v *mat.VecDense) float64 {
	if u.Len() != v.Len() {
		return 0
	}
	normU := mat.Norm(u, 2)
	normV := mat.Norm(v, 2)
	if normU == 0 || normV == 0 {
		return 0
	}
	return mat.Dot(u, v) / (normU * normV)
}

// Vec converts a provider vector to a gonum dense vector.
func Vec(v []float32) *mat.VecDense {
	out := mat.NewVecDense(len(v), nil)
	for i, f := range v {
		out.SetVec(i, float64(f))
	}
	return out
}

// Matrix computes the [|A| x |B|] pairwise cosine-similarity matrix between
// two vector sets. Row i / column j follow the original catalog iteration
// order of each side.
func Matrix(a, b [][]float32) (*mat.Dense, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("similarity matrix requires non-empty vector sets (got %d x %d)", len(a), len(b))
	}
	dim := len(a[0])
	vecsA := make([]*mat.VecDense, len(a))
	for i, v := range a {
		if len(v) != dim {
			return nil, fmt.Errorf("inconsistent vector length in set A: row %d has %d, want %d", i, len(v), dim)
		}
		vecsA[i] = Vec(v)
	}
	vecsB := make([]*mat.VecDense, len(b))
	for j, v := range b {
		if len(v) != dim {
			return nil, fmt.Errorf("inconsistent vector length in set B: row %d has %d, want %d", j, len(v), dim)
		}
		vecsB[j] = Vec(v)
	}
	m := mat.NewDense(len(a), len(b), nil)
	for i, u := range vecsA {
		for j, v := range vecsB {
			m.Set(i, j, Cosine(u, v))
		}
	}
	return m, nil
}

// EmbedBoth embeds two string sequences with one batched provider call per
// side and returns the vector sets in input order.
func EmbedBoth(ctx context.Context, embedder Embedder, a, b []string) ([][]float32, [][]float32, error) {
	vecsA, err := embedder.Embed(ctx, a)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding side A: %w", err)
	}
	if len(vecsA) != len(a) {
		return nil, nil, fmt.Errorf("embedder returned %d vectors for %d inputs on side A", len(vecsA), len(a))
	}
	vecsB, err := embedder.Embed(ctx, b)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding side B: %w", err)
	}
	if len(vecsB) != len(b) {
		return nil, nil, fmt.Errorf("embedder returned %d vectors for %d inputs on side B", len(vecsB), len(b))
	}
	return vecsA, vecsB, nil
}
